package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected defaults to load, got error: %v", err)
	}

	if cfg.RPCEndpoint != DefaultRPCEndpoint {
		t.Errorf("Expected default RPC endpoint %s, got %s", DefaultRPCEndpoint, cfg.RPCEndpoint)
	}
	if cfg.AggregatorURL != DefaultAggregatorURL {
		t.Errorf("Expected default aggregator URL %s, got %s", DefaultAggregatorURL, cfg.AggregatorURL)
	}
	if cfg.RefreshCooldown != DefaultRefreshCooldown {
		t.Errorf("Expected default cooldown %v, got %v", DefaultRefreshCooldown, cfg.RefreshCooldown)
	}
	if cfg.TokenMint.String() != DefaultTokenMint {
		t.Errorf("Expected default token mint %s, got %s", DefaultTokenMint, cfg.TokenMint)
	}
	if cfg.PaymentsEnabled() {
		t.Error("Expected payments to be disabled without a merchant address")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SOLTERM_RPC_URL", "http://localhost:8899")
	t.Setenv("SOLTERM_REFRESH_COOLDOWN", "5s")
	t.Setenv("SOLTERM_MERCHANT_ADDRESS", "So11111111111111111111111111111111111111112")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected config to load, got error: %v", err)
	}

	if cfg.RPCEndpoint != "http://localhost:8899" {
		t.Errorf("Expected overridden RPC endpoint, got %s", cfg.RPCEndpoint)
	}
	if cfg.RefreshCooldown != 5*time.Second {
		t.Errorf("Expected 5s cooldown, got %v", cfg.RefreshCooldown)
	}
	if !cfg.PaymentsEnabled() {
		t.Error("Expected payments to be enabled with a merchant address set")
	}
}

func TestLoadInvalidMerchant(t *testing.T) {
	t.Setenv("SOLTERM_MERCHANT_ADDRESS", "not-an-address")

	if _, err := Load(); err == nil {
		t.Error("Expected error for malformed merchant address")
	}
}

func TestLoadInvalidMint(t *testing.T) {
	t.Setenv("SOLTERM_TOKEN_MINT", "0xdeadbeef")

	if _, err := Load(); err == nil {
		t.Error("Expected error for malformed token mint")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{"empty rpc", func(c *Config) { c.RPCEndpoint = "" }, "RPC endpoint"},
		{"empty aggregator", func(c *Config) { c.AggregatorURL = "" }, "aggregator"},
		{"zero cooldown", func(c *Config) { c.RefreshCooldown = 0 }, "cooldown"},
		{"zero interval", func(c *Config) { c.RefreshInterval = 0 }, "interval"},
		{"interval below cooldown", func(c *Config) { c.RefreshInterval = time.Second }, "shorter than"},
		{"zero settle delay", func(c *Config) { c.SettleDelay = 0 }, "settle delay"},
	}

	for _, test := range tests {
		cfg := base()
		test.mutate(cfg)
		err := cfg.Validate()
		if err == nil {
			t.Errorf("%s: expected validation error", test.name)
			continue
		}
		if !strings.Contains(err.Error(), test.errSub) {
			t.Errorf("%s: expected error to mention %q, got %q", test.name, test.errSub, err.Error())
		}
	}
}

func TestNewLoggerWithoutFile(t *testing.T) {
	cfg := &Config{}
	logger, err := cfg.NewLogger()
	if err != nil {
		t.Fatalf("Expected nop logger, got error: %v", err)
	}
	if logger == nil {
		t.Fatal("Expected non-nil logger")
	}
}
