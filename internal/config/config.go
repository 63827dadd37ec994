package config

import (
	"fmt"
	"os"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

const (
	DefaultRPCEndpoint   = "https://api.devnet.solana.com"
	DefaultAggregatorURL = "https://quote-api.jup.ag/v6"

	// Devnet USDC mint used by the dashboard token balance.
	DefaultTokenMint = "4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU"

	DefaultRefreshCooldown = 10 * time.Second
	DefaultRefreshInterval = 60 * time.Second
	DefaultSettleDelay     = 3 * time.Second
	DefaultRequestTimeout  = 30 * time.Second
)

// Config is read once at startup and passed into the orchestrator
// explicitly. Nothing reads the environment after Load returns.
type Config struct {
	RPCEndpoint   string
	AggregatorURL string

	TokenMint solana.PublicKey

	// Merchant is nil when no merchant address is configured, which
	// disables payments entirely.
	Merchant *solana.PublicKey

	RefreshCooldown time.Duration
	RefreshInterval time.Duration
	SettleDelay     time.Duration
	RequestTimeout  time.Duration

	LogFile string
}

func Load() (*Config, error) {
	cfg := &Config{
		RPCEndpoint:     getEnvOrDefault("SOLTERM_RPC_URL", DefaultRPCEndpoint),
		AggregatorURL:   getEnvOrDefault("SOLTERM_AGGREGATOR_URL", DefaultAggregatorURL),
		RefreshCooldown: parseDurationOrDefault("SOLTERM_REFRESH_COOLDOWN", DefaultRefreshCooldown),
		RefreshInterval: parseDurationOrDefault("SOLTERM_REFRESH_INTERVAL", DefaultRefreshInterval),
		SettleDelay:     parseDurationOrDefault("SOLTERM_SETTLE_DELAY", DefaultSettleDelay),
		RequestTimeout:  parseDurationOrDefault("SOLTERM_REQUEST_TIMEOUT", DefaultRequestTimeout),
		LogFile:         os.Getenv("SOLTERM_LOG_FILE"),
	}

	mintStr := getEnvOrDefault("SOLTERM_TOKEN_MINT", DefaultTokenMint)
	mint, err := solana.PublicKeyFromBase58(mintStr)
	if err != nil {
		return nil, fmt.Errorf("invalid token mint %q: %w", mintStr, err)
	}
	cfg.TokenMint = mint

	if merchantStr := os.Getenv("SOLTERM_MERCHANT_ADDRESS"); merchantStr != "" {
		merchant, err := solana.PublicKeyFromBase58(merchantStr)
		if err != nil {
			return nil, fmt.Errorf("invalid merchant address %q: %w", merchantStr, err)
		}
		cfg.Merchant = &merchant
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.RPCEndpoint == "" {
		return fmt.Errorf("RPC endpoint must not be empty")
	}
	if c.AggregatorURL == "" {
		return fmt.Errorf("aggregator URL must not be empty")
	}
	if c.RefreshCooldown <= 0 {
		return fmt.Errorf("refresh cooldown must be positive, got: %v", c.RefreshCooldown)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got: %v", c.RefreshInterval)
	}
	if c.RefreshInterval < c.RefreshCooldown {
		return fmt.Errorf("refresh interval %v must not be shorter than the cooldown %v",
			c.RefreshInterval, c.RefreshCooldown)
	}
	if c.SettleDelay <= 0 {
		return fmt.Errorf("settle delay must be positive, got: %v", c.SettleDelay)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got: %v", c.RequestTimeout)
	}
	return nil
}

// PaymentsEnabled reports whether a merchant address was configured.
func (c *Config) PaymentsEnabled() bool {
	return c.Merchant != nil
}

// NewLogger builds the process logger. Without a log file the logger is a
// no-op so nothing bleeds into the terminal UI.
func (c *Config) NewLogger() (*zap.Logger, error) {
	if c.LogFile == "" {
		return zap.NewNop(), nil
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.OutputPaths = []string{c.LogFile}
	zapCfg.ErrorOutputPaths = []string{c.LogFile}
	return zapCfg.Build()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
