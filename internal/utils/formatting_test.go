package utils

import (
	"testing"

	"passterm/solWallet/internal/models"
)

func TestFormatAddress(t *testing.T) {
	addr := "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"

	got := FormatAddress(addr, 6, 4)
	if got != "9WzDXw...AWWM" {
		t.Errorf("Unexpected formatted address: %s", got)
	}

	if got := FormatAddress("short", 6, 4); got != "short" {
		t.Errorf("Expected short address unchanged, got %s", got)
	}
}

func TestFormatBalance(t *testing.T) {
	if got := FormatBalance(nil, models.AssetSOL); got != "— SOL" {
		t.Errorf("Expected unknown balance to render as dash, got %q", got)
	}

	bal := uint64(2_500_000_000)
	if got := FormatBalance(&bal, models.AssetSOL); got != "2.5 SOL" {
		t.Errorf("Expected 2.5 SOL, got %q", got)
	}

	zero := uint64(0)
	if got := FormatBalance(&zero, models.AssetUSDC); got != "0 USDC" {
		t.Errorf("Expected 0 USDC, got %q", got)
	}
}

func TestExplorerURL(t *testing.T) {
	if got := ExplorerURL("sig123", "devnet"); got != "https://explorer.solana.com/tx/sig123?cluster=devnet" {
		t.Errorf("Unexpected devnet URL: %s", got)
	}
	if got := ExplorerURL("sig123", "mainnet-beta"); got != "https://explorer.solana.com/tx/sig123" {
		t.Errorf("Unexpected mainnet URL: %s", got)
	}
}
