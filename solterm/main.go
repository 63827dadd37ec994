package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gagliardetto/solana-go"

	"passterm/solWallet/internal/aggregator"
	"passterm/solWallet/internal/blockchain"
	"passterm/solWallet/internal/builder"
	"passterm/solWallet/internal/config"
	"passterm/solWallet/internal/pipeline"
	"passterm/solWallet/internal/signing"
	"passterm/solWallet/internal/views"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	key, err := loadKey()
	if err != nil {
		fmt.Printf("Error loading keypair: %v\n", err)
		os.Exit(1)
	}

	chain := blockchain.NewClient(cfg.RPCEndpoint, cfg.RequestTimeout, logger)
	agg := aggregator.NewClient(cfg.AggregatorURL, cfg.RequestTimeout, logger)
	signer := signing.NewKeypairSigner(cfg.RPCEndpoint, key, logger)
	b := builder.New(agg, cfg.TokenMint, logger)
	pipe := pipeline.New(signer, logger)

	app := views.NewAppModel(cfg, signer, chain, b, pipe, logger)

	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running application: %v\n", err)
		os.Exit(1)
	}
}

// loadKey reads the signing key from SOLTERM_KEYPAIR, or generates an
// ephemeral one for devnet experimentation when none is configured.
func loadKey() (solana.PrivateKey, error) {
	if path := os.Getenv("SOLTERM_KEYPAIR"); path != "" {
		return solana.PrivateKeyFromSolanaKeygenFile(path)
	}
	return solana.NewWallet().PrivateKey, nil
}
