package pipeline

import (
	"context"

	"go.uber.org/zap"

	"passterm/solWallet/internal/signing"
	"passterm/solWallet/internal/wallet"
)

// Pipeline hands built payloads to the wallet for signing and submission.
// The wallet is invoked exactly once per Submit: signing prompts the user to
// authenticate, so a failed or cancelled attempt is never retried here.
type Pipeline struct {
	signer signing.Signer
	logger *zap.Logger
}

func New(signer signing.Signer, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		signer: signer,
		logger: logger.Named("pipeline"),
	}
}

// Submit signs and sends one payload, returning the transaction signature.
// Failures come back classified so views can render them directly.
func (p *Pipeline) Submit(ctx context.Context, payload signing.Payload, opts signing.SendOptions) (string, error) {
	if payload.Empty() {
		return "", wallet.New(wallet.ErrSwapBuildFailed, "empty transaction payload", nil)
	}

	sig, err := p.signer.SignAndSend(ctx, payload, opts)
	if err != nil {
		classified := wallet.Classify(err)
		p.logger.Warn("submission failed",
			zap.String("kind", string(classified.Kind)),
			zap.Error(err))
		return "", classified
	}

	p.logger.Info("transaction submitted", zap.String("signature", sig))
	return sig, nil
}
