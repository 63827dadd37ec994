package builder

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"go.uber.org/zap"

	"passterm/solWallet/internal/aggregator"
	"passterm/solWallet/internal/models"
	"passterm/solWallet/internal/signing"
	"passterm/solWallet/internal/validation"
)

// Builder turns validated intents into submission payloads. Validation has
// already happened by the time anything reaches here; the builder only
// encodes.
type Builder struct {
	aggregator *aggregator.Client
	tokenMint  solana.PublicKey
	logger     *zap.Logger
}

func New(agg *aggregator.Client, tokenMint solana.PublicKey, logger *zap.Logger) *Builder {
	return &Builder{
		aggregator: agg,
		tokenMint:  tokenMint,
		logger:     logger.Named("builder"),
	}
}

// BuildTransfer encodes a single native transfer instruction from the
// session account to the validated recipient.
func (b *Builder) BuildTransfer(from solana.PublicKey, transfer *validation.ValidatedTransfer) signing.Payload {
	instruction := system.NewTransferInstruction(
		transfer.BaseUnits,
		from,
		transfer.Recipient,
	).Build()

	b.logger.Info("built transfer",
		zap.String("from", from.String()),
		zap.String("to", transfer.Recipient.String()),
		zap.Uint64("lamports", transfer.BaseUnits))

	return signing.InstructionPayload(instruction)
}

// BuildPayment encodes one instruction to the merchant: a native transfer
// for the native asset, otherwise a token transfer between the sender's and
// merchant's associated token accounts.
func (b *Builder) BuildPayment(from solana.PublicKey, payment *validation.ValidatedPayment) (signing.Payload, error) {
	if payment.Asset.Native() {
		instruction := system.NewTransferInstruction(
			payment.BaseUnits,
			from,
			payment.Merchant,
		).Build()
		return signing.InstructionPayload(instruction), nil
	}

	source, _, err := solana.FindAssociatedTokenAddress(from, b.tokenMint)
	if err != nil {
		return signing.Payload{}, fmt.Errorf("derive sender token account: %w", err)
	}
	destination, _, err := solana.FindAssociatedTokenAddress(payment.Merchant, b.tokenMint)
	if err != nil {
		return signing.Payload{}, fmt.Errorf("derive merchant token account: %w", err)
	}

	instruction := token.NewTransferInstruction(
		payment.BaseUnits,
		source,
		destination,
		from,
		nil,
	).Build()

	b.logger.Info("built payment",
		zap.String("asset", payment.Asset.String()),
		zap.String("merchant", payment.Merchant.String()),
		zap.Uint64("baseUnits", payment.BaseUnits))

	return signing.InstructionPayload(instruction), nil
}

// BuildSwap runs the two-step aggregator round trip: quote, then a built
// transaction addressed to the session account. The returned payload is
// opaque and forwarded as-is.
func (b *Builder) BuildSwap(ctx context.Context, from solana.PublicKey, swap *validation.ValidatedSwap) (signing.Payload, error) {
	route, err := b.aggregator.Quote(ctx, b.mintFor(swap.FromAsset), b.mintFor(swap.ToAsset), swap.BaseUnits)
	if err != nil {
		return signing.Payload{}, err
	}

	raw, err := b.aggregator.BuildSwap(ctx, route, from)
	if err != nil {
		return signing.Payload{}, err
	}

	b.logger.Info("built swap",
		zap.String("fromAsset", swap.FromAsset.String()),
		zap.String("toAsset", swap.ToAsset.String()),
		zap.Uint64("baseUnits", swap.BaseUnits),
		zap.Int("payloadBytes", len(raw)))

	return signing.RawPayload(raw), nil
}

func (b *Builder) mintFor(asset models.Asset) solana.PublicKey {
	if asset.Native() {
		return solana.SolMint
	}
	return b.tokenMint
}
