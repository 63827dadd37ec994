package signing

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"passterm/solWallet/internal/models"
)

// Payload is the tagged union handed to the signing capability: either a
// list of instructions assembled locally, or an opaque pre-built transaction
// returned by the aggregator. Exactly one side is ever set.
type Payload struct {
	instructions []solana.Instruction
	raw          []byte
}

func InstructionPayload(instructions ...solana.Instruction) Payload {
	return Payload{instructions: instructions}
}

func RawPayload(raw []byte) Payload {
	return Payload{raw: raw}
}

func (p Payload) Instructions() []solana.Instruction { return p.instructions }

func (p Payload) Raw() []byte { return p.raw }

func (p Payload) IsRaw() bool { return len(p.raw) > 0 }

func (p Payload) Empty() bool { return len(p.raw) == 0 && len(p.instructions) == 0 }

// SendOptions carries submission options through to the signer. The fee
// asset is configuration, not user input.
type SendOptions struct {
	FeeAsset models.Asset
}

// Signer is the external smart-wallet signing capability. The passkey and
// device-authentication ceremony live entirely behind this interface.
type Signer interface {
	// Connect establishes the authenticated session. The returned session
	// carries the smart-wallet account the orchestrator operates on.
	Connect(ctx context.Context) (models.Session, error)

	// Disconnect tears the session down. After it returns the orchestrator
	// treats the session as Disconnected regardless of error.
	Disconnect(ctx context.Context) error

	// SignAndSend signs the payload and submits it to the ledger, returning
	// the signature reference. Called exactly once per submission; the
	// orchestrator never retries a signing failure.
	SignAndSend(ctx context.Context, payload Payload, opts SendOptions) (string, error)
}
