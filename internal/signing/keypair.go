package signing

import (
	"context"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"

	"passterm/solWallet/internal/models"
)

// KeypairSigner implements Signer over a local ed25519 keypair. It stands in
// for the passkey smart wallet on devnet and in tests, where no WebAuthn
// authenticator is available.
type KeypairSigner struct {
	rpc    *rpc.Client
	key    solana.PrivateKey
	logger *zap.Logger
}

func NewKeypairSigner(endpoint string, key solana.PrivateKey, logger *zap.Logger) *KeypairSigner {
	return &KeypairSigner{
		rpc:    rpc.New(endpoint),
		key:    key,
		logger: logger.Named("signer"),
	}
}

func (s *KeypairSigner) Connect(ctx context.Context) (models.Session, error) {
	// A session is only useful if the node answers; probe it once.
	if _, err := s.rpc.GetHealth(ctx); err != nil {
		return models.Session{Status: models.SessionDisconnected},
			fmt.Errorf("ledger node unreachable: %w", err)
	}

	session := models.Session{
		Status:  models.SessionConnected,
		Account: s.key.PublicKey(),
	}

	s.logger.Info("session established", zap.String("account", session.Account.String()))
	return session, nil
}

func (s *KeypairSigner) Disconnect(ctx context.Context) error {
	s.logger.Info("session closed", zap.String("account", s.key.PublicKey().String()))
	return nil
}

func (s *KeypairSigner) SignAndSend(ctx context.Context, payload Payload, opts SendOptions) (string, error) {
	if payload.Empty() {
		return "", fmt.Errorf("empty payload")
	}

	var tx *solana.Transaction
	var err error
	if payload.IsRaw() {
		tx, err = s.deserialize(payload.Raw())
	} else {
		tx, err = s.assemble(ctx, payload.Instructions())
	}
	if err != nil {
		return "", err
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.key.PublicKey()) {
			return &s.key
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("signing failed: %w", err)
	}

	if s.logger.Core().Enabled(zap.DebugLevel) {
		if encoded, err := tx.MarshalBinary(); err == nil {
			s.logger.Debug("submitting transaction",
				zap.String("feeAsset", opts.FeeAsset.String()),
				zap.String("wire", base58.Encode(encoded)))
		}
	}

	sig, err := s.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}

	s.logger.Info("transaction submitted", zap.String("signature", sig.String()))
	return sig.String(), nil
}

func (s *KeypairSigner) assemble(ctx context.Context, instructions []solana.Instruction) (*solana.Transaction, error) {
	recent, err := s.rpc.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return nil, fmt.Errorf("get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		recent.Value.Blockhash,
		solana.TransactionPayer(s.key.PublicKey()),
	)
	if err != nil {
		return nil, fmt.Errorf("assemble transaction: %w", err)
	}
	return tx, nil
}

// deserialize recovers the aggregator's pre-built transaction. The payload
// already carries its own blockhash and account list.
func (s *KeypairSigner) deserialize(raw []byte) (*solana.Transaction, error) {
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("decode transaction payload: %w", err)
	}
	return tx, nil
}
