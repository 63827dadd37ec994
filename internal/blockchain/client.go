package blockchain

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout = 30 * time.Second

	// Free devnet endpoints throttle aggressively; pace our own requests
	// before the node does it for us.
	requestsPerSecond = 4
	requestBurst      = 8

	readRetries         = 2
	confirmPollInterval = 2 * time.Second
)

// Client is the ledger query capability: read-only balance, history, and
// airdrop access to a Solana RPC node. Submissions go through the signing
// capability, never through here.
type Client struct {
	rpc     *rpc.Client
	limiter *rate.Limiter
	logger  *zap.Logger
	timeout time.Duration
}

func NewClient(endpoint string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		rpc:     rpc.New(endpoint),
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
		logger:  logger.Named("ledger"),
		timeout: timeout,
	}
}

// GetNativeBalance returns the account's native balance in lamports.
func (c *Client) GetNativeBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	var balance uint64
	err := c.retryRead(ctx, "getNativeBalance", func(ctx context.Context) error {
		result, err := c.rpc.GetBalance(ctx, account, rpc.CommitmentConfirmed)
		if err != nil {
			return err
		}
		balance = result.Value
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("native balance query: %w", err)
	}
	return balance, nil
}

// GetTokenBalance returns the base-unit balance of the account's associated
// token account for the mint. A missing token account is not an error: it
// resolves to zero.
func (c *Client) GetTokenBalance(ctx context.Context, account, mint solana.PublicKey) (uint64, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(account, mint)
	if err != nil {
		return 0, fmt.Errorf("derive associated token address: %w", err)
	}

	var balance uint64
	err = c.retryRead(ctx, "getTokenBalance", func(ctx context.Context) error {
		result, err := c.rpc.GetTokenAccountBalance(ctx, ata, rpc.CommitmentConfirmed)
		if err != nil {
			if isAccountNotFound(err) {
				balance = 0
				return nil
			}
			return err
		}
		parsed, err := strconv.ParseUint(result.Value.Amount, 10, 64)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("malformed token amount %q: %w", result.Value.Amount, err))
		}
		balance = parsed
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("token balance query: %w", err)
	}
	return balance, nil
}

// GetRecentSignatures returns up to limit signature references for the
// account, most recent first.
func (c *Client) GetRecentSignatures(ctx context.Context, account solana.PublicKey, limit int) ([]string, error) {
	var signatures []string
	err := c.retryRead(ctx, "getRecentSignatures", func(ctx context.Context) error {
		results, err := c.rpc.GetSignaturesForAddressWithOpts(ctx, account, &rpc.GetSignaturesForAddressOpts{
			Limit:      &limit,
			Commitment: rpc.CommitmentConfirmed,
		})
		if err != nil {
			return err
		}
		signatures = make([]string, 0, len(results))
		for _, result := range results {
			signatures = append(signatures, result.Signature.String())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("signature history query: %w", err)
	}
	return signatures, nil
}

// RequestTestFunds asks the devnet faucet for lamports. Not retried: the
// faucet rate limit makes a repeat worse, not better.
func (c *Client) RequestTestFunds(ctx context.Context, account solana.PublicKey, lamports uint64) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	sig, err := c.rpc.RequestAirdrop(ctx, account, lamports, rpc.CommitmentConfirmed)
	if err != nil {
		return "", fmt.Errorf("airdrop request: %w", err)
	}

	c.logger.Info("airdrop requested",
		zap.String("account", account.String()),
		zap.Uint64("lamports", lamports),
		zap.String("signature", sig.String()))

	return sig.String(), nil
}

// Confirm polls the signature status until it reaches confirmed commitment
// or the expiry elapses.
func (c *Client) Confirm(ctx context.Context, signatureRef string, expiry time.Duration) error {
	sig, err := solana.SignatureFromBase58(signatureRef)
	if err != nil {
		return fmt.Errorf("malformed signature %q: %w", signatureRef, err)
	}

	ctx, cancel := context.WithTimeout(ctx, expiry)
	defer cancel()

	ticker := time.NewTicker(confirmPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("confirmation of %s timed out after %v", signatureRef, expiry)
		case <-ticker.C:
			result, err := c.rpc.GetSignatureStatuses(ctx, false, sig)
			if err != nil {
				c.logger.Debug("status poll failed", zap.Error(err))
				continue
			}
			if len(result.Value) == 0 || result.Value[0] == nil {
				continue
			}
			status := result.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction %s failed on ledger: %v", signatureRef, status.Err)
			}
			switch status.ConfirmationStatus {
			case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
				return nil
			}
		}
	}
}

// retryRead runs a read-only query with pacing and a short exponential
// backoff. Rate-limit responses are not retried here: they are surfaced so
// the synchronizer can degrade its timer instead.
func (c *Client) retryRead(ctx context.Context, name string, fn func(context.Context) error) error {
	operation := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		err := fn(callCtx)
		if err == nil {
			return nil
		}
		if isRateLimited(err) {
			return backoff.Permanent(err)
		}
		c.logger.Debug("query failed, will retry", zap.String("op", name), zap.Error(err))
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), readRetries), ctx)
	return backoff.Retry(operation, policy)
}

func isAccountNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "could not find account") ||
		strings.Contains(msg, "account not found")
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests")
}
