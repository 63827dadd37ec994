package wallet

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

type ErrorKind string

const (
	ErrInvalidAddress        ErrorKind = "invalid_address"
	ErrInvalidAmount         ErrorKind = "invalid_amount"
	ErrUnsupportedAsset      ErrorKind = "unsupported_asset"
	ErrInsufficientBalance   ErrorKind = "insufficient_balance"
	ErrIdenticalAssets       ErrorKind = "identical_assets"
	ErrMerchantNotConfigured ErrorKind = "merchant_not_configured"
	ErrNoRouteAvailable      ErrorKind = "no_route_available"
	ErrSwapBuildFailed       ErrorKind = "swap_build_failed"
	ErrSigningFailed         ErrorKind = "signing_failed"
	ErrUserCancelled         ErrorKind = "user_cancelled"
	ErrRateLimited           ErrorKind = "rate_limited"
	ErrNetworkOrLedger       ErrorKind = "network_or_ledger"
)

type WalletError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *WalletError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *WalletError) Unwrap() error {
	return e.Cause
}

func New(kind ErrorKind, message string, cause error) *WalletError {
	return &WalletError{Kind: kind, Message: message, Cause: cause}
}

func NewInvalidAddressError(address string) *WalletError {
	return New(ErrInvalidAddress, fmt.Sprintf("invalid address: %s", address), nil)
}

func NewInvalidAmountError(amount string) *WalletError {
	return New(ErrInvalidAmount, fmt.Sprintf("invalid amount: %s", amount), nil)
}

func NewUnsupportedAssetError(asset string) *WalletError {
	return New(ErrUnsupportedAsset, fmt.Sprintf("unsupported asset: %s", asset), nil)
}

func NewInsufficientBalanceError(required, available uint64, asset string) *WalletError {
	return New(ErrInsufficientBalance,
		fmt.Sprintf("insufficient %s: required %d, available %d", asset, required, available), nil)
}

func NewIdenticalAssetsError(asset string) *WalletError {
	return New(ErrIdenticalAssets, fmt.Sprintf("cannot swap %s for itself", asset), nil)
}

func NewMerchantNotConfiguredError() *WalletError {
	return New(ErrMerchantNotConfigured, "no merchant address configured", nil)
}

func NewNoRouteError(from, to string) *WalletError {
	return New(ErrNoRouteAvailable, fmt.Sprintf("no route available for %s -> %s", from, to), nil)
}

func NewSwapBuildError(cause error) *WalletError {
	return New(ErrSwapBuildFailed, "aggregator did not return a transaction payload", cause)
}

func NewRateLimitedError(cause error) *WalletError {
	return New(ErrRateLimited, "request rate limited", cause)
}

func NewNetworkError(message string, cause error) *WalletError {
	return New(ErrNetworkOrLedger, message, cause)
}

// Classify maps a raw failure onto the closed category set by keyword
// inspection. Priority: signing-method failure > user cancellation >
// insufficient balance > invalid input > rate limiting > generic.
func Classify(err error) *WalletError {
	if err == nil {
		return nil
	}

	var walletErr *WalletError
	if errors.As(err, &walletErr) {
		return walletErr
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "signing failed") || strings.Contains(errStr, "webauthn") ||
		strings.Contains(errStr, "passkey") || strings.Contains(errStr, "authenticator"):
		return New(ErrSigningFailed, "signing failed", err)
	case strings.Contains(errStr, "user rejected") || strings.Contains(errStr, "cancelled") ||
		strings.Contains(errStr, "canceled by user"):
		return New(ErrUserCancelled, "transaction cancelled", err)
	case strings.Contains(errStr, "insufficient") || strings.Contains(errStr, "not enough"):
		return New(ErrInsufficientBalance, "insufficient balance", err)
	case strings.Contains(errStr, "invalid address") || strings.Contains(errStr, "invalid public key"):
		return New(ErrInvalidAddress, "invalid address format", err)
	case strings.Contains(errStr, "invalid amount"):
		return New(ErrInvalidAmount, "invalid amount", err)
	case strings.Contains(errStr, "429") || strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") || strings.Contains(errStr, "airdrop request limit"):
		return NewRateLimitedError(err)
	default:
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return NewNetworkError("request timed out", err)
		}
		return NewNetworkError("ledger request failed", err)
	}
}

// Local reports whether the error is recovered by validation before any
// external call. Local kinds never reach the submission pipeline.
func (e *WalletError) Local() bool {
	switch e.Kind {
	case ErrInvalidAddress, ErrInvalidAmount, ErrUnsupportedAsset, ErrIdenticalAssets, ErrMerchantNotConfigured:
		return true
	default:
		return false
	}
}

func (e *WalletError) Title() string {
	switch e.Kind {
	case ErrInvalidAddress:
		return "Invalid Address"
	case ErrInvalidAmount:
		return "Invalid Amount"
	case ErrUnsupportedAsset:
		return "Unsupported Asset"
	case ErrInsufficientBalance:
		return "Insufficient Balance"
	case ErrIdenticalAssets:
		return "Same Asset"
	case ErrMerchantNotConfigured:
		return "Merchant Not Configured"
	case ErrNoRouteAvailable:
		return "No Route"
	case ErrSwapBuildFailed:
		return "Swap Failed"
	case ErrSigningFailed:
		return "Signing Failed"
	case ErrUserCancelled:
		return "Cancelled"
	case ErrRateLimited:
		return "Rate Limited"
	default:
		return "Request Failed"
	}
}

func (e *WalletError) UserMessage() string {
	switch e.Kind {
	case ErrInvalidAddress:
		return "The recipient is not a well-formed Solana address. Check it and try again."
	case ErrInvalidAmount:
		return "Enter a positive decimal amount."
	case ErrUnsupportedAsset:
		return "That asset is not supported here."
	case ErrInsufficientBalance:
		return "The requested amount exceeds your available balance."
	case ErrIdenticalAssets:
		return "Pick two different assets to swap."
	case ErrMerchantNotConfigured:
		return "Payments are disabled: no merchant address is configured."
	case ErrNoRouteAvailable:
		return "The aggregator found no route for this pair. Try a different amount."
	case ErrSwapBuildFailed:
		return "The aggregator could not build the swap transaction. Try again shortly."
	case ErrSigningFailed:
		return "Device authentication could not complete. Check your passkey and connection."
	case ErrUserCancelled:
		return "You cancelled the transaction."
	case ErrRateLimited:
		return "Too many requests. Wait a moment before trying again."
	default:
		return "The network or ledger request failed. Your balances are unchanged."
	}
}
