package validation

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"

	"passterm/solWallet/internal/models"
	"passterm/solWallet/internal/wallet"
)

// ValidatedTransfer carries a transfer intent past validation: the recipient
// decoded and the amount converted to base units.
type ValidatedTransfer struct {
	Recipient solana.PublicKey
	BaseUnits uint64
}

type ValidatedSwap struct {
	FromAsset models.Asset
	ToAsset   models.Asset
	BaseUnits uint64
}

type ValidatedPayment struct {
	Asset     models.Asset
	Merchant  solana.PublicKey
	BaseUnits uint64
}

// ParseAddress decodes a recipient string into a ledger account address.
func ParseAddress(address string) (solana.PublicKey, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return solana.PublicKey{}, wallet.NewInvalidAddressError(address)
	}

	key, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return solana.PublicKey{}, wallet.NewInvalidAddressError(address)
	}

	if key.IsZero() {
		return solana.PublicKey{}, wallet.NewInvalidAddressError(address)
	}

	return key, nil
}

// ToBaseUnits converts a user-entered decimal string to base units using the
// asset's fixed exponent. Conversion is exact string arithmetic with half-up
// rounding past the exponent; floats never touch the amount.
func ToBaseUnits(amount string, decimals uint8) (uint64, error) {
	s := strings.TrimSpace(amount)
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return 0, wallet.NewInvalidAmountError(amount)
	}

	intPart, fracPart, hasDot := strings.Cut(s, ".")
	if intPart == "" && fracPart == "" {
		return 0, wallet.NewInvalidAmountError(amount)
	}
	if hasDot && fracPart == "" {
		return 0, wallet.NewInvalidAmountError(amount)
	}
	if intPart == "" {
		intPart = "0"
	}
	if !digitsOnly(intPart) || !digitsOnly(fracPart) {
		return 0, wallet.NewInvalidAmountError(amount)
	}

	d := int(decimals)
	roundUp := false
	if len(fracPart) > d {
		roundUp = fracPart[d] >= '5'
		fracPart = fracPart[:d]
	}
	fracPart += strings.Repeat("0", d-len(fracPart))

	value, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return 0, wallet.NewInvalidAmountError(amount)
	}
	if roundUp {
		value.Add(value, big.NewInt(1))
	}

	if value.Sign() <= 0 || !value.IsUint64() {
		return 0, wallet.NewInvalidAmountError(amount)
	}

	return value.Uint64(), nil
}

// FromBaseUnits renders base units as a decimal string. Feeding the result
// back through ToBaseUnits yields the same base units.
func FromBaseUnits(units uint64, decimals uint8) string {
	s := strconv.FormatUint(units, 10)
	d := int(decimals)
	if d == 0 {
		return s
	}

	if len(s) <= d {
		s = strings.Repeat("0", d-len(s)+1) + s
	}

	intPart := s[:len(s)-d]
	fracPart := strings.TrimRight(s[len(s)-d:], "0")
	if fracPart == "" {
		return intPart
	}
	return intPart + "." + fracPart
}

// CheckBalance rejects amounts exceeding the last known snapshot balance.
// An unknown balance does not block: the submission itself still rejects on
// true insufficiency.
func CheckBalance(required uint64, available *uint64, asset models.Asset) error {
	if available == nil {
		return nil
	}
	if required > *available {
		return wallet.NewInsufficientBalanceError(required, *available, asset.String())
	}
	return nil
}

// ValidateTransfer gates a transfer intent: address, amount, and balance
// checks all pass before the builder ever sees the intent.
func ValidateTransfer(intent models.TransferIntent, snapshot models.BalanceSnapshot) (*ValidatedTransfer, error) {
	recipient, err := ParseAddress(intent.Recipient)
	if err != nil {
		return nil, err
	}

	baseUnits, err := ToBaseUnits(intent.AmountDecimal, models.SOLDecimals)
	if err != nil {
		return nil, err
	}

	if err := CheckBalance(baseUnits, snapshot.Native, models.AssetSOL); err != nil {
		return nil, err
	}

	return &ValidatedTransfer{Recipient: recipient, BaseUnits: baseUnits}, nil
}

func ValidateSwap(intent models.SwapIntent, snapshot models.BalanceSnapshot) (*ValidatedSwap, error) {
	if !intent.FromAsset.Valid() {
		return nil, wallet.NewUnsupportedAssetError(string(intent.FromAsset))
	}
	if !intent.ToAsset.Valid() {
		return nil, wallet.NewUnsupportedAssetError(string(intent.ToAsset))
	}
	if intent.FromAsset == intent.ToAsset {
		return nil, wallet.NewIdenticalAssetsError(intent.FromAsset.String())
	}

	baseUnits, err := ToBaseUnits(intent.AmountDecimal, intent.FromAsset.Decimals())
	if err != nil {
		return nil, err
	}

	if err := CheckBalance(baseUnits, snapshot.BalanceFor(intent.FromAsset), intent.FromAsset); err != nil {
		return nil, err
	}

	return &ValidatedSwap{
		FromAsset: intent.FromAsset,
		ToAsset:   intent.ToAsset,
		BaseUnits: baseUnits,
	}, nil
}

// ValidatePayment requires a configured merchant before anything else is
// looked at.
func ValidatePayment(intent models.PaymentIntent, merchant *solana.PublicKey, snapshot models.BalanceSnapshot) (*ValidatedPayment, error) {
	if merchant == nil {
		return nil, wallet.NewMerchantNotConfiguredError()
	}
	if !intent.Asset.Valid() {
		return nil, wallet.NewUnsupportedAssetError(string(intent.Asset))
	}

	baseUnits, err := ToBaseUnits(intent.AmountDecimal, intent.Asset.Decimals())
	if err != nil {
		return nil, err
	}

	if err := CheckBalance(baseUnits, snapshot.BalanceFor(intent.Asset), intent.Asset); err != nil {
		return nil, err
	}

	return &ValidatedPayment{
		Asset:     intent.Asset,
		Merchant:  *merchant,
		BaseUnits: baseUnits,
	}, nil
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
