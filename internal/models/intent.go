package models

type IntentKind string

const (
	IntentSend IntentKind = "send"
	IntentSwap IntentKind = "swap"
	IntentPay  IntentKind = "pay"
)

// TransferIntent is a user-entered direct transfer of the native asset.
type TransferIntent struct {
	Recipient     string
	AmountDecimal string
}

func (TransferIntent) Kind() IntentKind { return IntentSend }

// SwapIntent exchanges one asset for another through the aggregator.
type SwapIntent struct {
	FromAsset     Asset
	ToAsset       Asset
	AmountDecimal string
}

func (SwapIntent) Kind() IntentKind { return IntentSwap }

// PaymentIntent pays the configured merchant. The recipient is process-wide
// configuration, never user input.
type PaymentIntent struct {
	Asset         Asset
	AmountDecimal string
}

func (PaymentIntent) Kind() IntentKind { return IntentPay }
