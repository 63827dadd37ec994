package models

type Asset string

const (
	AssetSOL  Asset = "SOL"
	AssetUSDC Asset = "USDC"
)

const (
	SOLDecimals  uint8 = 9
	USDCDecimals uint8 = 6
)

// Decimals returns the fixed base-unit exponent for the asset. These are
// per-asset constants, never inferred from chain data.
func (a Asset) Decimals() uint8 {
	switch a {
	case AssetSOL:
		return SOLDecimals
	case AssetUSDC:
		return USDCDecimals
	default:
		return 0
	}
}

func (a Asset) Valid() bool {
	switch a {
	case AssetSOL, AssetUSDC:
		return true
	default:
		return false
	}
}

// Native reports whether the asset is the ledger's base currency rather
// than a token tracked through an associated account.
func (a Asset) Native() bool {
	return a == AssetSOL
}

func (a Asset) String() string {
	return string(a)
}
