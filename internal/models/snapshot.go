package models

import "time"

// HistoryWindow bounds the stored transaction history. The list is replaced
// wholesale on every successful synchronization, never merged.
const HistoryWindow = 5

// BalanceSnapshot holds the last fully-resolved balances in base units.
// A nil field means "unknown" — the initial and failed state — which must
// never be conflated with a true zero balance.
type BalanceSnapshot struct {
	Native *uint64
	Token  *uint64
	AsOf   time.Time
}

func (s BalanceSnapshot) NativeKnown() bool { return s.Native != nil }

func (s BalanceSnapshot) TokenKnown() bool { return s.Token != nil }

// BalanceFor returns the known balance for the asset, or nil when unknown.
func (s BalanceSnapshot) BalanceFor(asset Asset) *uint64 {
	if asset.Native() {
		return s.Native
	}
	return s.Token
}

func Uint64Ptr(v uint64) *uint64 { return &v }
