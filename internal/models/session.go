package models

import "github.com/gagliardetto/solana-go"

type SessionStatus int

const (
	SessionDisconnected SessionStatus = iota
	SessionConnecting
	SessionConnected
)

func (s SessionStatus) String() string {
	switch s {
	case SessionDisconnected:
		return "Disconnected"
	case SessionConnecting:
		return "Connecting"
	case SessionConnected:
		return "Connected"
	default:
		return "Unknown"
	}
}

// Session is the authenticated smart-wallet context. Transitions are driven
// by the external signing capability; everything else only reads it.
type Session struct {
	Status  SessionStatus
	Account solana.PublicKey
}

// Active reports whether operations that reach the ledger may run.
func (s Session) Active() bool {
	return s.Status == SessionConnected && !s.Account.IsZero()
}
