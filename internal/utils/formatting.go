package utils

import (
	"fmt"
	"time"

	"passterm/solWallet/internal/models"
	"passterm/solWallet/internal/validation"
)

// ExplorerBaseURL is the block explorer used for transaction links.
const ExplorerBaseURL = "https://explorer.solana.com"

// FormatAddress truncates an address for display purposes
func FormatAddress(address string, prefixLen, suffixLen int) string {
	if len(address) <= prefixLen+suffixLen {
		return address
	}

	return address[:prefixLen] + "..." + address[len(address)-suffixLen:]
}

// FormatSignature formats a transaction signature for display
func FormatSignature(sig string) string {
	if len(sig) <= 16 {
		return sig
	}
	return sig[:8] + "..." + sig[len(sig)-8:]
}

// FormatBalance renders a base-unit balance with its asset symbol. An
// unknown balance renders as a dash, never as zero.
func FormatBalance(base *uint64, asset models.Asset) string {
	if base == nil {
		return fmt.Sprintf("— %s", asset)
	}
	return fmt.Sprintf("%s %s", validation.FromBaseUnits(*base, asset.Decimals()), asset)
}

// ExplorerURL builds a block explorer link for a transaction signature.
func ExplorerURL(sig string, cluster string) string {
	if cluster == "" || cluster == "mainnet-beta" {
		return fmt.Sprintf("%s/tx/%s", ExplorerBaseURL, sig)
	}
	return fmt.Sprintf("%s/tx/%s?cluster=%s", ExplorerBaseURL, sig, cluster)
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

// TruncateString truncates a string to a maximum length with ellipsis
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return s[:maxLen]
	}

	return s[:maxLen-3] + "..."
}

// FormatTimeAgo formats a time as "X ago" string
func FormatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := time.Since(t)

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		minutes := int(diff.Minutes())
		if minutes == 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d mins ago", minutes)
	} else if diff < 24*time.Hour {
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}
	days := int(diff.Hours() / 24)
	if days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}
