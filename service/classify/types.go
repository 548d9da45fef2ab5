// Package classify turns raw per-chain transaction records into categorized,
// human-readable activity rows. Each chain family gets its own classifier;
// all of them share the category precedence: swap, then stake/unstake, then
// simple transfer, then internal, then a free-text fallback. A record that
// cannot be interpreted at all becomes unparseable rather than an error.
package classify

import (
	"context"
	"fmt"
	"regexp"
)

// Category is the semantic bucket assigned to a transaction.
type Category string

const (
	CategoryTransferOut Category = "transfer-out"
	CategoryTransferIn  Category = "transfer-in"
	CategorySwap        Category = "swap"
	CategoryStake       Category = "stake"
	CategoryUnstake     Category = "unstake"
	CategoryInternal    Category = "internal"
	CategoryOther       Category = "other"
	CategoryUnparseable Category = "unparseable"
)

// Classified is one interpreted transaction. Ordering key is Timestamp
// descending; ShortHash is a display form, not a lookup key.
type Classified struct {
	Timestamp int64
	Category  Category
	Summary   string
	ShortHash string
}

// MetadataLookup resolves an asset identifier (token mint or contract
// address) to a display symbol. Best effort; an error or empty symbol means
// the caller should fall back to a truncated-address display form.
type MetadataLookup interface {
	Symbol(ctx context.Context, assetID string) (string, error)
}

// ShortHash renders a transaction hash as the compact head...tail form used
// in activity rows.
func ShortHash(h string) string {
	if len(h) <= 16 {
		return h
	}
	return h[:8] + "..." + h[len(h)-6:]
}

// TruncateAddress renders an address as its leading bytes only.
func TruncateAddress(a string) string {
	if len(a) <= 8 {
		return a
	}
	return a[:8] + "..."
}

// rawAddressPattern matches hex and base58 addresses embedded in free-text
// descriptions so they can be replaced with their truncated form.
var rawAddressPattern = regexp.MustCompile(`0x[0-9a-fA-F]{40}|[1-9A-HJ-NP-Za-km-z]{32,44}`)

// truncateEmbeddedAddresses rewrites any raw address appearing inside a
// chain-reported description to its truncated display form.
func truncateEmbeddedAddresses(s string) string {
	return rawAddressPattern.ReplaceAllStringFunc(s, TruncateAddress)
}

func formatAmount(amount float64, symbol string) string {
	return fmt.Sprintf("%.4f %s", amount, symbol)
}

// symbolFor resolves a display symbol for an asset, preferring an already
// known symbol, then the metadata collaborator, then a truncated identifier.
func symbolFor(ctx context.Context, md MetadataLookup, assetID, known string) string {
	if known != "" {
		return known
	}
	if md != nil {
		if sym, err := md.Symbol(ctx, assetID); err == nil && sym != "" {
			return sym
		}
	}
	return TruncateAddress(assetID)
}

func unparseable(timestamp int64, hash string) Classified {
	return Classified{
		Timestamp: timestamp,
		Category:  CategoryUnparseable,
		Summary:   "unable to interpret transaction",
		ShortHash: ShortHash(hash),
	}
}
