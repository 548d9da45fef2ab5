// Package address classifies raw user input into an address kind.
// Classification is pure string inspection; no network access.
package address

import (
	"strings"

	"github.com/mr-tron/base58"
)

// Kind identifies what family of identifier a raw input string belongs to.
type Kind string

const (
	// KindBitcoin is a Bitcoin address (legacy base58 or bech32 segwit).
	KindBitcoin Kind = "bitcoin"

	// KindEthereum is a hex-encoded Ethereum account address.
	KindEthereum Kind = "ethereum"

	// KindEthereumName is an ENS-style name ending in .eth.
	KindEthereumName Kind = "ethereum-name"

	// KindSolana is a base58-encoded Solana account key.
	KindSolana Kind = "solana"

	// KindNameHandle is a Solana name-service handle (.skr or .sol).
	KindNameHandle Kind = "name-handle"

	// KindNameHandleCandidate is a bare alphanumeric string that may become
	// a name handle after the default suffix is appended.
	KindNameHandleCandidate Kind = "name-handle-candidate"

	// KindUnknown is anything that matched no rule.
	KindUnknown Kind = "unknown"
)

// nameHandleSuffixes are the suffixes served by the Solana name registries.
var nameHandleSuffixes = []string{".skr", ".sol"}

// Classify maps a raw input string to its address kind. Rules are evaluated
// in order and the first match wins; patterns overlap (a legacy Bitcoin
// address is also plausible base58), so the order is load-bearing.
// Unrecognized input yields KindUnknown; Classify never fails.
func Classify(raw string) Kind {
	s := strings.TrimSpace(raw)
	if s == "" {
		return KindUnknown
	}
	lower := strings.ToLower(s)

	// Bitcoin legacy (P2PKH "1...", P2SH "3...").
	if (strings.HasPrefix(s, "1") || strings.HasPrefix(s, "3")) && len(s) >= 26 && len(s) <= 35 {
		return KindBitcoin
	}

	// Bitcoin segwit (bech32).
	if strings.HasPrefix(lower, "bc1") && len(s) >= 42 && len(s) <= 62 {
		return KindBitcoin
	}

	// Ethereum account.
	if strings.HasPrefix(lower, "0x") && len(s) == 42 {
		return KindEthereum
	}

	// Solana name-service handles.
	for _, suffix := range nameHandleSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return KindNameHandle
		}
	}

	// ENS names.
	if strings.HasSuffix(lower, ".eth") {
		return KindEthereumName
	}

	// Solana account key: valid base58 with no dot.
	if !strings.Contains(s, ".") && len(s) >= 32 && len(s) <= 44 {
		if _, err := base58.Decode(s); err == nil {
			return KindSolana
		}
	}

	// Bare alphanumeric handle; the resolver may append the default suffix.
	if len(s) >= 1 && len(s) <= 32 && !strings.Contains(s, ".") && isAlphanumeric(s) {
		return KindNameHandleCandidate
	}

	return KindUnknown
}

func isAlphanumeric(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
