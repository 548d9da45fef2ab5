// Package resolver turns human-readable name handles (.skr, .sol, .eth) into
// canonical on-chain addresses. It derives name-account keys with the
// deterministic hash-and-derive scheme of each registry family and falls
// back through HTTP resolver services in a fixed priority order; the first
// strategy that produces an address wins and later strategies never run.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/daocha/blockchain-lookup/service/metrics"
	"github.com/gagliardetto/solana-go"
	"github.com/hashicorp/go-retryablehttp"
)

// DefaultSuffix is appended to bare alphanumeric handles before resolution.
const DefaultSuffix = ".skr"

// defaultServiceTimeout bounds one HTTP resolver service call.
const defaultServiceTimeout = 5 * time.Second

// ErrNotFound is returned when every resolution strategy has been exhausted.
var ErrNotFound = errors.New("handle not found")

// ErrInvalidHandle is returned for input rejected before any network access.
var ErrInvalidHandle = errors.New("invalid handle")

// AccountFetcher fetches raw account bytes for a derived key.
// A (nil, nil) return means the account does not exist.
type AccountFetcher interface {
	GetAccount(ctx context.Context, key solana.PublicKey) ([]byte, error)
}

// Resolver resolves name handles through an ordered chain of strategies.
type Resolver struct {
	accounts AccountFetcher
	http     *retryablehttp.Client
	services []string // base URLs; handle is appended as a path segment
	timeout  time.Duration
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New creates a Resolver. services are HTTP resolver base URLs tried in
// order after on-chain lookup fails. If m is nil, no metrics are recorded.
func New(accounts AccountFetcher, httpClient *retryablehttp.Client, services []string, m *metrics.Metrics, logger *slog.Logger) *Resolver {
	return &Resolver{
		accounts: accounts,
		http:     httpClient,
		services: services,
		timeout:  defaultServiceTimeout,
		metrics:  m,
		logger:   logger,
	}
}

// strategy is one resolution attempt. Failures are values; the chain moves
// on to the next strategy on any error or empty result.
type strategy struct {
	name string
	run  func(ctx context.Context) (string, error)
}

// Resolve normalizes the handle and walks the strategy chain, returning the
// first address found. All strategy failures are swallowed; exhaustion is
// reported as ErrNotFound, never as a transport error.
func (r *Resolver) Resolve(ctx context.Context, handle string) (string, error) {
	normalized, label, tld, err := Normalize(handle)
	if err != nil {
		return "", err
	}

	for _, s := range r.strategies(normalized, label, tld) {
		start := time.Now()
		addr, err := s.run(ctx)
		duration := time.Since(start).Seconds()

		status := "miss"
		if err == nil && addr != "" {
			status = "hit"
		} else if err != nil {
			status = "error"
		}
		if r.metrics != nil {
			r.metrics.RecordResolveAttempt(s.name, status, duration)
		}

		if err != nil {
			r.logger.DebugContext(ctx, "resolution strategy failed",
				"handle", normalized,
				"strategy", s.name,
				"error", err,
			)
			continue
		}
		if addr == "" {
			continue
		}

		r.logger.InfoContext(ctx, "resolved handle",
			"handle", normalized,
			"strategy", s.name,
			"address", addr,
		)
		return addr, nil
	}

	return "", fmt.Errorf("%w: %s", ErrNotFound, normalized)
}

// Normalize trims and lowercases a handle, appends DefaultSuffix to bare
// alphanumeric input, and splits it into label and top-level domain.
func Normalize(handle string) (normalized, label, tld string, err error) {
	normalized = strings.ToLower(strings.TrimSpace(handle))
	if normalized == "" {
		return "", "", "", fmt.Errorf("%w: empty", ErrInvalidHandle)
	}
	if !strings.Contains(normalized, ".") {
		normalized += DefaultSuffix
	}

	dot := strings.LastIndex(normalized, ".")
	label, tld = normalized[:dot], normalized[dot+1:]
	if label == "" || tld == "" {
		return "", "", "", fmt.Errorf("%w: %q", ErrInvalidHandle, handle)
	}
	return normalized, label, tld, nil
}

// strategies builds the fixed-priority chain for one handle.
func (r *Resolver) strategies(handle, label, tld string) []strategy {
	var out []strategy

	family := FamilyForTLD(tld)
	onChain := tld != "eth" // ENS names have no Solana name account

	if onChain {
		if family == FamilyAllDomains {
			out = append(out, strategy{
				name: "alldomains-onchain",
				run:  func(ctx context.Context) (string, error) { return r.resolveAllDomains(ctx, label) },
			})
		} else {
			out = append(out, strategy{
				name: "sns-onchain",
				run:  func(ctx context.Context) (string, error) { return r.resolveSNS(ctx, label, tld) },
			})
		}
	}

	for _, base := range r.services {
		base := base
		out = append(out, strategy{
			name: serviceStrategyName(base),
			run:  func(ctx context.Context) (string, error) { return r.resolveViaService(ctx, base, handle) },
		})
	}

	// Last resort for name-handle family: retry the SNS on-chain path.
	if tld == "skr" || tld == "sol" {
		out = append(out, strategy{
			name: "sns-onchain-retry",
			run:  func(ctx context.Context) (string, error) { return r.resolveSNS(ctx, label, tld) },
		})
	}

	return out
}

// resolveAllDomains looks up a name in the AllDomains registry: hash the
// label with the AllDomains prefix, derive under the TLD House program with
// the fixed .skr root as parent, and read the owner from the account.
func (r *Resolver) resolveAllDomains(ctx context.Context, label string) (string, error) {
	schema := SchemaFor(FamilyAllDomains)

	hash := NameHash(schema.HashPrefix, label)
	key, err := DeriveNameAccountKey(hash, ZeroKey, SeekerRootTLD, schema.Program)
	if err != nil {
		return "", err
	}

	data, err := r.accounts.GetAccount(ctx, key)
	if err != nil {
		return "", fmt.Errorf("fetch name account %s: %w", key, err)
	}
	if data == nil {
		return "", nil
	}

	owner, err := schema.Owner(data)
	if err != nil {
		return "", err
	}
	return owner.String(), nil
}

// resolveSNS looks up a name in the Solana name service. The parent TLD key
// is the well-known .sol root or derived from the TLD label with a zero
// parent. The registry has two divergent conventions for hashing a child
// label (with and without a leading null byte); neither is authoritative
// everywhere, so both keys are queried in that order.
func (r *Resolver) resolveSNS(ctx context.Context, label, tld string) (string, error) {
	schema := SchemaFor(FamilySNS)

	parent := SolRootTLD
	if tld != "sol" {
		tldHash := NameHash(schema.HashPrefix, tld)
		derived, err := DeriveNameAccountKey(tldHash, ZeroKey, ZeroKey, schema.Program)
		if err != nil {
			return "", err
		}
		parent = derived
	}

	for _, candidate := range []string{"\x00" + label, label} {
		hash := NameHash(schema.HashPrefix, candidate)
		key, err := DeriveNameAccountKey(hash, ZeroKey, parent, schema.Program)
		if err != nil {
			return "", err
		}

		data, err := r.accounts.GetAccount(ctx, key)
		if err != nil {
			return "", fmt.Errorf("fetch name account %s: %w", key, err)
		}
		if data == nil {
			continue
		}

		owner, err := schema.Owner(data)
		if err != nil {
			continue
		}
		return owner.String(), nil
	}

	return "", nil
}
