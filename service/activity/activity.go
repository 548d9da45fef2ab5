// Package activity orchestrates the full inspection flow: classify the raw
// input, resolve a handle when needed, fetch the chain's raw records, and
// classify each one into a sorted, bounded activity report.
package activity

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	solanago "github.com/gagliardetto/solana-go"

	"github.com/daocha/blockchain-lookup/service/address"
	"github.com/daocha/blockchain-lookup/service/blockstream"
	"github.com/daocha/blockchain-lookup/service/classify"
	"github.com/daocha/blockchain-lookup/service/etherscan"
	"github.com/daocha/blockchain-lookup/service/metrics"
	"github.com/daocha/blockchain-lookup/service/solana"
)

// DefaultLimit caps how many rows a report carries.
const DefaultLimit = 30

// NameResolver resolves a human-readable handle to a canonical address.
type NameResolver interface {
	Resolve(ctx context.Context, handle string) (string, error)
}

// SolanaFetcher fetches parsed Solana transactions for a wallet.
type SolanaFetcher interface {
	GetTransactions(ctx context.Context, wallet solanago.PublicKey) ([]*solana.Transaction, error)
}

// EthereumFetcher fetches Etherscan transaction and token-transfer rows.
type EthereumFetcher interface {
	ListTransactions(ctx context.Context, address string) ([]etherscan.Transaction, error)
	ListTokenTransfers(ctx context.Context, address string) ([]etherscan.TokenTransfer, error)
}

// BitcoinFetcher fetches Esplora transaction records for an address.
type BitcoinFetcher interface {
	ListTransactions(ctx context.Context, address string) ([]blockstream.Tx, error)
}

// Report is the result of one inspection.
type Report struct {
	Input   string
	Address string
	Chain   string
	Rows    []classify.Classified
}

// Aggregator wires the resolver, the per-chain fetchers, and the per-chain
// classifiers together.
type Aggregator struct {
	resolver NameResolver
	solana   SolanaFetcher
	ethereum EthereumFetcher
	bitcoin  BitcoinFetcher

	solClassifier *classify.Solana
	ethClassifier *classify.Ethereum
	btcClassifier *classify.Bitcoin

	metrics *metrics.Metrics
	logger  *slog.Logger
	limit   int
}

// Config carries the aggregator's collaborators. Classifiers are required;
// a nil fetcher disables that chain.
type Config struct {
	Resolver NameResolver
	Solana   SolanaFetcher
	Ethereum EthereumFetcher
	Bitcoin  BitcoinFetcher

	SolanaClassifier   *classify.Solana
	EthereumClassifier *classify.Ethereum
	BitcoinClassifier  *classify.Bitcoin

	Metrics *metrics.Metrics
	Logger  *slog.Logger
	Limit   int
}

func New(cfg Config) *Aggregator {
	limit := cfg.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Aggregator{
		resolver:      cfg.Resolver,
		solana:        cfg.Solana,
		ethereum:      cfg.Ethereum,
		bitcoin:       cfg.Bitcoin,
		solClassifier: cfg.SolanaClassifier,
		ethClassifier: cfg.EthereumClassifier,
		btcClassifier: cfg.BitcoinClassifier,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger,
		limit:         limit,
	}
}

// Inspect turns a raw handle or address into a sorted activity report.
// Handles are resolved first; fetch failures degrade to an empty report
// rather than an error.
func (a *Aggregator) Inspect(ctx context.Context, raw string) (*Report, error) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return nil, fmt.Errorf("empty address or handle")
	}

	resolved, kind, err := a.resolveInput(ctx, input)
	if err != nil {
		return nil, err
	}

	report := &Report{Input: input, Address: resolved, Chain: string(kind)}
	switch kind {
	case address.KindSolana:
		report.Chain = "solana"
		report.Rows = a.solanaRows(ctx, resolved)
	case address.KindEthereum:
		report.Chain = "ethereum"
		report.Rows = a.ethereumRows(ctx, resolved)
	case address.KindBitcoin:
		report.Chain = "bitcoin"
		report.Rows = a.bitcoinRows(ctx, resolved)
	default:
		return nil, fmt.Errorf("unsupported address kind %q for %q", kind, input)
	}

	sort.SliceStable(report.Rows, func(i, j int) bool {
		return report.Rows[i].Timestamp > report.Rows[j].Timestamp
	})
	if len(report.Rows) > a.limit {
		report.Rows = report.Rows[:a.limit]
	}

	if a.metrics != nil {
		for _, row := range report.Rows {
			a.metrics.RecordClassification(report.Chain, string(row.Category))
		}
	}
	return report, nil
}

// resolveInput classifies the raw input and resolves it to a canonical
// address when it is a name handle.
func (a *Aggregator) resolveInput(ctx context.Context, input string) (string, address.Kind, error) {
	kind := address.Classify(input)
	switch kind {
	case address.KindBitcoin, address.KindEthereum, address.KindSolana:
		return input, kind, nil

	case address.KindNameHandle, address.KindNameHandleCandidate, address.KindEthereumName:
		if a.resolver == nil {
			return "", kind, fmt.Errorf("no resolver configured for handle %q", input)
		}
		resolved, err := a.resolver.Resolve(ctx, input)
		if err != nil {
			return "", kind, fmt.Errorf("failed to resolve %q: %w", input, err)
		}
		resolvedKind := address.Classify(resolved)
		a.logger.InfoContext(ctx, "resolved handle",
			"handle", input,
			"address", resolved,
			"kind", string(resolvedKind))
		return resolved, resolvedKind, nil

	default:
		return "", kind, fmt.Errorf("unrecognized address or handle %q", input)
	}
}

func (a *Aggregator) solanaRows(ctx context.Context, addr string) []classify.Classified {
	if a.solana == nil {
		return nil
	}
	wallet, err := solanago.PublicKeyFromBase58(addr)
	if err != nil {
		a.logger.WarnContext(ctx, "invalid solana address", "address", addr, "error", err)
		return nil
	}
	txs, err := a.solana.GetTransactions(ctx, wallet)
	if err != nil {
		a.logger.WarnContext(ctx, "failed to fetch solana transactions", "address", addr, "error", err)
		return nil
	}
	rows := make([]classify.Classified, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, a.solClassifier.Classify(ctx, *tx, addr))
	}
	return rows
}

func (a *Aggregator) ethereumRows(ctx context.Context, addr string) []classify.Classified {
	if a.ethereum == nil {
		return nil
	}
	txs, err := a.ethereum.ListTransactions(ctx, addr)
	if err != nil {
		a.logger.WarnContext(ctx, "failed to fetch ethereum transactions", "address", addr, "error", err)
		return nil
	}
	tokens, err := a.ethereum.ListTokenTransfers(ctx, addr)
	if err != nil {
		a.logger.WarnContext(ctx, "failed to fetch token transfers", "address", addr, "error", err)
		tokens = nil
	}
	records := classify.GroupEthereum(txs, tokens)
	rows := make([]classify.Classified, 0, len(records))
	for _, rec := range records {
		rows = append(rows, a.ethClassifier.Classify(ctx, rec, addr))
	}
	return rows
}

func (a *Aggregator) bitcoinRows(ctx context.Context, addr string) []classify.Classified {
	if a.bitcoin == nil {
		return nil
	}
	txs, err := a.bitcoin.ListTransactions(ctx, addr)
	if err != nil {
		a.logger.WarnContext(ctx, "failed to fetch bitcoin transactions", "address", addr, "error", err)
		return nil
	}
	rows := make([]classify.Classified, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, a.btcClassifier.Classify(ctx, tx, addr))
	}
	return rows
}
