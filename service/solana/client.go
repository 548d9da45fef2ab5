package solana

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/daocha/blockchain-lookup/service/metrics"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Fetch bounds: a wallet's history is walked in signature pages of
// defaultPageSize, at most defaultMaxPages deep. A short or failed page
// stops the walk early.
const (
	defaultPageSize = 100
	defaultMaxPages = 3
)

// RPCClient is an interface for the Solana RPC operations we need.
// This allows us to mock the RPC layer in tests without hitting real Solana nodes.
type RPCClient interface {
	GetAccountInfo(
		ctx context.Context,
		account solana.PublicKey,
	) (*rpc.GetAccountInfoResult, error)

	GetSignaturesForAddress(
		ctx context.Context,
		address solana.PublicKey,
		opts *rpc.GetSignaturesForAddressOpts,
	) ([]*rpc.TransactionSignature, error)

	GetTransaction(
		ctx context.Context,
		signature solana.Signature,
		opts *rpc.GetTransactionOpts,
	) (*rpc.GetTransactionResult, error)
}

// Client provides account and transaction access over Solana RPC.
// It wraps the RPC client with domain-specific operations: raw account
// fetch for name resolution and parsed transaction history for
// classification.
type Client struct {
	rpc      RPCClient
	logger   *slog.Logger
	metrics  *metrics.Metrics
	endpoint string // RPC endpoint identifier for metrics (e.g., "mainnet", rpc host)
	pageSize int
	maxPages int
}

// NewClient creates a new Solana client.
// The endpoint parameter is used for metrics labeling (e.g., "mainnet" or the
// RPC hostname). If m is nil, no metrics will be recorded.
func NewClient(rpcClient RPCClient, endpoint string, m *metrics.Metrics, logger *slog.Logger) *Client {
	return &Client{
		rpc:      rpcClient,
		logger:   logger,
		metrics:  m,
		endpoint: endpoint,
		pageSize: defaultPageSize,
		maxPages: defaultMaxPages,
	}
}

// GetAccount returns the raw bytes of an on-chain account, or (nil, nil) when
// the account does not exist. Used by the name resolver to read derived
// name-registry accounts.
func (c *Client) GetAccount(ctx context.Context, key solana.PublicKey) ([]byte, error) {
	start := time.Now()
	out, err := c.rpc.GetAccountInfo(ctx, key)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil && !errors.Is(err, rpc.ErrNotFound) {
		status = "error"
	}
	if c.metrics != nil {
		c.metrics.RecordRPCCall("GetAccountInfo", status, c.endpoint, duration)
	}

	if errors.Is(err, rpc.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		c.logger.WarnContext(ctx, "failed to get account info",
			"account", key.String(),
			"error", err,
		)
		return nil, err
	}
	if out == nil || out.Value == nil || out.Value.Data == nil {
		return nil, nil
	}
	return out.Value.Data.GetBinary(), nil
}

// GetTransactions fetches and parses the recent transaction history of a
// wallet, newest first. Signatures are paged with a cursor; each page is
// capped at the page size and the walk stops after the page budget, on the
// first short page, or on the first page error. Per-transaction fetch or
// parse failures degrade that record to signature metadata only and never
// abort the rest.
func (c *Client) GetTransactions(ctx context.Context, wallet solana.PublicKey) ([]*Transaction, error) {
	var transactions []*Transaction
	var before solana.Signature

	for page := 0; page < c.maxPages; page++ {
		limit := c.pageSize
		opts := &rpc.GetSignaturesForAddressOpts{
			Limit: &limit,
		}
		if !before.IsZero() {
			opts.Before = before
		}

		start := time.Now()
		signatures, err := c.rpc.GetSignaturesForAddress(ctx, wallet, opts)
		duration := time.Since(start).Seconds()

		status := "success"
		if err != nil {
			status = "error"
		}
		if c.metrics != nil {
			c.metrics.RecordRPCCall("GetSignaturesForAddress", status, c.endpoint, duration)
		}

		if err != nil {
			if page == 0 {
				c.logger.ErrorContext(ctx, "failed to get signatures",
					"wallet", wallet.String(),
					"error", err,
				)
				return nil, err
			}
			// A failed continuation page just ends the walk.
			c.logger.WarnContext(ctx, "signature page failed, stopping pagination",
				"wallet", wallet.String(),
				"page", page,
				"error", err,
			)
			break
		}
		if len(signatures) == 0 {
			break
		}

		c.logger.DebugContext(ctx, "fetched transaction signatures",
			"wallet", wallet.String(),
			"page", page,
			"count", len(signatures),
		)

		for _, sig := range signatures {
			transactions = append(transactions, c.fetchAndParse(ctx, sig))
		}

		before = signatures[len(signatures)-1].Signature
		if len(signatures) < c.pageSize {
			break
		}
	}

	if c.metrics != nil {
		c.metrics.RecordTransactionsFetched("solana", len(transactions))
	}
	c.logger.InfoContext(ctx, "fetched and parsed transactions",
		"wallet", wallet.String(),
		"count", len(transactions),
	)
	return transactions, nil
}

// fetchAndParse retrieves full transaction details for one signature.
// Any failure falls back to a metadata-only transaction.
func (c *Client) fetchAndParse(ctx context.Context, sig *rpc.TransactionSignature) *Transaction {
	txnOpts := &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		MaxSupportedTransactionVersion: &[]uint64{0}[0],
	}

	start := time.Now()
	result, err := c.rpc.GetTransaction(ctx, sig.Signature, txnOpts)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
	}
	if c.metrics != nil {
		c.metrics.RecordRPCCall("GetTransaction", status, c.endpoint, duration)
	}

	if err != nil {
		c.logger.WarnContext(ctx, "failed to get transaction details, using metadata only",
			"signature", sig.Signature.String(),
			"error", err,
		)
		return signatureToDomain(sig)
	}

	txn, err := parseTransactionFromResult(sig, result)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to parse transaction, using metadata only",
			"signature", sig.Signature.String(),
			"error", err,
		)
		return signatureToDomain(sig)
	}
	return txn
}
