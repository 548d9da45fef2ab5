// Package blockstream fetches Bitcoin address activity from a
// Blockstream-compatible Esplora API.
package blockstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/daocha/blockchain-lookup/service/metrics"
	"github.com/hashicorp/go-retryablehttp"
)

// DefaultBaseURL is the public Blockstream Esplora endpoint.
const DefaultBaseURL = "https://blockstream.info/api"

// The API serves 25 transactions per page; deeper history is cursor-paged
// with the last seen txid. The walk is bounded the same way as the other
// chain fetchers.
const (
	pageSize = 25
	maxPages = 3
)

// Client queries an Esplora-style Bitcoin API.
type Client struct {
	http    *retryablehttp.Client
	baseURL string
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewClient creates a Blockstream client. If m is nil, no metrics are recorded.
func NewClient(httpClient *retryablehttp.Client, baseURL string, m *metrics.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		metrics: m,
		logger:  logger,
	}
}

// ListTransactions fetches recent transactions touching an address, newest
// first. Pages after the first are keyed by the last seen txid; a short or
// failed continuation page ends the walk.
func (c *Client) ListTransactions(ctx context.Context, address string) ([]Tx, error) {
	var out []Tx
	lastSeen := ""

	for page := 0; page < maxPages; page++ {
		endpoint := c.baseURL + "/address/" + url.PathEscape(address) + "/txs"
		if lastSeen != "" {
			endpoint = c.baseURL + "/address/" + url.PathEscape(address) + "/txs/chain/" + url.PathEscape(lastSeen)
		}

		txs, err := c.fetchPage(ctx, endpoint)
		if err != nil {
			if page == 0 {
				return nil, err
			}
			c.logger.WarnContext(ctx, "blockstream page failed, stopping pagination",
				"address", address,
				"page", page,
				"error", err,
			)
			break
		}
		if len(txs) == 0 {
			break
		}

		out = append(out, txs...)
		lastSeen = txs[len(txs)-1].Txid
		if len(txs) < pageSize {
			break
		}
	}

	if c.metrics != nil {
		c.metrics.RecordTransactionsFetched("bitcoin", len(out))
	}
	return out, nil
}

func (c *Client) fetchPage(ctx context.Context, endpoint string) ([]Tx, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
	}
	if c.metrics != nil {
		c.metrics.RecordCollaboratorCall("blockstream", status, duration)
	}
	if err != nil {
		return nil, fmt.Errorf("blockstream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("blockstream: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("blockstream: read body: %w", err)
	}

	var txs []Tx
	if err := json.Unmarshal(body, &txs); err != nil {
		return nil, fmt.Errorf("blockstream: decode body: %w", err)
	}
	return txs, nil
}
