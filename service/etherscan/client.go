// Package etherscan fetches Ethereum account activity from the Etherscan v2
// API: plain transactions (txlist) and ERC-20 transfer events (tokentx).
package etherscan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/daocha/blockchain-lookup/service/metrics"
	"github.com/hashicorp/go-retryablehttp"
)

// DefaultBaseURL is the Etherscan v2 API endpoint.
const DefaultBaseURL = "https://api.etherscan.io/v2/api"

// Page bounds for history walks; a short or failed page ends the walk.
const (
	pageSize = 100
	maxPages = 3
)

// Client queries the Etherscan v2 API for one chain (chainid 1 = mainnet).
type Client struct {
	http    *retryablehttp.Client
	baseURL string
	apiKey  string
	chainID int
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewClient creates an Etherscan client. If m is nil, no metrics are recorded.
func NewClient(httpClient *retryablehttp.Client, baseURL, apiKey string, m *metrics.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		apiKey:  apiKey,
		chainID: 1,
		metrics: m,
		logger:  logger,
	}
}

// ListTransactions fetches recent plain transactions for an address, newest
// first, walking at most maxPages pages of pageSize rows.
func (c *Client) ListTransactions(ctx context.Context, address string) ([]Transaction, error) {
	var out []Transaction
	err := c.paginate(ctx, "txlist", address, func(raw json.RawMessage) (int, error) {
		var page []Transaction
		if err := json.Unmarshal(raw, &page); err != nil {
			return 0, err
		}
		out = append(out, page...)
		return len(page), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListTokenTransfers fetches recent ERC-20 transfer events for an address,
// newest first, with the same page bounds as ListTransactions.
func (c *Client) ListTokenTransfers(ctx context.Context, address string) ([]TokenTransfer, error) {
	var out []TokenTransfer
	err := c.paginate(ctx, "tokentx", address, func(raw json.RawMessage) (int, error) {
		var page []TokenTransfer
		if err := json.Unmarshal(raw, &page); err != nil {
			return 0, err
		}
		out = append(out, page...)
		return len(page), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// paginate walks pages 1..maxPages of one account action, handing each raw
// result array to decode. The walk ends early on a short page; a failed
// continuation page ends the walk without failing rows already collected.
func (c *Client) paginate(ctx context.Context, action, address string, decode func(json.RawMessage) (int, error)) error {
	for page := 1; page <= maxPages; page++ {
		raw, err := c.call(ctx, action, address, page)
		if err != nil {
			if page == 1 {
				return err
			}
			c.logger.WarnContext(ctx, "etherscan page failed, stopping pagination",
				"action", action,
				"page", page,
				"error", err,
			)
			return nil
		}

		n, err := decode(raw)
		if err != nil {
			if page == 1 {
				return fmt.Errorf("decode %s result: %w", action, err)
			}
			return nil
		}
		if n < pageSize {
			return nil
		}
	}
	return nil
}

// call performs one Etherscan account-module request and returns the raw
// result payload. A "0" status with an empty result is not an error; it is
// how Etherscan reports an address with no activity.
func (c *Client) call(ctx context.Context, action, address string, page int) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("chainid", strconv.Itoa(c.chainID))
	params.Set("module", "account")
	params.Set("action", action)
	params.Set("address", address)
	params.Set("page", strconv.Itoa(page))
	params.Set("offset", strconv.Itoa(pageSize))
	params.Set("sort", "desc")
	params.Set("apikey", c.apiKey)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
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
		c.metrics.RecordCollaboratorCall("etherscan", status, duration)
	}
	if err != nil {
		return nil, fmt.Errorf("etherscan %s: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("etherscan %s: status %d", action, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("etherscan %s: read body: %w", action, err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("etherscan %s: decode envelope: %w", action, err)
	}
	if envelope.Status != "1" {
		// "No transactions found" comes back as status 0, sometimes with a
		// string result instead of an array. Treat it as an empty page.
		c.logger.DebugContext(ctx, "etherscan returned non-ok status",
			"action", action,
			"message", envelope.Message,
		)
		return json.RawMessage("[]"), nil
	}
	return envelope.Result, nil
}
