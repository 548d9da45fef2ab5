// Package metadata looks up display metadata (symbol, name) for token mints
// and contract addresses. Lookups are best effort; callers fall back to a
// truncated identifier when nothing is known.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/daocha/blockchain-lookup/service/metrics"
)

const requestTimeout = 5 * time.Second

// Asset is the display metadata for one asset identifier.
type Asset struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Client fetches asset metadata from a simple GET <base>/<assetID> service
// and caches results for the lifetime of the process.
type Client struct {
	http    *retryablehttp.Client
	baseURL string
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu    sync.Mutex
	cache map[string]Asset
}

func NewClient(httpClient *retryablehttp.Client, baseURL string, m *metrics.Metrics, logger *slog.Logger) *Client {
	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		metrics: m,
		logger:  logger,
		cache:   make(map[string]Asset),
	}
}

// GetMetadata returns the metadata for an asset identifier. A missing or
// failing backend yields a zero Asset and an error; it is never fatal.
func (c *Client) GetMetadata(ctx context.Context, assetID string) (Asset, error) {
	c.mu.Lock()
	if asset, ok := c.cache[assetID]; ok {
		c.mu.Unlock()
		return asset, nil
	}
	c.mu.Unlock()

	asset, err := c.fetch(ctx, assetID)
	if err != nil {
		c.logger.DebugContext(ctx, "metadata lookup failed", "asset", assetID, "error", err)
		return Asset{}, err
	}

	c.mu.Lock()
	c.cache[assetID] = asset
	c.mu.Unlock()
	return asset, nil
}

// Symbol returns just the display symbol for an asset identifier.
func (c *Client) Symbol(ctx context.Context, assetID string) (string, error) {
	asset, err := c.GetMetadata(ctx, assetID)
	if err != nil {
		return "", err
	}
	return asset.Symbol, nil
}

func (c *Client) fetch(ctx context.Context, assetID string) (Asset, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	start := time.Now()
	url := fmt.Sprintf("%s/%s", c.baseURL, assetID)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Asset{}, err
	}

	resp, err := c.http.Do(req)
	status := "success"
	if err != nil {
		status = "error"
	}
	if c.metrics != nil {
		c.metrics.RecordCollaboratorCall("metadata", status, time.Since(start).Seconds())
	}
	if err != nil {
		return Asset{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Asset{}, fmt.Errorf("metadata service returned status %d", resp.StatusCode)
	}

	var asset Asset
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&asset); err != nil {
		return Asset{}, fmt.Errorf("failed to decode metadata: %w", err)
	}
	return asset, nil
}
