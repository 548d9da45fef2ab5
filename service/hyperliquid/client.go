package hyperliquid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/daocha/blockchain-lookup/service/metrics"
)

const (
	DefaultBaseURL = "https://api.hyperliquid.xyz/info"

	requestTimeout = 10 * time.Second
	retryAttempts  = 3
	retryDelay     = 1 * time.Second
)

// Client fetches position state from the Hyperliquid info endpoint. Unlike
// the other collaborators this one retries the POST a fixed number of times
// with a constant delay.
type Client struct {
	http    *http.Client
	baseURL string
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewClient(baseURL string, m *metrics.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    &http.Client{Timeout: requestTimeout},
		baseURL: baseURL,
		metrics: m,
		logger:  logger,
	}
}

// Positions fetches the clearinghouse state for an address or a seeker
// handle. Handles ending in .skr (or starting with "seeker") use the seeker
// variant of the request.
func (c *Client) Positions(ctx context.Context, addrOrSeeker string) (*State, error) {
	payload := map[string]string{"type": "clearinghouseState", "user": addrOrSeeker}
	if strings.HasSuffix(addrOrSeeker, ".skr") || strings.HasPrefix(strings.ToLower(addrOrSeeker), "seeker") {
		payload = map[string]string{"type": "clearinghouseStateSeeker", "seeker": addrOrSeeker}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal position request: %w", err)
	}

	start := time.Now()
	var state *State
	err = retry.Do(
		func() error {
			var attemptErr error
			state, attemptErr = c.post(ctx, body)
			return attemptErr
		},
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.Delay(retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)

	status := "success"
	if err != nil {
		status = "error"
	}
	if c.metrics != nil {
		c.metrics.RecordCollaboratorCall("hyperliquid", status, time.Since(start).Seconds())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch positions: %w", err)
	}

	c.logger.DebugContext(ctx, "fetched positions",
		"account", addrOrSeeker,
		"positions", len(state.AssetPositions))
	return state, nil
}

func (c *Client) post(ctx context.Context, body []byte) (*State, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("position service returned status %d", resp.StatusCode)
	}

	var state State
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode position state: %w", err)
	}
	return &state, nil
}
