package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

// serviceResponse covers the response shapes of the supported resolver
// services: a flat {"address": ...}, a nested {"result": {"address": ...}},
// and the proxy form {"s": "ok", "result": "..."}.
type serviceResponse struct {
	Address string          `json:"address"`
	Status  string          `json:"s"`
	Result  json.RawMessage `json:"result"`
}

// addressFrom picks the resolved address out of whichever field the service
// populated. Returns "" when no recognizable address is present.
func (sr serviceResponse) addressFrom() string {
	if sr.Address != "" {
		return sr.Address
	}
	if len(sr.Result) == 0 {
		return ""
	}
	if sr.Status != "" && sr.Status != "ok" {
		return ""
	}

	var asString string
	if err := json.Unmarshal(sr.Result, &asString); err == nil {
		return asString
	}

	var nested struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(sr.Result, &nested); err == nil {
		return nested.Address
	}
	return ""
}

// resolveViaService queries one HTTP resolver service: GET base/<handle>.
// Non-200 responses and malformed bodies are failures for this strategy
// only; the chain continues with the next one.
func (r *Resolver) resolveViaService(ctx context.Context, base, handle string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	endpoint := strings.TrimSuffix(base, "/") + "/" + url.PathEscape(handle)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("resolver service %s: %w", base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("resolver service %s: status %d", base, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("resolver service %s: read body: %w", base, err)
	}

	var sr serviceResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return "", fmt.Errorf("resolver service %s: decode body: %w", base, err)
	}
	return sr.addressFrom(), nil
}

// serviceStrategyName labels a service strategy by hostname for logs and
// metrics.
func serviceStrategyName(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return "service:" + base
	}
	return "service:" + u.Host
}
