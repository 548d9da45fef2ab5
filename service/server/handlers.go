package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/daocha/blockchain-lookup/service/activity"
	"github.com/daocha/blockchain-lookup/service/hyperliquid"
	"github.com/daocha/blockchain-lookup/service/resolver"
	"github.com/daocha/blockchain-lookup/service/wallets"
)

const (
	maxInputLength = 100 // addresses top out at 62 chars, handles are shorter
	requestTimeout = 60 * time.Second
)

// Valid address/handle characters: alphanumeric plus dot for handles.
var validInputRegex = regexp.MustCompile(`^[0-9A-Za-z.]+$`)

// HandleResolver resolves a human-readable handle to a canonical address.
type HandleResolver interface {
	Resolve(ctx context.Context, handle string) (string, error)
}

// Inspector produces a classified activity report for a raw input.
type Inspector interface {
	Inspect(ctx context.Context, raw string) (*activity.Report, error)
}

// PositionFetcher fetches open position state for an account.
type PositionFetcher interface {
	Positions(ctx context.Context, account string) (*hyperliquid.State, error)
}

// handleResolve returns a handler that resolves a handle to an address.
// GET /api/v1/resolve/{handle}
// The response shape matches the fallback-service contract the resolver
// itself consumes, so one deployment can back another's fallback list.
func handleResolve(res HandleResolver, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handle := r.PathValue("handle")
		if err := validateInput(handle); err != nil {
			logger.Debug("invalid handle", "handle", handle, "error", err)
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		address, err := res.Resolve(ctx, handle)
		if errors.Is(err, resolver.ErrNotFound) {
			writeError(w, "handle not found", http.StatusNotFound)
			return
		}
		if err != nil {
			logger.Error("failed to resolve handle", "handle", handle, "error", err)
			writeError(w, "failed to resolve handle", http.StatusInternalServerError)
			return
		}

		logger.Debug("handle resolved", "handle", handle, "address", address)
		writeJSON(w, map[string]string{
			"handle":  handle,
			"address": address,
		}, http.StatusOK)
	})
}

// handleActivity returns a handler that builds an activity report.
// GET /api/v1/activity/{input}
func handleActivity(agg Inspector, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		input := r.PathValue("input")
		if err := validateInput(input); err != nil {
			logger.Debug("invalid input", "input", input, "error", err)
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		report, err := agg.Inspect(ctx, input)
		if errors.Is(err, resolver.ErrNotFound) {
			writeError(w, "handle not found", http.StatusNotFound)
			return
		}
		if err != nil {
			logger.Error("failed to build activity report", "input", input, "error", err)
			writeError(w, "failed to build activity report", http.StatusInternalServerError)
			return
		}

		logger.Debug("activity report built",
			"input", input,
			"chain", report.Chain,
			"rows", len(report.Rows))
		writeJSON(w, reportToResponse(report), http.StatusOK)
	})
}

// handlePositions returns a handler that fetches open positions.
// GET /api/v1/positions/{account}
func handlePositions(positions PositionFetcher, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if positions == nil {
			writeError(w, "positions not configured", http.StatusServiceUnavailable)
			return
		}

		account := r.PathValue("account")
		if err := validateInput(account); err != nil {
			logger.Debug("invalid account", "account", account, "error", err)
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		state, err := positions.Positions(ctx, account)
		if err != nil {
			logger.Error("failed to fetch positions", "account", account, "error", err)
			writeError(w, "failed to fetch positions", http.StatusBadGateway)
			return
		}

		writeJSON(w, state, http.StatusOK)
	})
}

// handleListWallets returns a handler that lists the known-wallet table.
// GET /api/v1/wallets
func handleListWallets(logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		all := wallets.All()
		logger.Debug("known wallets listed", "count", len(all))

		resp := make([]walletResponse, len(all))
		for i, wallet := range all {
			resp[i] = walletResponse{
				Label:   wallet.Label,
				Address: wallet.Address,
				Chain:   wallet.Chain,
				Status:  string(wallet.Status),
				Source:  wallet.Source,
			}
		}
		writeJSON(w, resp, http.StatusOK)
	})
}

type walletResponse struct {
	Label   string `json:"label"`
	Address string `json:"address"`
	Chain   string `json:"chain"`
	Status  string `json:"status"`
	Source  string `json:"source"`
}

type activityRowResponse struct {
	Timestamp int64  `json:"timestamp"`
	Category  string `json:"category"`
	Summary   string `json:"summary"`
	ShortHash string `json:"short_hash"`
}

type activityResponse struct {
	Input   string                `json:"input"`
	Address string                `json:"address"`
	Chain   string                `json:"chain"`
	Rows    []activityRowResponse `json:"rows"`
}

func reportToResponse(report *activity.Report) activityResponse {
	rows := make([]activityRowResponse, len(report.Rows))
	for i, row := range report.Rows {
		rows[i] = activityRowResponse{
			Timestamp: row.Timestamp,
			Category:  string(row.Category),
			Summary:   row.Summary,
			ShortHash: row.ShortHash,
		}
	}
	return activityResponse{
		Input:   report.Input,
		Address: report.Address,
		Chain:   report.Chain,
		Rows:    rows,
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// validateInput validates an address or handle for length and charset.
func validateInput(input string) error {
	if input == "" {
		return fmt.Errorf("address or handle is required")
	}
	if len(input) > maxInputLength {
		return fmt.Errorf("input too long: maximum length is %d characters", maxInputLength)
	}
	if !validInputRegex.MatchString(input) {
		return fmt.Errorf("input contains invalid characters")
	}
	return nil
}
