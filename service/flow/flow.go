// Package flow computes net asset movement for one observer within a single
// transaction. Raw transfer events are accumulated into signed per-asset
// totals; negative means the observer sent value, positive means received.
package flow

import (
	"math"
	"sort"
	"strings"
)

// NativeAsset is the asset identifier used for a chain's native unit.
// Wrapped representations of the native asset (e.g. the WSOL mint) keep
// their own mint identifier and are never folded into this bucket.
const NativeAsset = "native"

// DustThreshold is the minimum absolute net amount (in the asset's decimal
// unit) for a flow to participate in classification.
const DustThreshold = 1e-6

// Transfer is one movement of value inside a transaction. Amount is in the
// asset's decimal unit and must be non-negative; zero-amount transfers are
// ignored.
type Transfer struct {
	Asset  string // NativeAsset or a mint/contract identifier
	From   string
	To     string
	Amount float64
}

// Flow is a reconciled net movement of a single asset.
type Flow struct {
	Asset  string
	Amount float64 // signed: negative = sent, positive = received
}

// Reconcile collapses a transaction's native and token transfer events into
// net per-asset amounts as seen by observer. Native transfers accumulate
// under NativeAsset regardless of their Asset field; token transfers are
// keyed by their asset identifier. Address comparison is case-insensitive.
// Entries whose absolute value ends up below DustThreshold are dropped,
// which also removes loopback transfers (observer to itself).
func Reconcile(native, token []Transfer, observer string) map[string]float64 {
	net := make(map[string]float64)

	for _, t := range native {
		apply(net, NativeAsset, t, observer)
	}
	for _, t := range token {
		apply(net, t.Asset, t, observer)
	}

	for asset, amount := range net {
		if math.Abs(amount) < DustThreshold {
			delete(net, asset)
		}
	}
	return net
}

func apply(net map[string]float64, asset string, t Transfer, observer string) {
	if t.Amount <= 0 || asset == "" {
		return
	}
	if strings.EqualFold(t.From, observer) {
		net[asset] -= t.Amount
	}
	if strings.EqualFold(t.To, observer) {
		net[asset] += t.Amount
	}
}

// Split partitions reconciled flows into sent and received sets. Sent
// amounts are reported as positive magnitudes. Both slices are ordered by
// asset identifier so output is stable across runs.
func Split(net map[string]float64) (sent, received []Flow) {
	assets := make([]string, 0, len(net))
	for asset := range net {
		assets = append(assets, asset)
	}
	sort.Strings(assets)

	for _, asset := range assets {
		amount := net[asset]
		if amount < 0 {
			sent = append(sent, Flow{Asset: asset, Amount: -amount})
		} else {
			received = append(received, Flow{Asset: asset, Amount: amount})
		}
	}
	return sent, received
}
