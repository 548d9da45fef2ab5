package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile_NativeOut(t *testing.T) {
	net := Reconcile(
		[]Transfer{{From: "obs", To: "other", Amount: 1.0}},
		nil,
		"obs",
	)
	require.Len(t, net, 1)
	assert.InDelta(t, -1.0, net[NativeAsset], 1e-12)
}

func TestReconcile_NativeIn(t *testing.T) {
	net := Reconcile(
		[]Transfer{{From: "other", To: "obs", Amount: 2.5}},
		nil,
		"obs",
	)
	require.Len(t, net, 1)
	assert.InDelta(t, 2.5, net[NativeAsset], 1e-12)
}

func TestReconcile_LoopbackNetsToZero(t *testing.T) {
	net := Reconcile(
		[]Transfer{{From: "obs", To: "obs", Amount: 5.0}},
		nil,
		"obs",
	)
	assert.Empty(t, net)
}

func TestReconcile_DustFiltered(t *testing.T) {
	net := Reconcile(
		[]Transfer{{From: "other", To: "obs", Amount: 5e-7}},
		[]Transfer{{Asset: "MintA", From: "obs", To: "other", Amount: 9.9e-7}},
		"obs",
	)
	assert.Empty(t, net)
}

func TestReconcile_SwapShape(t *testing.T) {
	// 1 SOL out, 50 units of mint M in: the scenario a swap classifier sees.
	net := Reconcile(
		[]Transfer{{From: "obs", To: "X", Amount: 1.0}},
		[]Transfer{{Asset: "M", From: "X", To: "obs", Amount: 50.0}},
		"obs",
	)
	require.Len(t, net, 2)
	assert.InDelta(t, -1.0, net[NativeAsset], 1e-12)
	assert.InDelta(t, 50.0, net["M"], 1e-12)
}

func TestReconcile_WrappedNativeStaysSeparate(t *testing.T) {
	const wsol = "So11111111111111111111111111111111111111112"
	net := Reconcile(
		[]Transfer{{From: "obs", To: "X", Amount: 1.0}},
		[]Transfer{{Asset: wsol, From: "X", To: "obs", Amount: 1.0}},
		"obs",
	)
	require.Len(t, net, 2)
	assert.InDelta(t, -1.0, net[NativeAsset], 1e-12)
	assert.InDelta(t, 1.0, net[wsol], 1e-12)
}

func TestReconcile_CaseInsensitiveObserver(t *testing.T) {
	net := Reconcile(
		nil,
		[]Transfer{{Asset: "0xtoken", From: "0xABCDEF", To: "0x999", Amount: 3.0}},
		"0xabcdef",
	)
	require.Len(t, net, 1)
	assert.InDelta(t, -3.0, net["0xtoken"], 1e-12)
}

func TestReconcile_IgnoresNonObserverLegs(t *testing.T) {
	net := Reconcile(
		[]Transfer{{From: "a", To: "b", Amount: 10.0}},
		nil,
		"obs",
	)
	assert.Empty(t, net)
}

func TestReconcile_ZeroAndNegativeAmountsIgnored(t *testing.T) {
	net := Reconcile(
		[]Transfer{
			{From: "other", To: "obs", Amount: 0},
			{From: "obs", To: "other", Amount: -1},
		},
		nil,
		"obs",
	)
	assert.Empty(t, net)
}

func TestSplit(t *testing.T) {
	sent, received := Split(map[string]float64{
		"b":         -2.0,
		"a":         1.0,
		NativeAsset: -0.5,
	})
	require.Len(t, sent, 2)
	require.Len(t, received, 1)
	// Sorted by asset id, magnitudes positive.
	assert.Equal(t, Flow{Asset: "b", Amount: 2.0}, sent[0])
	assert.Equal(t, Flow{Asset: NativeAsset, Amount: 0.5}, sent[1])
	assert.Equal(t, Flow{Asset: "a", Amount: 1.0}, received[0])
}
