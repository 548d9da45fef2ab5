package hyperliquid

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPositions_User(t *testing.T) {
	var gotPayload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotPayload))
		fmt.Fprint(w, `{
			"assetPositions": [
				{
					"type": "oneWay",
					"position": {
						"coin": "ETH",
						"szi": "-2.5",
						"leverage": {"value": 10, "type": "cross"},
						"entryPx": "3200.5",
						"markPx": "3100.0",
						"unrealizedPnl": "251.25",
						"liqPx": "4100.2"
					}
				}
			]
		}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, testLogger())
	state, err := c.Positions(context.Background(), "0xAbCd")
	require.NoError(t, err)

	assert.Equal(t, "clearinghouseState", gotPayload["type"])
	assert.Equal(t, "0xAbCd", gotPayload["user"])

	require.Len(t, state.AssetPositions, 1)
	pos := state.AssetPositions[0].Position
	assert.Equal(t, "ETH", pos.Coin)
	assert.Equal(t, "short", pos.Side())
	assert.Equal(t, -2.5, pos.Size())
	assert.Equal(t, 10.0, pos.Leverage.Value)
	assert.Equal(t, "cross", pos.Leverage.Type)
}

func TestPositions_SeekerHandle(t *testing.T) {
	var gotPayload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotPayload))
		fmt.Fprint(w, `{"assetPositions": []}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, testLogger())
	_, err := c.Positions(context.Background(), "msft.skr")
	require.NoError(t, err)

	assert.Equal(t, "clearinghouseStateSeeker", gotPayload["type"])
	assert.Equal(t, "msft.skr", gotPayload["seeker"])
	assert.NotContains(t, gotPayload, "user")
}

func TestPositions_RetriesThenSucceeds(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"assetPositions": []}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, testLogger())
	state, err := c.Positions(context.Background(), "0xAbCd")
	require.NoError(t, err)
	assert.Empty(t, state.AssetPositions)
	assert.Equal(t, 3, calls)
}

func TestPositions_ExhaustsRetries(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, testLogger())
	_, err := c.Positions(context.Background(), "0xAbCd")
	assert.Error(t, err)
	assert.Equal(t, retryAttempts, calls)
}

func TestPositionSide(t *testing.T) {
	assert.Equal(t, "long", Position{Szi: "10.5"}.Side())
	assert.Equal(t, "short", Position{Szi: "-0.1"}.Side())
	assert.Equal(t, "long", Position{Szi: ""}.Side())
}
