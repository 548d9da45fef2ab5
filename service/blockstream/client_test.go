package blockstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHTTPClient() *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.Logger = nil
	c.RetryMax = 0
	return c
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestListTransactions_SinglePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/address/bc1qtest/txs"))
		fmt.Fprint(w, `[
			{
				"txid": "deadbeef",
				"status": {"confirmed": true, "block_time": 1700000000},
				"vin": [{"prevout": {"scriptpubkey_address": "bc1qtest", "value": 100000000}}],
				"vout": [{"scriptpubkey_address": "bc1qother", "value": 100000000}]
			}
		]`)
	}))
	defer srv.Close()

	c := NewClient(testHTTPClient(), srv.URL, nil, testLogger())
	txs, err := c.ListTransactions(context.Background(), "bc1qtest")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "deadbeef", txs[0].Txid)
	assert.Equal(t, int64(100000000), txs[0].Vin[0].Prevout.Value)
	assert.Equal(t, "bc1qother", txs[0].Vout[0].ScriptpubkeyAddress)
}

func TestListTransactions_CursorPagination(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)

		page := make([]Tx, pageSize)
		for i := range page {
			page[i] = Tx{Txid: fmt.Sprintf("tx-%d-%d", len(paths), i)}
		}
		out, _ := json.Marshal(page)
		w.Write(out)
	}))
	defer srv.Close()

	c := NewClient(testHTTPClient(), srv.URL, nil, testLogger())
	txs, err := c.ListTransactions(context.Background(), "bc1qtest")
	require.NoError(t, err)
	assert.Len(t, txs, pageSize*maxPages)

	require.Len(t, paths, maxPages)
	assert.Equal(t, "/address/bc1qtest/txs", paths[0])
	assert.Equal(t, fmt.Sprintf("/address/bc1qtest/txs/chain/tx-1-%d", pageSize-1), paths[1])
}

func TestListTransactions_FirstPageErrorFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(testHTTPClient(), srv.URL, nil, testLogger())
	_, err := c.ListTransactions(context.Background(), "bc1qtest")
	assert.Error(t, err)
}

func TestListTransactions_LaterPageErrorStopsEarly(t *testing.T) {
	var served int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		served++
		if served > 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		page := make([]Tx, pageSize)
		for i := range page {
			page[i] = Tx{Txid: fmt.Sprintf("tx-%d", i)}
		}
		out, _ := json.Marshal(page)
		w.Write(out)
	}))
	defer srv.Close()

	c := NewClient(testHTTPClient(), srv.URL, nil, testLogger())
	txs, err := c.ListTransactions(context.Background(), "bc1qtest")
	require.NoError(t, err)
	assert.Len(t, txs, pageSize)
}

func TestListTransactions_ShortPageStops(t *testing.T) {
	var served int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		served++
		fmt.Fprint(w, `[{"txid":"only"}]`)
	}))
	defer srv.Close()

	c := NewClient(testHTTPClient(), srv.URL, nil, testLogger())
	txs, err := c.ListTransactions(context.Background(), "bc1qtest")
	require.NoError(t, err)
	assert.Len(t, txs, 1)
	assert.Equal(t, 1, served)
}
