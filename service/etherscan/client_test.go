package etherscan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
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
		assert.Equal(t, "account", r.URL.Query().Get("module"))
		assert.Equal(t, "txlist", r.URL.Query().Get("action"))
		assert.Equal(t, "0xabc", r.URL.Query().Get("address"))
		assert.Equal(t, "desc", r.URL.Query().Get("sort"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))

		fmt.Fprint(w, `{"status":"1","message":"OK","result":[
			{"timeStamp":"1700000000","hash":"0xh1","from":"0xabc","to":"0xdef","value":"1000000000000000000","isError":"0"}
		]}`)
	}))
	defer srv.Close()

	c := NewClient(testHTTPClient(), srv.URL, "test-key", nil, testLogger())
	txns, err := c.ListTransactions(context.Background(), "0xabc")
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "0xh1", txns[0].Hash)
	assert.Equal(t, "1000000000000000000", txns[0].Value)
}

func TestListTransactions_PageBudget(t *testing.T) {
	var pagesServed int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pagesServed++
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))

		rows := make([]Transaction, pageSize)
		for i := range rows {
			rows[i] = Transaction{Hash: fmt.Sprintf("0xh%d-%d", page, i)}
		}
		result, _ := json.Marshal(rows)
		fmt.Fprintf(w, `{"status":"1","message":"OK","result":%s}`, result)
	}))
	defer srv.Close()

	c := NewClient(testHTTPClient(), srv.URL, "k", nil, testLogger())
	txns, err := c.ListTransactions(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Len(t, txns, pageSize*maxPages)
	assert.Equal(t, maxPages, pagesServed, "pagination must stop at the page budget")
}

func TestListTokenTransfers_NoActivity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status":"0","message":"No transactions found","result":"No transactions found"}`)
	}))
	defer srv.Close()

	c := NewClient(testHTTPClient(), srv.URL, "k", nil, testLogger())
	transfers, err := c.ListTokenTransfers(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Empty(t, transfers)
}

func TestListTransactions_FirstPageErrorFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(testHTTPClient(), srv.URL, "k", nil, testLogger())
	_, err := c.ListTransactions(context.Background(), "0xabc")
	assert.Error(t, err)
}

func TestListTransactions_LaterPageErrorStopsEarly(t *testing.T) {
	var pagesServed int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pagesServed++
		if pagesServed > 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		rows := make([]Transaction, pageSize)
		result, _ := json.Marshal(rows)
		fmt.Fprintf(w, `{"status":"1","message":"OK","result":%s}`, result)
	}))
	defer srv.Close()

	c := NewClient(testHTTPClient(), srv.URL, "k", nil, testLogger())
	txns, err := c.ListTransactions(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Len(t, txns, pageSize)
}
