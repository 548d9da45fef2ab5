package activity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daocha/blockchain-lookup/service/blockstream"
	"github.com/daocha/blockchain-lookup/service/classify"
	"github.com/daocha/blockchain-lookup/service/etherscan"
	"github.com/daocha/blockchain-lookup/service/flow"
	"github.com/daocha/blockchain-lookup/service/solana"
)

const (
	solWallet = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	ethWallet = "0xd5ff5491f6f3c80438e02c281726757baf4d1070"
	btcWallet = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"
)

type fakeResolver struct {
	address string
	err     error
	calls   []string
}

func (f *fakeResolver) Resolve(_ context.Context, handle string) (string, error) {
	f.calls = append(f.calls, handle)
	return f.address, f.err
}

type fakeSolanaFetcher struct {
	txs []*solana.Transaction
	err error
}

func (f *fakeSolanaFetcher) GetTransactions(context.Context, solanago.PublicKey) ([]*solana.Transaction, error) {
	return f.txs, f.err
}

type fakeEthereumFetcher struct {
	txs    []etherscan.Transaction
	tokens []etherscan.TokenTransfer
	err    error
}

func (f *fakeEthereumFetcher) ListTransactions(context.Context, string) ([]etherscan.Transaction, error) {
	return f.txs, f.err
}

func (f *fakeEthereumFetcher) ListTokenTransfers(context.Context, string) ([]etherscan.TokenTransfer, error) {
	return f.tokens, nil
}

type fakeBitcoinFetcher struct {
	txs []blockstream.Tx
	err error
}

func (f *fakeBitcoinFetcher) ListTransactions(context.Context, string) ([]blockstream.Tx, error) {
	return f.txs, f.err
}

func testAggregator(cfg Config) *Aggregator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg.Logger = logger
	cfg.SolanaClassifier = classify.NewSolana(nil, logger)
	cfg.EthereumClassifier = classify.NewEthereum(nil, logger)
	cfg.BitcoinClassifier = classify.NewBitcoin(logger)
	return New(cfg)
}

func solTx(sig string, ts int64, amount float64) *solana.Transaction {
	return &solana.Transaction{
		Signature: sig,
		BlockTime: time.Unix(ts, 0),
		NativeTransfers: []flow.Transfer{
			{Asset: flow.NativeAsset, From: solWallet, To: "other", Amount: amount},
		},
	}
}

func TestInspect_SolanaSortedDescending(t *testing.T) {
	agg := testAggregator(Config{
		Solana: &fakeSolanaFetcher{txs: []*solana.Transaction{
			solTx("sig-old", 100, 1),
			solTx("sig-new", 300, 2),
			solTx("sig-mid", 200, 3),
		}},
	})

	report, err := agg.Inspect(context.Background(), solWallet)
	require.NoError(t, err)
	assert.Equal(t, "solana", report.Chain)
	assert.Equal(t, solWallet, report.Address)
	require.Len(t, report.Rows, 3)
	assert.Equal(t, int64(300), report.Rows[0].Timestamp)
	assert.Equal(t, int64(200), report.Rows[1].Timestamp)
	assert.Equal(t, int64(100), report.Rows[2].Timestamp)
}

func TestInspect_TruncatesToLimit(t *testing.T) {
	var txs []*solana.Transaction
	for i := 0; i < 10; i++ {
		txs = append(txs, solTx("sig", int64(i), 1))
	}
	agg := testAggregator(Config{
		Solana: &fakeSolanaFetcher{txs: txs},
		Limit:  4,
	})

	report, err := agg.Inspect(context.Background(), solWallet)
	require.NoError(t, err)
	assert.Len(t, report.Rows, 4)
	assert.Equal(t, int64(9), report.Rows[0].Timestamp)
}

func TestInspect_ResolvesHandleFirst(t *testing.T) {
	resolver := &fakeResolver{address: solWallet}
	agg := testAggregator(Config{
		Resolver: resolver,
		Solana:   &fakeSolanaFetcher{},
	})

	report, err := agg.Inspect(context.Background(), "msft.skr")
	require.NoError(t, err)
	assert.Equal(t, []string{"msft.skr"}, resolver.calls)
	assert.Equal(t, solWallet, report.Address)
	assert.Equal(t, "solana", report.Chain)
}

func TestInspect_ResolutionFailureSurfaces(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("no strategy succeeded")}
	agg := testAggregator(Config{Resolver: resolver})

	_, err := agg.Inspect(context.Background(), "missing.skr")
	assert.Error(t, err)
}

func TestInspect_EthereumGroupsRecords(t *testing.T) {
	agg := testAggregator(Config{
		Ethereum: &fakeEthereumFetcher{
			txs: []etherscan.Transaction{{
				TimeStamp: "1700000000",
				Hash:      "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
				From:      ethWallet,
				To:        "0xBbbbBbbbBbbbBbbbBbbbBbbbBbbbBbbbBbbbBbbb",
				Value:     "1000000000000000000",
			}},
		},
	})

	report, err := agg.Inspect(context.Background(), ethWallet)
	require.NoError(t, err)
	assert.Equal(t, "ethereum", report.Chain)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, classify.CategoryTransferOut, report.Rows[0].Category)
}

func TestInspect_BitcoinChain(t *testing.T) {
	agg := testAggregator(Config{
		Bitcoin: &fakeBitcoinFetcher{txs: []blockstream.Tx{{
			Txid:   "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b",
			Status: blockstream.TxStatus{BlockTime: 1700000000},
			Vin: []blockstream.Vin{
				{Prevout: blockstream.Vout{ScriptpubkeyAddress: btcWallet, Value: 100000000}},
			},
			Vout: []blockstream.Vout{
				{ScriptpubkeyAddress: "bc1qother", Value: 100000000},
			},
		}}},
	})

	report, err := agg.Inspect(context.Background(), btcWallet)
	require.NoError(t, err)
	assert.Equal(t, "bitcoin", report.Chain)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, classify.CategoryTransferOut, report.Rows[0].Category)
}

func TestInspect_FetchFailureDegradesToEmpty(t *testing.T) {
	agg := testAggregator(Config{
		Solana: &fakeSolanaFetcher{err: errors.New("rpc unavailable")},
	})

	report, err := agg.Inspect(context.Background(), solWallet)
	require.NoError(t, err)
	assert.Empty(t, report.Rows)
}

func TestInspect_EmptyInput(t *testing.T) {
	agg := testAggregator(Config{})
	_, err := agg.Inspect(context.Background(), "   ")
	assert.Error(t, err)
}

func TestInspect_UnknownKind(t *testing.T) {
	agg := testAggregator(Config{})
	_, err := agg.Inspect(context.Background(), "not a handle!!")
	assert.Error(t, err)
}
