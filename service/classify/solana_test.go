package classify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/daocha/blockchain-lookup/service/flow"
	"github.com/daocha/blockchain-lookup/service/solana"
)

const (
	solObserver = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	solOther    = "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"
	solMint     = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

func solanaTx(mutate func(*solana.Transaction)) solana.Transaction {
	tx := solana.Transaction{
		Signature: "5j7s6NiJS3JAkvgkoc18WVAsiSaci2pxB2A6ueCJP4tprA2TFg9wSyTLeYouxPBJEMzJinENTkpA52YStRW5Dia7",
		BlockTime: time.Unix(1700000000, 0),
	}
	if mutate != nil {
		mutate(&tx)
	}
	return tx
}

func TestSolanaClassify_Swap(t *testing.T) {
	md := &fakeMetadata{symbols: map[string]string{solMint: "USDC"}}
	c := NewSolana(md, testClassifierLogger())

	tx := solanaTx(func(tx *solana.Transaction) {
		tx.NativeTransfers = []flow.Transfer{
			{Asset: flow.NativeAsset, From: solObserver, To: solOther, Amount: 1.0},
		}
		tx.TokenTransfers = []flow.Transfer{
			{Asset: solMint, From: solOther, To: solObserver, Amount: 50.0},
		}
	})

	got := c.Classify(context.Background(), tx, solObserver)
	assert.Equal(t, CategorySwap, got.Category)
	assert.Equal(t, "1.0000 SOL → 50.0000 USDC", got.Summary)
	assert.Equal(t, int64(1700000000), got.Timestamp)
}

func TestSolanaClassify_SwapWithoutMetadataTruncatesMint(t *testing.T) {
	c := NewSolana(nil, testClassifierLogger())

	tx := solanaTx(func(tx *solana.Transaction) {
		tx.NativeTransfers = []flow.Transfer{
			{Asset: flow.NativeAsset, From: solObserver, To: solOther, Amount: 1.0},
		}
		tx.TokenTransfers = []flow.Transfer{
			{Asset: solMint, From: solOther, To: solObserver, Amount: 50.0},
		}
	})

	got := c.Classify(context.Background(), tx, solObserver)
	assert.Equal(t, "1.0000 SOL → 50.0000 "+solMint[:8]+"...", got.Summary)
}

func TestSolanaClassify_TransferOut(t *testing.T) {
	c := NewSolana(nil, testClassifierLogger())

	tx := solanaTx(func(tx *solana.Transaction) {
		tx.NativeTransfers = []flow.Transfer{
			{Asset: flow.NativeAsset, From: solObserver, To: solOther, Amount: 2.5},
		}
	})

	got := c.Classify(context.Background(), tx, solObserver)
	assert.Equal(t, CategoryTransferOut, got.Category)
	assert.Contains(t, got.Summary, "sent 2.5000 SOL")
	assert.Contains(t, got.Summary, "to "+solOther[:8]+"...")
}

func TestSolanaClassify_StakeProgram(t *testing.T) {
	c := NewSolana(nil, testClassifierLogger())

	tx := solanaTx(func(tx *solana.Transaction) {
		tx.Programs = []string{"Stake11111111111111111111111111111111111111"}
		tx.NativeTransfers = []flow.Transfer{
			{Asset: flow.NativeAsset, From: solObserver, To: solOther, Amount: 10.0},
		}
	})

	got := c.Classify(context.Background(), tx, solObserver)
	assert.Equal(t, CategoryStake, got.Category)
	assert.Contains(t, got.Summary, "staked 10.0000 SOL")
}

func TestSolanaClassify_UnstakeReceivedOnly(t *testing.T) {
	c := NewSolana(nil, testClassifierLogger())

	tx := solanaTx(func(tx *solana.Transaction) {
		tx.Programs = []string{"MarBmsSgKXdrN1egZf5sqe1TMai9K1rChYNDJgjq7aD"}
		tx.NativeTransfers = []flow.Transfer{
			{Asset: flow.NativeAsset, From: solOther, To: solObserver, Amount: 10.0},
		}
	})

	got := c.Classify(context.Background(), tx, solObserver)
	assert.Equal(t, CategoryUnstake, got.Category)
	assert.Contains(t, got.Summary, "Marinade")
}

func TestSolanaClassify_UnstakeIgnoresInfraPrograms(t *testing.T) {
	c := NewSolana(nil, testClassifierLogger())

	tx := solanaTx(func(tx *solana.Transaction) {
		tx.Programs = []string{
			solana.SystemProgramID.String(),
			"MarBmsSgKXdrN1egZf5sqe1TMai9K1rChYNDJgjq7aD",
		}
		tx.NativeTransfers = []flow.Transfer{
			{Asset: flow.NativeAsset, From: solOther, To: solObserver, Amount: 10.0},
		}
	})

	got := c.Classify(context.Background(), tx, solObserver)
	assert.Equal(t, CategoryUnstake, got.Category)
}

func TestSolanaClassify_ReceivedWithNonStakingProgramIsStake(t *testing.T) {
	// A staking program invoked alongside a non-staking one must not flip a
	// received-only flow to unstake; only pure staking interactions do.
	c := NewSolana(nil, testClassifierLogger())

	tx := solanaTx(func(tx *solana.Transaction) {
		tx.Programs = []string{
			"MarBmsSgKXdrN1egZf5sqe1TMai9K1rChYNDJgjq7aD",
			"JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4",
		}
		tx.NativeTransfers = []flow.Transfer{
			{Asset: flow.NativeAsset, From: solOther, To: solObserver, Amount: 10.0},
		}
	})

	got := c.Classify(context.Background(), tx, solObserver)
	assert.Equal(t, CategoryStake, got.Category)
}

func TestSolanaClassify_FallbackSkipsInfraPrograms(t *testing.T) {
	c := NewSolana(nil, testClassifierLogger())

	dex := "JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4"
	tx := solanaTx(func(tx *solana.Transaction) {
		tx.Programs = []string{solana.TokenProgramID.String(), dex}
	})

	got := c.Classify(context.Background(), tx, solObserver)
	assert.Equal(t, CategoryOther, got.Category)
	assert.Equal(t, "interaction with "+dex[:8]+"...", got.Summary)
}

func TestSolanaClassify_MemoFallback(t *testing.T) {
	c := NewSolana(nil, testClassifierLogger())

	memo := "gm from " + solOther
	tx := solanaTx(func(tx *solana.Transaction) {
		tx.Memo = &memo
	})

	got := c.Classify(context.Background(), tx, solObserver)
	assert.Equal(t, CategoryOther, got.Category)
	assert.Equal(t, "gm from "+solOther[:8]+"...", got.Summary)
}

func TestSolanaClassify_FailedTransactionFallback(t *testing.T) {
	c := NewSolana(nil, testClassifierLogger())

	errStr := "InstructionError"
	tx := solanaTx(func(tx *solana.Transaction) {
		tx.Err = &errStr
	})

	got := c.Classify(context.Background(), tx, solObserver)
	assert.Equal(t, CategoryOther, got.Category)
	assert.Equal(t, "failed transaction", got.Summary)
}

func TestSolanaClassify_DustFiltered(t *testing.T) {
	c := NewSolana(nil, testClassifierLogger())

	tx := solanaTx(func(tx *solana.Transaction) {
		tx.NativeTransfers = []flow.Transfer{
			{Asset: flow.NativeAsset, From: solObserver, To: solOther, Amount: 5e-7},
		}
	})

	got := c.Classify(context.Background(), tx, solObserver)
	assert.Equal(t, CategoryOther, got.Category)
	assert.NotContains(t, got.Summary, "SOL")
}

func TestShortHash(t *testing.T) {
	assert.Equal(t, "5j7s6NiJ...5Dia7x", ShortHash("5j7s6NiJabcdefghijklmnopqrstuvwx5Dia7x"))
	assert.Equal(t, "short", ShortHash("short"))
}
