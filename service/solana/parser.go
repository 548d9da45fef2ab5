package solana

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/daocha/blockchain-lookup/service/flow"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// LamportsPerSOL converts lamports to SOL.
const LamportsPerSOL = 1_000_000_000

// Well-known Solana program IDs
var (
	// SystemProgramID is the native SOL transfer program
	SystemProgramID = solana.MustPublicKeyFromBase58("11111111111111111111111111111112")

	// StakeProgramID is the native staking program
	StakeProgramID = solana.MustPublicKeyFromBase58("Stake11111111111111111111111111111111111111")

	// TokenProgramID is the SPL Token program
	TokenProgramID = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

	// Token2022ProgramID is the Token Extensions program (Token-2022)
	Token2022ProgramID = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")

	// MemoProgramIDSPL is the SPL Memo program (most common)
	MemoProgramIDSPL = solana.MustPublicKeyFromBase58("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")

	// MemoProgramIDLegacy is the legacy memo program (v1)
	MemoProgramIDLegacy = solana.MustPublicKeyFromBase58("Memo1UhkJRfHyvLMcVucJwxXeuD728EqVDDwQDxFMNo")
)

// signatureToDomain converts an RPC TransactionSignature to our domain Transaction.
// Note: This only includes metadata from the signature list, not transfer details.
func signatureToDomain(sig *rpc.TransactionSignature) *Transaction {
	txn := &Transaction{
		Signature: sig.Signature.String(),
		Slot:      sig.Slot,
	}

	// Convert block time (Unix timestamp)
	if sig.BlockTime != nil {
		txn.BlockTime = sig.BlockTime.Time()
	} else {
		txn.BlockTime = time.Time{}
	}

	// Check if transaction failed
	if sig.Err != nil {
		errMsg := fmt.Sprintf("transaction failed: %v", sig.Err)
		txn.Err = &errMsg
	}

	return txn
}

// parseTransactionFromResult parses a full GetTransactionResult into the
// domain Transaction. Value movement is reconstructed from the pre/post
// balance metadata rather than by decoding individual transfer instructions:
// balance deltas survive CPI-nested transfers and versioned transactions
// that instruction decoding misses. The invoked program IDs and any memo are
// taken from the message instructions.
func parseTransactionFromResult(sig *rpc.TransactionSignature, result *rpc.GetTransactionResult) (*Transaction, error) {
	txn := signatureToDomain(sig)

	// Failed or unavailable transactions keep metadata only.
	if sig.Err != nil || result == nil {
		return txn, nil
	}

	tx, err := result.Transaction.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}

	accountKeys := tx.Message.AccountKeys
	seen := make(map[string]struct{})
	for _, instruction := range tx.Message.Instructions {
		if int(instruction.ProgramIDIndex) >= len(accountKeys) {
			continue
		}
		programID := accountKeys[instruction.ProgramIDIndex]

		if _, ok := seen[programID.String()]; !ok {
			seen[programID.String()] = struct{}{}
			txn.Programs = append(txn.Programs, programID.String())
		}

		if programID.Equals(MemoProgramIDSPL) || programID.Equals(MemoProgramIDLegacy) {
			if memo := parseMemo(instruction.Data); memo != "" {
				txn.Memo = &memo
			}
		}
	}

	if result.Meta != nil {
		txn.NativeTransfers = nativeTransfersFromBalances(accountKeys, result.Meta)
		txn.TokenTransfers = tokenTransfersFromBalances(result.Meta)
	}

	return txn, nil
}

// nativeTransfersFromBalances derives single-sided SOL transfer events from
// the per-account lamport deltas. Accounts that lost lamports become senders
// and accounts that gained become receivers; the reconciler nets the legs
// that belong to the observer. The transaction fee is backed out of the fee
// payer (account 0) so it does not masquerade as value moved.
func nativeTransfersFromBalances(accountKeys []solana.PublicKey, meta *rpc.TransactionMeta) []flow.Transfer {
	n := len(accountKeys)
	if len(meta.PreBalances) < n {
		n = len(meta.PreBalances)
	}
	if len(meta.PostBalances) < n {
		n = len(meta.PostBalances)
	}

	var transfers []flow.Transfer
	for i := 0; i < n; i++ {
		delta := int64(meta.PostBalances[i]) - int64(meta.PreBalances[i])
		if i == 0 {
			delta += int64(meta.Fee)
		}
		switch {
		case delta < 0:
			transfers = append(transfers, flow.Transfer{
				Asset:  flow.NativeAsset,
				From:   accountKeys[i].String(),
				Amount: float64(-delta) / LamportsPerSOL,
			})
		case delta > 0:
			transfers = append(transfers, flow.Transfer{
				Asset:  flow.NativeAsset,
				To:     accountKeys[i].String(),
				Amount: float64(delta) / LamportsPerSOL,
			})
		}
	}
	return transfers
}

// tokenTransfersFromBalances derives single-sided SPL token transfer events
// from the pre/post token balance metadata, grouped by (owner, mint).
func tokenTransfersFromBalances(meta *rpc.TransactionMeta) []flow.Transfer {
	type holding struct {
		owner string
		mint  string
	}

	deltas := make(map[holding]float64)
	var order []holding

	record := func(balances []rpc.TokenBalance, sign float64) {
		for _, tb := range balances {
			if tb.Owner == nil || tb.UiTokenAmount == nil {
				continue
			}
			h := holding{owner: tb.Owner.String(), mint: tb.Mint.String()}
			if _, ok := deltas[h]; !ok {
				order = append(order, h)
			}
			deltas[h] += sign * uiAmount(tb.UiTokenAmount)
		}
	}
	record(meta.PreTokenBalances, -1)
	record(meta.PostTokenBalances, +1)

	var transfers []flow.Transfer
	for _, h := range order {
		delta := deltas[h]
		switch {
		case delta < 0:
			transfers = append(transfers, flow.Transfer{
				Asset:  h.mint,
				From:   h.owner,
				Amount: -delta,
			})
		case delta > 0:
			transfers = append(transfers, flow.Transfer{
				Asset:  h.mint,
				To:     h.owner,
				Amount: delta,
			})
		}
	}
	return transfers
}

// uiAmount returns the decimal-unit token amount, preferring the node's own
// UiAmount and falling back to scaling the raw integer string.
func uiAmount(a *rpc.UiTokenAmount) float64 {
	if a.UiAmount != nil {
		return *a.UiAmount
	}
	raw, err := strconv.ParseFloat(a.Amount, 64)
	if err != nil {
		return 0
	}
	scale := 1.0
	for i := uint8(0); i < a.Decimals; i++ {
		scale *= 10
	}
	return raw / scale
}

// parseMemo extracts the memo text from a Memo Program instruction.
func parseMemo(data []byte) string {
	// Memo program instructions contain the memo as raw UTF-8 bytes
	// Some memos are base64 encoded, others are plain text
	memo := string(data)

	// If it looks like base64, try decoding
	if decoded, err := base64.StdEncoding.DecodeString(memo); err == nil {
		if isValidUTF8(decoded) {
			return string(decoded)
		}
	}

	return memo
}

// isValidUTF8 checks if bytes are valid UTF-8
func isValidUTF8(b []byte) bool {
	for _, c := range b {
		if c == 0 {
			return false
		}
	}
	return true
}
