package solana

import (
	"time"

	"github.com/daocha/blockchain-lookup/service/flow"
)

// Transaction represents a parsed Solana transaction.
// This is our domain model, independent of the RPC response format.
type Transaction struct {
	Signature       string
	Slot            uint64
	BlockTime       time.Time
	NativeTransfers []flow.Transfer // SOL movements in decimal units
	TokenTransfers  []flow.Transfer // SPL token movements keyed by mint, decimal units
	Programs        []string        // program IDs invoked by the transaction
	Memo            *string         // parsed from transaction instructions
	Err             *string         // nil if transaction succeeded, contains error message if failed
}
