package classify

import (
	"context"
	"log/slog"
	"math"

	"github.com/daocha/blockchain-lookup/service/blockstream"
	"github.com/daocha/blockchain-lookup/service/flow"
)

const satoshisPerBitcoin = 1e8

// Bitcoin classifies UTXO records: net value is outputs-minus-inputs over the
// legs belonging to the observer, matched by exact address equality.
type Bitcoin struct {
	logger *slog.Logger
}

func NewBitcoin(logger *slog.Logger) *Bitcoin {
	return &Bitcoin{logger: logger}
}

func (c *Bitcoin) Classify(ctx context.Context, tx blockstream.Tx, observer string) (out Classified) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.DebugContext(ctx, "classification panicked", "chain", "bitcoin", "txid", tx.Txid, "panic", r)
			out = unparseable(tx.Status.BlockTime, tx.Txid)
		}
	}()

	var inputs, outputs int64
	counterIn, counterOut := "", ""
	for _, vin := range tx.Vin {
		if vin.Prevout.ScriptpubkeyAddress == observer {
			inputs += vin.Prevout.Value
		} else if counterIn == "" && vin.Prevout.ScriptpubkeyAddress != "" {
			counterIn = vin.Prevout.ScriptpubkeyAddress
		}
	}
	for _, vout := range tx.Vout {
		if vout.ScriptpubkeyAddress == observer {
			outputs += vout.Value
		} else if counterOut == "" && vout.ScriptpubkeyAddress != "" {
			counterOut = vout.ScriptpubkeyAddress
		}
	}

	net := float64(outputs-inputs) / satoshisPerBitcoin
	base := Classified{Timestamp: tx.Status.BlockTime, ShortHash: ShortHash(tx.Txid)}

	switch {
	case math.Abs(net) < flow.DustThreshold:
		base.Category = CategoryInternal
		base.Summary = "no net balance change"
	case net < 0:
		base.Category = CategoryTransferOut
		base.Summary = "sent " + formatAmount(-net, "BTC")
		if counterOut != "" {
			base.Summary += " to " + TruncateAddress(counterOut)
		}
	default:
		base.Category = CategoryTransferIn
		base.Summary = "received " + formatAmount(net, "BTC")
		if counterIn != "" {
			base.Summary += " from " + TruncateAddress(counterIn)
		}
	}
	return base
}
