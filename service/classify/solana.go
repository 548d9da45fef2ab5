package classify

import (
	"context"
	"log/slog"
	"strings"

	"github.com/daocha/blockchain-lookup/service/flow"
	"github.com/daocha/blockchain-lookup/service/solana"
)

// solanaStakingPrograms maps staking program IDs to a protocol display name.
var solanaStakingPrograms = map[string]string{
	solana.StakeProgramID.String():                "native staking",
	"MarBmsSgKXdrN1egZf5sqe1TMai9K1rChYNDJgjq7aD": "Marinade",
	"CrX7kMhLC3cSsXJdT7JDgqrRVWGnUpX3gfEfxxU2NVLi": "Lido",
}

// solanaInfraPrograms are ubiquitous programs present in most transactions.
// They never identify what a transaction was about, so staking matching and
// the fallback summary skip them.
var solanaInfraPrograms = map[string]struct{}{
	solana.SystemProgramID.String():     {},
	solana.TokenProgramID.String():      {},
	solana.Token2022ProgramID.String():  {},
	solana.MemoProgramIDSPL.String():    {},
	solana.MemoProgramIDLegacy.String(): {},
}

// Solana classifies transactions whose transfer legs were synthesized from
// pre/post balance metadata.
type Solana struct {
	metadata MetadataLookup
	logger   *slog.Logger
}

func NewSolana(md MetadataLookup, logger *slog.Logger) *Solana {
	return &Solana{metadata: md, logger: logger}
}

func (c *Solana) Classify(ctx context.Context, tx solana.Transaction, observer string) (out Classified) {
	timestamp := int64(0)
	if !tx.BlockTime.IsZero() {
		timestamp = tx.BlockTime.Unix()
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.DebugContext(ctx, "classification panicked", "chain", "solana", "signature", tx.Signature, "panic", r)
			out = unparseable(timestamp, tx.Signature)
		}
	}()

	net := flow.Reconcile(tx.NativeTransfers, tx.TokenTransfers, observer)
	sent, received := flow.Split(net)

	sentDesc := c.describeSolanaFlows(ctx, sent)
	receivedDesc := c.describeSolanaFlows(ctx, received)

	protocol, allStaking := solanaStakingMatch(tx)

	base := Classified{Timestamp: timestamp, ShortHash: ShortHash(tx.Signature)}

	switch {
	case len(sent) > 0 && len(received) > 0:
		base.Category = CategorySwap
		base.Summary = sentDesc + " → " + receivedDesc

	case protocol != "":
		if len(sent) == 0 && len(received) > 0 && allStaking {
			base.Category = CategoryUnstake
			base.Summary = "unstaked " + receivedDesc + " from " + protocol
		} else {
			base.Category = CategoryStake
			if len(sent) > 0 {
				base.Summary = "staked " + sentDesc + " with " + protocol
			} else {
				base.Summary = "staking interaction with " + protocol
			}
		}

	case len(sent) > 0:
		base.Category = CategoryTransferOut
		base.Summary = "sent " + sentDesc
		if to := solanaCounterpart(tx, observer, false); to != "" {
			base.Summary += " to " + TruncateAddress(to)
		}

	case len(received) > 0:
		base.Category = CategoryTransferIn
		base.Summary = "received " + receivedDesc
		if from := solanaCounterpart(tx, observer, true); from != "" {
			base.Summary += " from " + TruncateAddress(from)
		}

	default:
		base.Category = CategoryOther
		base.Summary = solanaFallbackSummary(tx)
	}
	return base
}

// solanaCounterpart picks the other party of the first leg pointing the given
// direction, for display only.
func solanaCounterpart(tx solana.Transaction, observer string, incoming bool) string {
	legs := append(append([]flow.Transfer{}, tx.NativeTransfers...), tx.TokenTransfers...)
	for _, leg := range legs {
		if incoming && strings.EqualFold(leg.To, observer) && leg.From != "" {
			return leg.From
		}
		if !incoming && strings.EqualFold(leg.From, observer) && leg.To != "" {
			return leg.To
		}
	}
	return ""
}

// solanaStakingMatch reports the protocol display name when any invoked
// program is a known staking program, and whether every non-infrastructure
// program is one. Received-only flows count as unstake only when the latter
// holds; a DEX alongside a staking program is still a stake interaction.
func solanaStakingMatch(tx solana.Transaction) (string, bool) {
	protocol := ""
	allStaking := true
	seen := false
	for _, program := range tx.Programs {
		if _, infra := solanaInfraPrograms[program]; infra {
			continue
		}
		seen = true
		if name, ok := solanaStakingPrograms[program]; ok {
			protocol = name
		} else {
			allStaking = false
		}
	}
	return protocol, seen && allStaking
}

func solanaFallbackSummary(tx solana.Transaction) string {
	if tx.Memo != nil && *tx.Memo != "" {
		return truncateEmbeddedAddresses(*tx.Memo)
	}
	if tx.Err != nil {
		return "failed transaction"
	}
	for _, program := range tx.Programs {
		if _, infra := solanaInfraPrograms[program]; !infra {
			return "interaction with " + TruncateAddress(program)
		}
	}
	if len(tx.Programs) > 0 {
		return "interaction with " + TruncateAddress(tx.Programs[0])
	}
	return "no balance change"
}

func (c *Solana) describeSolanaFlows(ctx context.Context, flows []flow.Flow) string {
	parts := make([]string, 0, len(flows))
	for _, f := range flows {
		known := ""
		if f.Asset == flow.NativeAsset {
			known = "SOL"
		}
		parts = append(parts, formatAmount(f.Amount, symbolFor(ctx, c.metadata, f.Asset, known)))
	}
	return strings.Join(parts, ", ")
}
