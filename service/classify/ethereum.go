package classify

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/daocha/blockchain-lookup/service/etherscan"
	"github.com/daocha/blockchain-lookup/service/flow"
)

// ethereumStakingContracts maps well-known staking contract addresses
// (lowercase) to a protocol display name.
var ethereumStakingContracts = map[string]string{
	"0xae7ab96520de3a18e5e111b5eaab095312d7fe84": "Lido",
	"0x00000000219ab540356cbb839cbe05303d7705fa": "Beacon Deposit",
	"0xdd3f50f8a6cafbe9b31a427582963f465e745af8": "Rocket Pool",
}

// EthereumRecord is one transaction's worth of Etherscan rows: the base
// transaction (nil when only token rows reference the hash) plus every token
// transfer sharing its hash.
type EthereumRecord struct {
	Transaction    *etherscan.Transaction
	TokenTransfers []etherscan.TokenTransfer
}

// GroupEthereum merges txlist and tokentx rows into per-hash records,
// preserving first-seen order.
func GroupEthereum(txs []etherscan.Transaction, tokens []etherscan.TokenTransfer) []EthereumRecord {
	byHash := make(map[string]int)
	var records []EthereumRecord
	for i := range txs {
		tx := txs[i]
		byHash[tx.Hash] = len(records)
		records = append(records, EthereumRecord{Transaction: &tx})
	}
	for _, tt := range tokens {
		idx, ok := byHash[tt.Hash]
		if !ok {
			idx = len(records)
			byHash[tt.Hash] = idx
			records = append(records, EthereumRecord{})
		}
		records[idx].TokenTransfers = append(records[idx].TokenTransfers, tt)
	}
	return records
}

// Ethereum classifies account-model records assembled from Etherscan rows.
type Ethereum struct {
	metadata MetadataLookup
	logger   *slog.Logger
}

func NewEthereum(md MetadataLookup, logger *slog.Logger) *Ethereum {
	return &Ethereum{metadata: md, logger: logger}
}

// Classify interprets one record from the observer's point of view. A panic
// while interpreting a single record yields an unparseable row instead of
// propagating.
func (c *Ethereum) Classify(ctx context.Context, rec EthereumRecord, observer string) (out Classified) {
	timestamp, hash := ethereumTimestampAndHash(rec)
	defer func() {
		if r := recover(); r != nil {
			c.logger.DebugContext(ctx, "classification panicked", "chain", "ethereum", "hash", hash, "panic", r)
			out = unparseable(timestamp, hash)
		}
	}()

	var native, token []flow.Transfer
	symbols := map[string]string{flow.NativeAsset: "ETH"}

	if tx := rec.Transaction; tx != nil {
		if amount, err := strconv.ParseFloat(tx.Value, 64); err == nil && amount > 0 {
			native = append(native, flow.Transfer{
				Asset:  flow.NativeAsset,
				From:   tx.From,
				To:     tx.To,
				Amount: amount / 1e18,
			})
		}
	}
	for _, tt := range rec.TokenTransfers {
		amount, err := strconv.ParseFloat(tt.Value, 64)
		if err != nil || amount <= 0 {
			continue
		}
		decimals, err := strconv.Atoi(tt.TokenDecimal)
		if err != nil {
			decimals = 18
		}
		asset := strings.ToLower(tt.ContractAddress)
		symbols[asset] = tt.TokenSymbol
		token = append(token, flow.Transfer{
			Asset:  asset,
			From:   tt.From,
			To:     tt.To,
			Amount: amount / math.Pow10(decimals),
		})
	}

	net := flow.Reconcile(native, token, observer)
	sent, received := flow.Split(net)

	sentDesc := c.describeFlows(ctx, sent, symbols)
	receivedDesc := c.describeFlows(ctx, received, symbols)

	protocol, stakingCounterpart := ethereumStakingMatch(rec, observer)
	stakeKeyword, unstakeKeyword := ethereumStakingKeywords(rec)

	switch {
	case len(sent) > 0 && len(received) > 0:
		return Classified{
			Timestamp: timestamp,
			Category:  CategorySwap,
			Summary:   sentDesc + " → " + receivedDesc,
			ShortHash: ShortHash(hash),
		}

	case protocol != "" || stakeKeyword || unstakeKeyword:
		category := CategoryStake
		verb := "staked"
		if unstakeKeyword || (len(sent) == 0 && len(received) > 0 && stakingCounterpart) {
			category = CategoryUnstake
			verb = "unstaked"
		}
		summary := verb
		switch {
		case len(sent) > 0:
			summary = verb + " " + sentDesc
		case len(received) > 0:
			summary = verb + " " + receivedDesc
		default:
			summary = "staking interaction"
		}
		if protocol != "" {
			summary += " with " + protocol
		}
		return Classified{Timestamp: timestamp, Category: category, Summary: summary, ShortHash: ShortHash(hash)}

	case len(sent) > 0:
		summary := "sent " + sentDesc
		if to := ethereumCounterpart(rec, observer, false); to != "" {
			summary += " to " + TruncateAddress(to)
		}
		return Classified{Timestamp: timestamp, Category: CategoryTransferOut, Summary: summary, ShortHash: ShortHash(hash)}

	case len(received) > 0:
		summary := "received " + receivedDesc
		if from := ethereumCounterpart(rec, observer, true); from != "" {
			summary += " from " + TruncateAddress(from)
		}
		return Classified{Timestamp: timestamp, Category: CategoryTransferIn, Summary: summary, ShortHash: ShortHash(hash)}

	default:
		return Classified{
			Timestamp: timestamp,
			Category:  CategoryOther,
			Summary:   ethereumFallbackSummary(rec),
			ShortHash: ShortHash(hash),
		}
	}
}

func ethereumTimestampAndHash(rec EthereumRecord) (int64, string) {
	if tx := rec.Transaction; tx != nil {
		ts, _ := strconv.ParseInt(tx.TimeStamp, 10, 64)
		return ts, tx.Hash
	}
	if len(rec.TokenTransfers) > 0 {
		tt := rec.TokenTransfers[0]
		ts, _ := strconv.ParseInt(tt.TimeStamp, 10, 64)
		return ts, tt.Hash
	}
	return 0, ""
}

// ethereumStakingMatch reports the protocol display name when any counterpart
// address is a known staking contract, and whether every non-observer
// counterpart is one.
func ethereumStakingMatch(rec EthereumRecord, observer string) (string, bool) {
	var counterparts []string
	if tx := rec.Transaction; tx != nil {
		counterparts = append(counterparts, tx.From, tx.To)
	}
	for _, tt := range rec.TokenTransfers {
		counterparts = append(counterparts, tt.From, tt.To)
	}

	protocol := ""
	allStaking := true
	seen := false
	for _, addr := range counterparts {
		if addr == "" || strings.EqualFold(addr, observer) {
			continue
		}
		seen = true
		if name, ok := ethereumStakingContracts[strings.ToLower(addr)]; ok {
			protocol = name
		} else {
			allStaking = false
		}
	}
	return protocol, seen && allStaking
}

func ethereumStakingKeywords(rec EthereumRecord) (stake, unstake bool) {
	if rec.Transaction == nil {
		return false, false
	}
	fn := strings.ToLower(rec.Transaction.FunctionName)
	if fn == "" {
		return false, false
	}
	if strings.Contains(fn, "unstake") || strings.Contains(fn, "withdraw") {
		return false, true
	}
	return strings.Contains(fn, "stake"), false
}

// ethereumCounterpart picks the display counterpart: the party on the other
// side of the first leg pointing the given direction.
func ethereumCounterpart(rec EthereumRecord, observer string, incoming bool) string {
	pick := func(from, to string) string {
		if incoming && strings.EqualFold(to, observer) {
			return from
		}
		if !incoming && strings.EqualFold(from, observer) {
			return to
		}
		return ""
	}
	if tx := rec.Transaction; tx != nil {
		if addr := pick(tx.From, tx.To); addr != "" {
			return addr
		}
	}
	for _, tt := range rec.TokenTransfers {
		if addr := pick(tt.From, tt.To); addr != "" {
			return addr
		}
	}
	return ""
}

func ethereumFallbackSummary(rec EthereumRecord) string {
	if tx := rec.Transaction; tx != nil {
		if tx.FunctionName != "" {
			return truncateEmbeddedAddresses(tx.FunctionName)
		}
		if tx.IsError == "1" {
			return "failed transaction"
		}
	}
	return "contract interaction"
}

func (c *Ethereum) describeFlows(ctx context.Context, flows []flow.Flow, symbols map[string]string) string {
	parts := make([]string, 0, len(flows))
	for _, f := range flows {
		sym := symbolFor(ctx, c.metadata, f.Asset, symbols[f.Asset])
		parts = append(parts, formatAmount(f.Amount, sym))
	}
	return strings.Join(parts, ", ")
}
