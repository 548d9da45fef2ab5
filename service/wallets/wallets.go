// Package wallets holds a static table of publicly reported wallet addresses
// that are useful as inspection starting points.
package wallets

import (
	"sort"
	"strings"
)

// Status marks how confident the public attribution of a wallet is.
type Status string

const (
	StatusVerified Status = "verified"
	StatusReported Status = "reported"
)

// Wallet is one publicly attributed address. Chain is the network the
// address is active on; Hyperliquid L1 traders have no mainnet activity.
type Wallet struct {
	Label   string
	Address string
	Chain   string
	Status  Status
	Source  string
}

var known = []Wallet{
	{
		Label:   "The White Whale (@TheWhiteWhaleHL)",
		Address: "0xd5ff5491f6f3c80438e02c281726757baf4d1070",
		Chain:   "hyperliquid",
		Status:  StatusVerified,
		Source:  "Binance Research / OKX / Bitget",
	},
	{
		Label:   "The White Whale - Wallet 2",
		Address: "0xb8b9e3097c8b1dddf9c5ea9d48a7ebeaf09d67d2",
		Chain:   "hyperliquid",
		Status:  StatusVerified,
		Source:  "Binance Research",
	},
	{
		Label:   "BitcoinOG / 1011short",
		Address: "0xb317d2bc2d3d2df5fa441b5bae0ab9d8b07283ae",
		Chain:   "hyperliquid",
		Status:  StatusVerified,
		Source:  "CoinSpeaker / KuCoin / Blockchain.news",
	},
	{
		Label:   "Machi Big Brother",
		Address: "0x020ca66c30bec2c4fe3861a94e4db4a498a35872",
		Chain:   "ethereum",
		Status:  StatusVerified,
		Source:  "Etherscan / Arbiscan (machibigbrother.eth)",
	},
	{
		Label:   "James Wynn",
		Address: "0x5078C2fBeA2b2aD61bc840Bc023E35Fce56BeDb6",
		Chain:   "hyperliquid",
		Status:  StatusVerified,
		Source:  "Cryptopolitan / TheBlock",
	},
}

// All returns every known wallet sorted by label.
func All() []Wallet {
	out := make([]Wallet, len(known))
	copy(out, known)
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// Lookup finds a wallet by its address, case-insensitively. The second
// return is false when the address is not in the table.
func Lookup(address string) (Wallet, bool) {
	for _, w := range known {
		if strings.EqualFold(w.Address, address) {
			return w, true
		}
	}
	return Wallet{}, false
}
