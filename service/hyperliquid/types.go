package hyperliquid

import "strconv"

// State is the clearinghouse state payload for one account.
type State struct {
	AssetPositions []AssetPosition `json:"assetPositions"`
}

type AssetPosition struct {
	Type     string   `json:"type"`
	Position Position `json:"position"`
}

// Position is one open perpetual position. Numeric fields arrive as decimal
// strings.
type Position struct {
	Coin          string   `json:"coin"`
	Szi           string   `json:"szi"`
	Leverage      Leverage `json:"leverage"`
	EntryPx       string   `json:"entryPx"`
	MarkPx        string   `json:"markPx"`
	UnrealizedPnl string   `json:"unrealizedPnl"`
	LiqPx         string   `json:"liqPx"`
}

type Leverage struct {
	Value float64 `json:"value"`
	Type  string  `json:"type"`
}

// Size returns the signed position size; positive is long, negative short.
func (p Position) Size() float64 {
	size, _ := strconv.ParseFloat(p.Szi, 64)
	return size
}

// Side reports "long" or "short" from the sign of the position size.
func (p Position) Side() string {
	if p.Size() < 0 {
		return "short"
	}
	return "long"
}
