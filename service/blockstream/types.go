package blockstream

// Tx is one transaction from the address-transactions endpoint. Amounts are
// satoshis; Bitcoin has no token transfers, only input and output legs.
type Tx struct {
	Txid   string   `json:"txid"`
	Status TxStatus `json:"status"`
	Vin    []Vin    `json:"vin"`
	Vout   []Vout   `json:"vout"`
}

// TxStatus carries confirmation metadata.
type TxStatus struct {
	Confirmed bool  `json:"confirmed"`
	BlockTime int64 `json:"block_time"`
}

// Vin is one input leg; the spent output identifies the paying address.
type Vin struct {
	Prevout Vout `json:"prevout"`
}

// Vout is one output leg.
type Vout struct {
	ScriptpubkeyAddress string `json:"scriptpubkey_address"`
	Value               int64  `json:"value"`
}
