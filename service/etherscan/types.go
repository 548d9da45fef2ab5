package etherscan

import "encoding/json"

// apiResponse is the Etherscan v2 envelope. Status is "1" on success and
// "0" for errors or empty result sets; Result stays raw until the caller
// knows which record shape to decode.
type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// Transaction is one row of the account txlist action. Etherscan reports
// every numeric field as a decimal string.
type Transaction struct {
	TimeStamp    string `json:"timeStamp"`
	Hash         string `json:"hash"`
	From         string `json:"from"`
	To           string `json:"to"`
	Value        string `json:"value"`
	IsError      string `json:"isError"`
	FunctionName string `json:"functionName"`
}

// TokenTransfer is one row of the account tokentx action.
type TokenTransfer struct {
	TimeStamp       string `json:"timeStamp"`
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	ContractAddress string `json:"contractAddress"`
	TokenSymbol     string `json:"tokenSymbol"`
	TokenDecimal    string `json:"tokenDecimal"`
}
