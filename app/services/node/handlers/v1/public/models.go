package public

import (
	"github.com/karmacoin/node/foundation/blockchain/database"
	"github.com/karmacoin/node/foundation/blockchain/state"
)

// submitResult is the response to a transaction submission.
type submitResult struct {
	Status string          `json:"status"`
	TxHash database.TxHash `json:"tx_hash"`
}

// txResult carries a transaction with its status and execution events.
type txResult struct {
	Transaction state.TransactionWithStatus  `json:"transaction"`
	Events      []database.TransactionEvent  `json:"events"`
}

// accountTxsResult carries an account's transaction history.
type accountTxsResult struct {
	Transactions []state.TransactionWithStatus `json:"transactions"`
	Events       []database.TransactionEvent   `json:"events"`
}
