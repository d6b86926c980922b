// Package keys builds the storage keys the ledger kernel addresses
// accounts, transfers, and their secondary indexes by.
package keys

import "math/big"

// Account returns the key an account record is stored under.
func Account(id *big.Int) string {
	return "acc:" + id.String()
}

// Transfer returns the key a transfer record is stored under.
func Transfer(id *big.Int) string {
	return "tx:" + id.String()
}

// TransferResolved returns the key of the 1-byte marker recording
// whether a pending transfer has been posted or voided.
func TransferResolved(id *big.Int) string {
	return "tx:" + id.String() + ":resolved"
}

// AccountTransferIndex returns the key of an account's ordered
// transfer-index log.
func AccountTransferIndex(id *big.Int) string {
	return "acc:" + id.String() + ":tx"
}

// AccountBalanceHistory returns the key of an account's
// balance-snapshot log.
func AccountBalanceHistory(id *big.Int) string {
	return "acc:" + id.String() + ":bh"
}
