// Package indexer maintains the per-account secondary logs the query
// engine reads from: an ordered transfer-index log and, for accounts
// with HISTORY set, a balance-snapshot log.
package indexer

import (
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/ledgerforge/ledgerd/internal/kvstore"
	"github.com/ledgerforge/ledgerd/internal/ledger/codec"
	"github.com/ledgerforge/ledgerd/internal/ledger/keys"
)

// EntrySize is the wire width of one transfer-index entry.
const EntrySize = 24

// Sides a transfer-index entry can record.
const (
	SideDebit  byte = 0
	SideCredit byte = 1
)

// ErrMalformed is returned when a stored index entry is shorter than
// EntrySize.
var ErrMalformed = errors.New("indexer: malformed index entry")

// Entry is one row of an account's transfer-index log: which
// transfer touched the account, on which side, and when.
type Entry struct {
	Timestamp     uint64
	TransferIDLow uint64
	Side          byte
}

// EncodeEntry encodes e into a fresh 24-byte blob: timestamp (8),
// transfer_id_low (8), side (1), reserved (7).
func EncodeEntry(e Entry) []byte {
	b := make([]byte, EntrySize)
	binary.LittleEndian.PutUint64(b[0:8], e.Timestamp)
	binary.LittleEndian.PutUint64(b[8:16], e.TransferIDLow)
	b[16] = e.Side
	return b
}

// DecodeEntry decodes a 24-byte blob into an Entry.
func DecodeEntry(b []byte) (Entry, error) {
	if len(b) < EntrySize {
		return Entry{}, ErrMalformed
	}
	return Entry{
		Timestamp:     binary.LittleEndian.Uint64(b[0:8]),
		TransferIDLow: binary.LittleEndian.Uint64(b[8:16]),
		Side:          b[16],
	}, nil
}

// RecordTransfer appends a transfer-index entry to accountID's log.
// Called once per side for every committed transfer; never invoked
// for a transfer that failed validation or state-machine application.
func RecordTransfer(tx *kvstore.Tx, accountID *big.Int, side byte, timestamp uint64, transferID *big.Int) error {
	_, err := tx.Append(keys.AccountTransferIndex(accountID), EncodeEntry(Entry{
		Timestamp:     timestamp,
		TransferIDLow: transferID.Uint64(),
		Side:          side,
	}))
	return err
}

// RecordBalanceSnapshot appends snap to accountID's balance-history
// log. Callers must check the account's HISTORY flag before calling.
func RecordBalanceSnapshot(tx *kvstore.Tx, accountID *big.Int, snap *codec.BalanceSnapshot) error {
	_, err := tx.Append(keys.AccountBalanceHistory(accountID), codec.EncodeBalanceSnapshot(snap))
	return err
}

// ReadTransferIndex returns every entry in accountID's transfer-index
// log, in append (ascending timestamp) order.
func ReadTransferIndex(tx *kvstore.Tx, accountID *big.Int) ([]Entry, error) {
	raw, err := tx.Range(keys.AccountTransferIndex(accountID), 1, 0)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, len(raw))
	for i, b := range raw {
		e, err := DecodeEntry(b)
		if err != nil {
			return nil, err
		}
		entries[i] = e
	}
	return entries, nil
}

// ReadBalanceHistory returns every raw 72-byte BalanceSnapshot blob in
// accountID's balance-history log, in append order.
func ReadBalanceHistory(tx *kvstore.Tx, accountID *big.Int) ([][]byte, error) {
	return tx.Range(keys.AccountBalanceHistory(accountID), 1, 0)
}
