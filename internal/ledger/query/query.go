// Package query answers the ledger's two read-only filtered lookups,
// get_account_transfers and get_account_balances, against the
// per-account secondary logs the kernel maintains as it commits.
package query

import (
	"math/big"

	"github.com/ledgerforge/ledgerd/internal/kvstore"
	"github.com/ledgerforge/ledgerd/internal/ledger/codec"
	"github.com/ledgerforge/ledgerd/internal/ledger/indexer"
	"github.com/ledgerforge/ledgerd/internal/ledger/keys"
	"github.com/ledgerforge/ledgerd/internal/ledger/types"
)

// Engine runs account-scoped filtered queries against a store. It
// holds no kernel state of its own: every call opens and rolls back
// its own read-only Tx.
type Engine struct {
	store        *kvstore.Store
	defaultLimit uint32
}

// New builds an Engine backed by store. defaultLimit is used whenever
// a filter's Limit field is zero.
func New(store *kvstore.Store, defaultLimit uint32) *Engine {
	return &Engine{store: store, defaultLimit: defaultLimit}
}

// GetAccountTransfers returns the raw 128-byte Transfer blobs that
// touched filter.AccountID on the requested sides (DEBITS, CREDITS,
// or both if neither is set) within [TimestampMin, TimestampMax],
// oldest-first unless FilterReversed is set, capped at filter.Limit
// (or the engine default when Limit is zero).
func (e *Engine) GetAccountTransfers(filter *codec.AccountFilter) ([][]byte, error) {
	tx, err := e.store.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	entries, err := indexer.ReadTransferIndex(tx, filter.AccountID)
	if err != nil {
		return nil, err
	}

	wantDebits := filter.Flags.Has(types.FilterDebits)
	wantCredits := filter.Flags.Has(types.FilterCredits)
	if !wantDebits && !wantCredits {
		wantDebits, wantCredits = true, true
	}

	matched := make([]indexer.Entry, 0, len(entries))
	for _, ent := range entries {
		if ent.Side == indexer.SideDebit && !wantDebits {
			continue
		}
		if ent.Side == indexer.SideCredit && !wantCredits {
			continue
		}
		if !withinWindow(ent.Timestamp, filter.TimestampMin, filter.TimestampMax) {
			continue
		}
		matched = append(matched, ent)
	}

	matched = applyOrderAndLimit(matched, filter.Flags.Has(types.FilterReversed), e.limit(filter))

	out := make([][]byte, 0, len(matched))
	for _, ent := range matched {
		blob, err := tx.Get(keys.Transfer(new(big.Int).SetUint64(ent.TransferIDLow)))
		if err == kvstore.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, blob)
	}
	return out, nil
}

// GetAccountBalances returns the raw 72-byte BalanceSnapshot blobs
// recorded for filter.AccountID, subject to the same timestamp
// window, ordering, and limit rules as GetAccountTransfers. An
// account without the HISTORY flag set yields no results, since the
// kernel never records snapshots for it.
func (e *Engine) GetAccountBalances(filter *codec.AccountFilter) ([][]byte, error) {
	tx, err := e.store.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	accBlob, err := tx.Get(keys.Account(filter.AccountID))
	if err == kvstore.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	acc, err := codec.DecodeAccount(accBlob)
	if err != nil {
		return nil, err
	}
	if !acc.Flags.Has(types.AccountHistory) {
		return nil, nil
	}

	raw, err := indexer.ReadBalanceHistory(tx, filter.AccountID)
	if err != nil {
		return nil, err
	}

	type snapshot struct {
		timestamp uint64
		blob      []byte
	}
	matched := make([]snapshot, 0, len(raw))
	for _, b := range raw {
		snap, err := codec.DecodeBalanceSnapshot(b)
		if err != nil {
			return nil, err
		}
		if !withinWindow(snap.Timestamp, filter.TimestampMin, filter.TimestampMax) {
			continue
		}
		matched = append(matched, snapshot{timestamp: snap.Timestamp, blob: b})
	}

	if filter.Flags.Has(types.FilterReversed) {
		reverse(matched)
	}
	limit := e.limit(filter)
	if uint32(len(matched)) > limit {
		matched = matched[:limit]
	}

	out := make([][]byte, len(matched))
	for i, s := range matched {
		out[i] = s.blob
	}
	return out, nil
}

func (e *Engine) limit(filter *codec.AccountFilter) uint32 {
	if filter.Limit != 0 {
		return filter.Limit
	}
	return e.defaultLimit
}

func withinWindow(ts, min, max uint64) bool {
	if min != 0 && ts < min {
		return false
	}
	if max != 0 && ts > max {
		return false
	}
	return true
}

func applyOrderAndLimit(entries []indexer.Entry, reversed bool, limit uint32) []indexer.Entry {
	if reversed {
		reverse(entries)
	}
	if uint32(len(entries)) > limit {
		entries = entries[:limit]
	}
	return entries
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
