package indexer

import (
	"math/big"
	"os"
	"testing"

	"github.com/ledgerforge/ledgerd/internal/kvstore"
	"github.com/ledgerforge/ledgerd/internal/ledger/codec"
)

func newTestStore(t *testing.T) *kvstore.Store {
	t.Helper()
	dir, err := os.MkdirTemp("", "ledgerd-indexer-test-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	store, err := kvstore.New(&kvstore.Config{DataDir: dir})
	if err != nil {
		t.Fatalf("kvstore.New: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestEntryRoundTrip(t *testing.T) {
	e := Entry{Timestamp: 42, TransferIDLow: 7, Side: SideCredit}
	b := EncodeEntry(e)
	if len(b) != EntrySize {
		t.Fatalf("encoded size = %d, want %d", len(b), EntrySize)
	}
	got, err := DecodeEntry(b)
	if err != nil {
		t.Fatalf("DecodeEntry: %v", err)
	}
	if got != e {
		t.Errorf("DecodeEntry = %+v, want %+v", got, e)
	}
}

func TestRecordAndReadTransferIndex(t *testing.T) {
	store := newTestStore(t)
	tx, err := store.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback()

	accountID := big.NewInt(100)
	for i, ts := range []uint64{10, 20, 30} {
		if err := RecordTransfer(tx, accountID, SideDebit, ts, big.NewInt(int64(i+1))); err != nil {
			t.Fatalf("RecordTransfer: %v", err)
		}
	}

	entries, err := ReadTransferIndex(tx, accountID)
	if err != nil {
		t.Fatalf("ReadTransferIndex: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for i, e := range entries {
		if e.Timestamp != uint64(10*(i+1)) {
			t.Errorf("entry[%d].Timestamp = %d", i, e.Timestamp)
		}
	}
}

func TestRecordAndReadBalanceHistory(t *testing.T) {
	store := newTestStore(t)
	tx, err := store.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback()

	accountID := big.NewInt(200)
	snap := &codec.BalanceSnapshot{
		Timestamp:      1,
		DebitsPending:  big.NewInt(0),
		DebitsPosted:   big.NewInt(150),
		CreditsPending: big.NewInt(0),
		CreditsPosted:  big.NewInt(0),
	}
	if err := RecordBalanceSnapshot(tx, accountID, snap); err != nil {
		t.Fatalf("RecordBalanceSnapshot: %v", err)
	}

	raw, err := ReadBalanceHistory(tx, accountID)
	if err != nil {
		t.Fatalf("ReadBalanceHistory: %v", err)
	}
	if len(raw) != 1 {
		t.Fatalf("got %d entries, want 1", len(raw))
	}
	got, err := codec.DecodeBalanceSnapshot(raw[0])
	if err != nil {
		t.Fatalf("DecodeBalanceSnapshot: %v", err)
	}
	if got.DebitsPosted.Cmp(snap.DebitsPosted) != 0 {
		t.Errorf("DebitsPosted = %s, want %s", got.DebitsPosted, snap.DebitsPosted)
	}
}
