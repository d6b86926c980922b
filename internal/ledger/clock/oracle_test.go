package clock

import (
	"os"
	"testing"

	"github.com/ledgerforge/ledgerd/internal/kvstore"
)

func newTestStore(t *testing.T) *kvstore.Store {
	t.Helper()
	dir, err := os.MkdirTemp("", "ledgerd-clock-test-*")
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

func TestOracleMonotone(t *testing.T) {
	store := newTestStore(t)
	oracle := NewOracle()

	var prev uint64
	for i := 0; i < 100; i++ {
		tx, err := store.Begin()
		if err != nil {
			t.Fatalf("Begin: %v", err)
		}
		ts, err := oracle.Next(tx)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatalf("Commit: %v", err)
		}

		if ts <= prev {
			t.Fatalf("timestamp %d did not exceed previous %d", ts, prev)
		}
		prev = ts
	}
}

func TestOracleSurvivesRestart(t *testing.T) {
	dir, err := os.MkdirTemp("", "ledgerd-clock-test-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	defer os.RemoveAll(dir)

	store, err := kvstore.New(&kvstore.Config{DataDir: dir})
	if err != nil {
		t.Fatalf("kvstore.New: %v", err)
	}

	oracle := NewOracle()
	tx, err := store.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	last, err := oracle.Next(tx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	tx.Commit()
	store.Close()

	// Simulate a restart: new Store, new Oracle, same on-disk counter.
	store2, err := kvstore.New(&kvstore.Config{DataDir: dir})
	if err != nil {
		t.Fatalf("kvstore.New (restart): %v", err)
	}
	defer store2.Close()

	oracle2 := NewOracle()
	tx2, err := store2.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx2.Rollback()

	next, err := oracle2.Next(tx2)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if next <= last {
		t.Fatalf("post-restart timestamp %d did not exceed pre-restart %d", next, last)
	}
}
