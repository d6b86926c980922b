package kvstore

import (
	"errors"
	"testing"
)

func TestGetPutExists(t *testing.T) {
	store := newTestStore(t)

	tx, err := store.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	if ok, err := tx.Exists("account:1"); err != nil || ok {
		t.Fatalf("Exists before Put = %v, %v; want false, nil", ok, err)
	}

	if _, err := tx.Get("account:1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get before Put = %v; want ErrNotFound", err)
	}

	if err := tx.Put("account:1", []byte("hello")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := tx.Get("account:1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("Get = %q, want hello", got)
	}

	if ok, err := tx.Exists("account:1"); err != nil || !ok {
		t.Fatalf("Exists after Put = %v, %v; want true, nil", ok, err)
	}

	if err := tx.Put("account:1", []byte("updated")); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, err = tx.Get("account:1")
	if err != nil {
		t.Fatalf("Get after overwrite: %v", err)
	}
	if string(got) != "updated" {
		t.Errorf("Get after overwrite = %q, want updated", got)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

func TestAppendRangeLen(t *testing.T) {
	store := newTestStore(t)

	tx, err := store.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback()

	if n, err := tx.Len("transfers:account-1"); err != nil || n != 0 {
		t.Fatalf("Len on empty key = %d, %v; want 0, nil", n, err)
	}

	for i := 1; i <= 5; i++ {
		seq, err := tx.Append("transfers:account-1", []byte{byte(i)})
		if err != nil {
			t.Fatalf("Append #%d: %v", i, err)
		}
		if seq != int64(i) {
			t.Errorf("Append #%d seq = %d, want %d", i, seq, i)
		}
	}

	n, err := tx.Len("transfers:account-1")
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 5 {
		t.Errorf("Len = %d, want 5", n)
	}

	all, err := tx.Range("transfers:account-1", 1, 0)
	if err != nil {
		t.Fatalf("Range all: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("Range all returned %d entries, want 5", len(all))
	}
	for i, entry := range all {
		if entry[0] != byte(i+1) {
			t.Errorf("Range all[%d] = %d, want %d", i, entry[0], i+1)
		}
	}

	page, err := tx.Range("transfers:account-1", 3, 2)
	if err != nil {
		t.Fatalf("Range page: %v", err)
	}
	if len(page) != 2 || page[0][0] != 3 || page[1][0] != 4 {
		t.Errorf("Range(3,2) = %v, want entries starting at seq 3", page)
	}
}

func TestCounterNext(t *testing.T) {
	store := newTestStore(t)

	tx, err := store.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback()

	if v, err := tx.CounterValue("timestamp"); err != nil || v != 0 {
		t.Fatalf("CounterValue untouched = %d, %v; want 0, nil", v, err)
	}

	for want := uint64(1); want <= 3; want++ {
		got, err := tx.CounterNext("timestamp")
		if err != nil {
			t.Fatalf("CounterNext: %v", err)
		}
		if got != want {
			t.Errorf("CounterNext = %d, want %d", got, want)
		}
	}

	v, err := tx.CounterValue("timestamp")
	if err != nil {
		t.Fatalf("CounterValue: %v", err)
	}
	if v != 3 {
		t.Errorf("CounterValue = %d, want 3", v)
	}
}

func TestRollbackDiscardsChanges(t *testing.T) {
	store := newTestStore(t)

	tx, err := store.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := tx.Put("k", []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	tx2, err := store.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx2.Rollback()
	if ok, err := tx2.Exists("k"); err != nil || ok {
		t.Fatalf("Exists after rollback = %v, %v; want false, nil", ok, err)
	}
}
