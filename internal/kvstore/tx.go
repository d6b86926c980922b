package kvstore

import (
	"database/sql"
	"errors"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("kvstore: key not found")

// Tx is a single invocation-scoped transaction over the store's
// primitives. A kernel operation acquires one Tx, performs any number
// of primitive calls against it, then commits or rolls back as a unit.
type Tx struct {
	tx *sql.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction. Safe to call after a successful
// Commit (it becomes a no-op returning sql.ErrTxDone).
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

// Get returns the blob stored at key, or ErrNotFound.
func (t *Tx) Get(key string) ([]byte, error) {
	var value []byte
	err := t.tx.QueryRow(`SELECT value FROM kv_blobs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Put stores value at key, overwriting any prior value.
func (t *Tx) Put(key string, value []byte) error {
	_, err := t.tx.Exec(
		`INSERT INTO kv_blobs(key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// Exists reports whether key has a stored blob value.
func (t *Tx) Exists(key string) (bool, error) {
	var n int
	err := t.tx.QueryRow(`SELECT 1 FROM kv_blobs WHERE key = ?`, key).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Append adds entry to the ordered log under key and returns its
// 1-based sequence number within that key.
func (t *Tx) Append(key string, entry []byte) (seq int64, err error) {
	n, err := t.Len(key)
	if err != nil {
		return 0, err
	}
	seq = n + 1
	_, err = t.tx.Exec(
		`INSERT INTO kv_entries(key, seq, entry) VALUES (?, ?, ?)`,
		key, seq, entry,
	)
	if err != nil {
		return 0, err
	}
	return seq, nil
}

// Range returns entries under key with sequence numbers in
// [startSeq, startSeq+limit), ordered by seq ascending. A limit of
// zero returns all entries from startSeq onward.
func (t *Tx) Range(key string, startSeq int64, limit int) ([][]byte, error) {
	query := `SELECT entry FROM kv_entries WHERE key = ? AND seq >= ? ORDER BY seq ASC`
	args := []interface{}{key, startSeq}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := t.tx.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var entry []byte
		if err := rows.Scan(&entry); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// Len returns the number of entries appended under key.
func (t *Tx) Len(key string) (int64, error) {
	var n int64
	err := t.tx.QueryRow(`SELECT COUNT(*) FROM kv_entries WHERE key = ?`, key).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// CounterNext atomically increments the named counter and returns
// its new value. A counter that has never been touched starts at 0
// and this call returns 1.
func (t *Tx) CounterNext(name string) (uint64, error) {
	_, err := t.tx.Exec(
		`INSERT INTO kv_counters(name, value) VALUES (?, 1)
		 ON CONFLICT(name) DO UPDATE SET value = value + 1`,
		name,
	)
	if err != nil {
		return 0, err
	}

	var value uint64
	err = t.tx.QueryRow(`SELECT value FROM kv_counters WHERE name = ?`, name).Scan(&value)
	if err != nil {
		return 0, err
	}
	return value, nil
}

// CounterValue returns the current value of the named counter without
// advancing it. An untouched counter reads as 0.
func (t *Tx) CounterValue(name string) (uint64, error) {
	var value uint64
	err := t.tx.QueryRow(`SELECT value FROM kv_counters WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return value, nil
}
