// Package clock provides the ledger's timestamp oracle: a strictly
// monotonically increasing 64-bit timestamp source that never
// regresses, even across process restarts.
package clock

import (
	"time"

	"github.com/ledgerforge/ledgerd/internal/kvstore"
)

const counterName = "ts"

// Oracle hands out strictly increasing timestamps within a Tx. It
// combines a persisted counter with a process-start floor so restarts
// never reuse a timestamp already observed by a prior process, even
// if the counter itself were somehow reset.
type Oracle struct {
	floor uint64
}

// NewOracle returns an Oracle whose floor is the current wall-clock
// time in nanoseconds, sampled once at construction.
func NewOracle() *Oracle {
	return &Oracle{floor: uint64(time.Now().UnixNano())}
}

// Next returns a timestamp strictly greater than any timestamp
// previously returned by this or a prior Oracle sharing the same
// store, using tx's counter_next primitive to persist progress.
func (o *Oracle) Next(tx *kvstore.Tx) (uint64, error) {
	n, err := tx.CounterNext(counterName)
	if err != nil {
		return 0, err
	}
	if n > o.floor {
		return n, nil
	}
	return o.floor + n, nil
}
