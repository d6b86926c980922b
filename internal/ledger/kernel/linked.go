package kernel

import (
	"github.com/ledgerforge/ledgerd/internal/kvstore"
	"github.com/ledgerforge/ledgerd/internal/ledger/types"
)

// runChains groups the n input records into linked chains (a chain is
// a maximal run of consecutive records where every record but the
// last has LINKED set) and executes each chain in its own store
// transaction: on any member's failure the whole chain rolls back and
// every other member reports LINKED_EVENT_FAILED; a chain still open
// at the end of the input fails as LINKED_EVENT_CHAIN_OPEN. Records
// outside any multi-record chain (singleton chains) commit
// individually. apply must not itself begin or end a transaction.
func (k *Kernel) runChains(
	n int,
	isLinked func(i int) bool,
	apply func(tx *kvstore.Tx, i int) (types.Code, error),
) ([]types.Code, error) {
	codes := make([]types.Code, n)

	i := 0
	for i < n {
		start := i
		end := i
		for isLinked(end) {
			end++
			if end >= n {
				for j := start; j < n; j++ {
					if j == n-1 {
						codes[j] = types.LinkedEventChainOpen
					} else {
						codes[j] = types.LinkedEventFailed
					}
				}
				return codes, nil
			}
		}

		tx, err := k.store.Begin()
		if err != nil {
			k.log.Error("failed to begin chain transaction", "error", err)
			return nil, err
		}

		offender := -1
		var offenderCode types.Code
		for j := start; j <= end; j++ {
			code, err := apply(tx, j)
			if err != nil {
				tx.Rollback()
				k.log.Error("adapter failure applying record", "index", j, "error", err)
				return nil, err
			}
			if code != types.OK {
				offender = j
				offenderCode = code
				break
			}
		}

		if offender >= 0 {
			tx.Rollback()
			k.log.Debug("chain rejected", "offender", offender, "code", offenderCode.String())
			for j := start; j <= end; j++ {
				if j == offender {
					codes[j] = offenderCode
				} else {
					codes[j] = types.LinkedEventFailed
				}
			}
		} else {
			if err := tx.Commit(); err != nil {
				k.log.Error("failed to commit chain transaction", "error", err)
				return nil, err
			}
			k.log.Info("chain committed", "records", end-start+1)
			for j := start; j <= end; j++ {
				codes[j] = types.OK
			}
		}

		i = end + 1
	}

	return codes, nil
}
