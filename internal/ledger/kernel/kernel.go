// Package kernel implements the ledger's transactional core: account
// creation, the transfer state machine (single-phase, pending,
// post-pending, void-pending), linked-batch all-or-nothing rollback,
// and the two pure lookup operations. Every exported method is one
// externally-dispatched operation, executing to completion as a
// single atomic serializable unit against the store.
package kernel

import (
	"github.com/ledgerforge/ledgerd/internal/kvstore"
	"github.com/ledgerforge/ledgerd/internal/ledger/clock"
	"github.com/ledgerforge/ledgerd/pkg/logging"
)

// Kernel is the ledger's transactional core, bound to one store and
// one timestamp oracle. It logs structural/state errors (a non-OK
// result code) at Debug, commit events at Info, and invocation-level
// adapter failures at Error.
type Kernel struct {
	store  *kvstore.Store
	oracle *clock.Oracle
	log    *logging.Logger
}

// Option configures a Kernel at construction.
type Option func(*Kernel)

// WithLogger overrides the kernel's logger.
func WithLogger(log *logging.Logger) Option {
	return func(k *Kernel) { k.log = log }
}

// New builds a Kernel backed by store and oracle.
func New(store *kvstore.Store, oracle *clock.Oracle, opts ...Option) *Kernel {
	k := &Kernel{
		store:  store,
		oracle: oracle,
		log:    logging.GetDefault().Component("kernel"),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}
