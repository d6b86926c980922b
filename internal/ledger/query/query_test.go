package query

import (
	"math/big"
	"os"
	"testing"

	"github.com/ledgerforge/ledgerd/internal/kvstore"
	"github.com/ledgerforge/ledgerd/internal/ledger/clock"
	"github.com/ledgerforge/ledgerd/internal/ledger/codec"
	"github.com/ledgerforge/ledgerd/internal/ledger/kernel"
	"github.com/ledgerforge/ledgerd/internal/ledger/types"
)

func u128(n int64) *big.Int { return big.NewInt(n) }

func newAccount(id int64, flags types.AccountFlags) *codec.Account {
	return &codec.Account{
		ID:             u128(id),
		DebitsPending:  u128(0),
		DebitsPosted:   u128(0),
		CreditsPending: u128(0),
		CreditsPosted:  u128(0),
		UserData128:    u128(0),
		Ledger:         700,
		Code:           1,
		Flags:          flags,
	}
}

func newTransfer(id, debit, credit, amount int64) *codec.Transfer {
	return &codec.Transfer{
		ID:              u128(id),
		DebitAccountID:  u128(debit),
		CreditAccountID: u128(credit),
		Amount:          u128(amount),
		PendingID:       u128(0),
		UserData128:     u128(0),
		Ledger:          700,
		Code:            1,
	}
}

func TestQueryEngineFiltersAndOrders(t *testing.T) {
	dir, err := os.MkdirTemp("", "ledgerd-query-test-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	defer os.RemoveAll(dir)

	store, err := kvstore.New(&kvstore.Config{DataDir: dir})
	if err != nil {
		t.Fatalf("kvstore.New: %v", err)
	}
	defer store.Close()

	k := kernel.New(store, clock.NewOracle())
	for _, id := range []int64{1, 2, 3} {
		code, err := k.CreateAccount(codec.EncodeAccount(newAccount(id, 0)))
		if err != nil || code != types.OK {
			t.Fatalf("CreateAccount(%d) = %v, %v", id, code, err)
		}
	}

	// Account 1: debit in xf101, credit in xf102, debit in xf103.
	xfers := []*codec.Transfer{
		newTransfer(101, 1, 2, 10),
		newTransfer(102, 3, 1, 5),
		newTransfer(103, 1, 2, 7),
	}
	for i, xf := range xfers {
		code, err := k.CreateTransfer(codec.EncodeTransfer(xf))
		if err != nil || code != types.OK {
			t.Fatalf("CreateTransfer[%d] = %v, %v", i, code, err)
		}
	}

	engine := New(store, 100)

	// All transfers touching account 1, oldest first.
	all, err := engine.GetAccountTransfers(&codec.AccountFilter{AccountID: u128(1)})
	if err != nil {
		t.Fatalf("GetAccountTransfers: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d transfers, want 3", len(all))
	}
	first, err := codec.DecodeTransfer(all[0])
	if err != nil {
		t.Fatalf("DecodeTransfer: %v", err)
	}
	if first.ID.Cmp(u128(101)) != 0 {
		t.Errorf("first transfer id = %s, want 101", first.ID)
	}

	// Debits only: xf101 and xf103.
	debitsOnly, err := engine.GetAccountTransfers(&codec.AccountFilter{
		AccountID: u128(1),
		Flags:     types.FilterDebits,
	})
	if err != nil {
		t.Fatalf("GetAccountTransfers (debits): %v", err)
	}
	if len(debitsOnly) != 2 {
		t.Fatalf("got %d debit transfers, want 2", len(debitsOnly))
	}

	// Credits only: xf102.
	creditsOnly, err := engine.GetAccountTransfers(&codec.AccountFilter{
		AccountID: u128(1),
		Flags:     types.FilterCredits,
	})
	if err != nil {
		t.Fatalf("GetAccountTransfers (credits): %v", err)
	}
	if len(creditsOnly) != 1 {
		t.Fatalf("got %d credit transfers, want 1", len(creditsOnly))
	}
	got, err := codec.DecodeTransfer(creditsOnly[0])
	if err != nil {
		t.Fatalf("DecodeTransfer: %v", err)
	}
	if got.ID.Cmp(u128(102)) != 0 {
		t.Errorf("credit transfer id = %s, want 102", got.ID)
	}

	// Reversed: newest first.
	reversed, err := engine.GetAccountTransfers(&codec.AccountFilter{
		AccountID: u128(1),
		Flags:     types.FilterReversed,
	})
	if err != nil {
		t.Fatalf("GetAccountTransfers (reversed): %v", err)
	}
	if len(reversed) != 3 {
		t.Fatalf("got %d reversed transfers, want 3", len(reversed))
	}
	last, err := codec.DecodeTransfer(reversed[0])
	if err != nil {
		t.Fatalf("DecodeTransfer: %v", err)
	}
	if last.ID.Cmp(u128(103)) != 0 {
		t.Errorf("reversed[0] id = %s, want 103", last.ID)
	}

	// Limit caps the result set.
	limited, err := engine.GetAccountTransfers(&codec.AccountFilter{
		AccountID: u128(1),
		Limit:     1,
	})
	if err != nil {
		t.Fatalf("GetAccountTransfers (limit): %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("got %d limited transfers, want 1", len(limited))
	}
}

func TestGetAccountBalancesRequiresHistoryFlag(t *testing.T) {
	dir, err := os.MkdirTemp("", "ledgerd-query-test-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	defer os.RemoveAll(dir)

	store, err := kvstore.New(&kvstore.Config{DataDir: dir})
	if err != nil {
		t.Fatalf("kvstore.New: %v", err)
	}
	defer store.Close()

	k := kernel.New(store, clock.NewOracle())
	if code, err := k.CreateAccount(codec.EncodeAccount(newAccount(1, 0))); err != nil || code != types.OK {
		t.Fatalf("CreateAccount(1) = %v, %v", code, err)
	}
	if code, err := k.CreateAccount(codec.EncodeAccount(newAccount(2, types.AccountHistory))); err != nil || code != types.OK {
		t.Fatalf("CreateAccount(2) = %v, %v", code, err)
	}

	for i, xf := range []*codec.Transfer{
		newTransfer(101, 1, 2, 10),
		newTransfer(102, 1, 2, 5),
	} {
		code, err := k.CreateTransfer(codec.EncodeTransfer(xf))
		if err != nil || code != types.OK {
			t.Fatalf("CreateTransfer[%d] = %v, %v", i, code, err)
		}
	}

	engine := New(store, 100)

	// Account 1 has no HISTORY flag: no balance snapshots recorded.
	noHistory, err := engine.GetAccountBalances(&codec.AccountFilter{AccountID: u128(1)})
	if err != nil {
		t.Fatalf("GetAccountBalances(1): %v", err)
	}
	if len(noHistory) != 0 {
		t.Fatalf("got %d balances for account without HISTORY, want 0", len(noHistory))
	}

	// Account 2 has HISTORY: one snapshot per transfer it was party to.
	withHistory, err := engine.GetAccountBalances(&codec.AccountFilter{AccountID: u128(2)})
	if err != nil {
		t.Fatalf("GetAccountBalances(2): %v", err)
	}
	if len(withHistory) != 2 {
		t.Fatalf("got %d balances, want 2", len(withHistory))
	}
	snap, err := codec.DecodeBalanceSnapshot(withHistory[1])
	if err != nil {
		t.Fatalf("DecodeBalanceSnapshot: %v", err)
	}
	if snap.CreditsPosted.Cmp(u128(15)) != 0 {
		t.Errorf("final CreditsPosted = %s, want 15", snap.CreditsPosted)
	}
}

func TestGetAccountBalancesUnknownAccount(t *testing.T) {
	dir, err := os.MkdirTemp("", "ledgerd-query-test-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	defer os.RemoveAll(dir)

	store, err := kvstore.New(&kvstore.Config{DataDir: dir})
	if err != nil {
		t.Fatalf("kvstore.New: %v", err)
	}
	defer store.Close()

	engine := New(store, 100)
	out, err := engine.GetAccountBalances(&codec.AccountFilter{AccountID: u128(999)})
	if err != nil {
		t.Fatalf("GetAccountBalances: %v", err)
	}
	if out != nil {
		t.Errorf("got %v, want nil for unknown account", out)
	}
}
