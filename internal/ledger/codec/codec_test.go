package codec

import (
	"math/big"
	"testing"

	"github.com/ledgerforge/ledgerd/internal/ledger/types"
)

func u128(n int64) *big.Int { return big.NewInt(n) }

func sampleAccount() *Account {
	return &Account{
		ID:             u128(10),
		DebitsPending:  u128(1),
		DebitsPosted:   u128(2),
		CreditsPending: u128(3),
		CreditsPosted:  u128(4),
		UserData128:    u128(5),
		UserData64:     6,
		UserData32:     7,
		Ledger:         700,
		Code:           10,
		Flags:          types.AccountHistory,
		Timestamp:      12345,
	}
}

func TestAccountRoundTrip(t *testing.T) {
	a := sampleAccount()
	b := EncodeAccount(a)
	if len(b) != AccountSize {
		t.Fatalf("encoded size = %d, want %d", len(b), AccountSize)
	}

	got, err := DecodeAccount(b)
	if err != nil {
		t.Fatalf("DecodeAccount: %v", err)
	}
	if !got.SameDefinition(a) {
		t.Errorf("decoded account differs in definition: %+v vs %+v", got, a)
	}
	if got.DebitsPending.Cmp(a.DebitsPending) != 0 {
		t.Errorf("DebitsPending = %s, want %s", got.DebitsPending, a.DebitsPending)
	}
	if got.Timestamp != a.Timestamp {
		t.Errorf("Timestamp = %d, want %d", got.Timestamp, a.Timestamp)
	}

	// decode(encode(x)) == x: re-encode and compare bytes.
	b2 := EncodeAccount(got)
	if string(b2) != string(b) {
		t.Error("re-encoding decoded account did not reproduce original bytes")
	}
}

func TestAccountMalformed(t *testing.T) {
	if _, err := DecodeAccount(make([]byte, AccountSize-1)); err != ErrMalformed {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestAccountReservedNonzero(t *testing.T) {
	b := EncodeAccount(sampleAccount())
	b[accOffReserved] = 1
	if _, err := DecodeAccount(b); err != ErrReservedNonzero {
		t.Errorf("expected ErrReservedNonzero, got %v", err)
	}
}

func sampleTransfer() *Transfer {
	return &Transfer{
		ID:              u128(1),
		DebitAccountID:  u128(10),
		CreditAccountID: u128(11),
		Amount:          u128(1000),
		PendingID:       u128(0),
		UserData128:     u128(0),
		UserData64:      0,
		UserData32:      0,
		Timeout:         0,
		Ledger:          700,
		Code:            10,
		Flags:           0,
		Timestamp:       999,
	}
}

func TestTransferRoundTrip(t *testing.T) {
	xt := sampleTransfer()
	b := EncodeTransfer(xt)
	if len(b) != TransferSize {
		t.Fatalf("encoded size = %d, want %d", len(b), TransferSize)
	}

	got, err := DecodeTransfer(b)
	if err != nil {
		t.Fatalf("DecodeTransfer: %v", err)
	}
	if !got.SameDefinition(xt) {
		t.Errorf("decoded transfer differs in definition")
	}
	if got.Amount.Cmp(xt.Amount) != 0 {
		t.Errorf("Amount = %s, want %s", got.Amount, xt.Amount)
	}

	b2 := EncodeTransfer(got)
	if string(b2) != string(b) {
		t.Error("re-encoding decoded transfer did not reproduce original bytes")
	}
}

func TestTransferMalformed(t *testing.T) {
	if _, err := DecodeTransfer(make([]byte, TransferSize-1)); err != ErrMalformed {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestAccountFilterRoundTrip(t *testing.T) {
	f := &AccountFilter{
		AccountID:    u128(100),
		UserData128:  u128(0),
		UserData64:   0,
		UserData32:   0,
		Code:         0,
		TimestampMin: 0,
		TimestampMax: 0,
		Limit:        2,
		Flags:        types.FilterDebits,
	}

	b := EncodeAccountFilter(f)
	if len(b) != AccountFilterSize {
		t.Fatalf("encoded size = %d, want %d", len(b), AccountFilterSize)
	}

	got, err := DecodeAccountFilter(b)
	if err != nil {
		t.Fatalf("DecodeAccountFilter: %v", err)
	}
	if got.AccountID.Cmp(f.AccountID) != 0 {
		t.Errorf("AccountID = %s, want %s", got.AccountID, f.AccountID)
	}
	if got.Limit != f.Limit {
		t.Errorf("Limit = %d, want %d", got.Limit, f.Limit)
	}
	if got.Flags != f.Flags {
		t.Errorf("Flags = %v, want %v", got.Flags, f.Flags)
	}
}

func TestAccountFilterReservedNonzero(t *testing.T) {
	b := EncodeAccountFilter(&AccountFilter{AccountID: u128(1)})
	b[filterOffReserved] = 1
	if _, err := DecodeAccountFilter(b); err != ErrReservedNonzero {
		t.Errorf("expected ErrReservedNonzero, got %v", err)
	}
}

func TestBalanceSnapshotRoundTrip(t *testing.T) {
	s := &BalanceSnapshot{
		Timestamp:      42,
		DebitsPending:  u128(1),
		DebitsPosted:   u128(2),
		CreditsPending: u128(3),
		CreditsPosted:  u128(4),
	}
	b := EncodeBalanceSnapshot(s)
	if len(b) != BalanceSnapshotSize {
		t.Fatalf("encoded size = %d, want %d", len(b), BalanceSnapshotSize)
	}

	got, err := DecodeBalanceSnapshot(b)
	if err != nil {
		t.Fatalf("DecodeBalanceSnapshot: %v", err)
	}
	if got.Timestamp != s.Timestamp {
		t.Errorf("Timestamp = %d, want %d", got.Timestamp, s.Timestamp)
	}
	if got.DebitsPosted.Cmp(s.DebitsPosted) != 0 {
		t.Errorf("DebitsPosted = %s, want %s", got.DebitsPosted, s.DebitsPosted)
	}
}
