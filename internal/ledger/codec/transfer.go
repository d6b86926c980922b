package codec

import (
	"math/big"

	"github.com/ledgerforge/ledgerd/internal/ledger/types"
)

// Transfer offsets, per the wire layout (TigerBeetle-compatible).
const (
	xferOffID             = 0
	xferOffDebitAccountID = 16
	xferOffCreditAccountID = 32
	xferOffAmount         = 48
	xferOffPendingID      = 64
	xferOffUserData128    = 80
	xferOffUserData64     = 96
	xferOffUserData32     = 104
	xferOffTimeout        = 108
	xferOffLedger         = 112
	xferOffCode           = 116
	xferOffFlags          = 118
	xferOffTimestamp      = 120
)

// Transfer is the decoded, in-memory form of a 128-byte Transfer
// record.
type Transfer struct {
	ID              *big.Int
	DebitAccountID  *big.Int
	CreditAccountID *big.Int
	Amount          *big.Int
	PendingID       *big.Int
	UserData128     *big.Int
	UserData64      uint64
	UserData32      uint32
	Timeout         uint32
	Ledger          uint32
	Code            uint16
	Flags           types.TransferFlags
	Timestamp       uint64
}

// DecodeTransfer decodes a 128-byte blob into a Transfer.
func DecodeTransfer(b []byte) (*Transfer, error) {
	if len(b) < TransferSize {
		return nil, ErrMalformed
	}
	return &Transfer{
		ID:              getU128(b, xferOffID),
		DebitAccountID:  getU128(b, xferOffDebitAccountID),
		CreditAccountID: getU128(b, xferOffCreditAccountID),
		Amount:          getU128(b, xferOffAmount),
		PendingID:       getU128(b, xferOffPendingID),
		UserData128:     getU128(b, xferOffUserData128),
		UserData64:      getU64(b, xferOffUserData64),
		UserData32:      getU32(b, xferOffUserData32),
		Timeout:         getU32(b, xferOffTimeout),
		Ledger:          getU32(b, xferOffLedger),
		Code:            getU16(b, xferOffCode),
		Flags:           types.TransferFlags(getU16(b, xferOffFlags)),
		Timestamp:       getU64(b, xferOffTimestamp),
	}, nil
}

// EncodeTransfer encodes t into a fresh 128-byte blob.
func EncodeTransfer(t *Transfer) []byte {
	b := make([]byte, TransferSize)
	putU128(b, xferOffID, t.ID)
	putU128(b, xferOffDebitAccountID, t.DebitAccountID)
	putU128(b, xferOffCreditAccountID, t.CreditAccountID)
	putU128(b, xferOffAmount, t.Amount)
	putU128(b, xferOffPendingID, t.PendingID)
	putU128(b, xferOffUserData128, t.UserData128)
	putU64(b, xferOffUserData64, t.UserData64)
	putU32(b, xferOffUserData32, t.UserData32)
	putU32(b, xferOffTimeout, t.Timeout)
	putU32(b, xferOffLedger, t.Ledger)
	putU16(b, xferOffCode, t.Code)
	putU16(b, xferOffFlags, uint16(t.Flags))
	putU64(b, xferOffTimestamp, t.Timestamp)
	return b
}

// SameDefinition reports whether t and other describe the same
// transfer request — every field except Timestamp, which the kernel
// assigns and an idempotent re-submission cannot echo back.
func (t *Transfer) SameDefinition(other *Transfer) bool {
	return t.ID.Cmp(other.ID) == 0 &&
		t.DebitAccountID.Cmp(other.DebitAccountID) == 0 &&
		t.CreditAccountID.Cmp(other.CreditAccountID) == 0 &&
		t.Amount.Cmp(other.Amount) == 0 &&
		t.PendingID.Cmp(other.PendingID) == 0 &&
		t.UserData128.Cmp(other.UserData128) == 0 &&
		t.UserData64 == other.UserData64 &&
		t.UserData32 == other.UserData32 &&
		t.Timeout == other.Timeout &&
		t.Ledger == other.Ledger &&
		t.Code == other.Code &&
		t.Flags == other.Flags
}
