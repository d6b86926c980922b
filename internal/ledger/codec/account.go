package codec

import (
	"math/big"

	"github.com/ledgerforge/ledgerd/internal/ledger/types"
)

// Account offsets, per the wire layout.
const (
	accOffID             = 0
	accOffDebitsPending  = 16
	accOffDebitsPosted   = 32
	accOffCreditsPending = 48
	accOffCreditsPosted  = 64
	accOffUserData128    = 80
	accOffUserData64     = 96
	accOffUserData32     = 104
	accOffReserved       = 108
	accOffLedger         = 112
	accOffCode           = 116
	accOffFlags          = 118
	accOffTimestamp      = 120
)

const accReservedSize = 4

// Account is the decoded, in-memory form of a 128-byte Account record.
type Account struct {
	ID             *big.Int
	DebitsPending  *big.Int
	DebitsPosted   *big.Int
	CreditsPending *big.Int
	CreditsPosted  *big.Int
	UserData128    *big.Int
	UserData64     uint64
	UserData32     uint32
	Ledger         uint32
	Code           uint16
	Flags          types.AccountFlags
	Timestamp      uint64
}

// DecodeAccount decodes a 128-byte blob into an Account.
func DecodeAccount(b []byte) (*Account, error) {
	if len(b) < AccountSize {
		return nil, ErrMalformed
	}
	if !isZero(b[accOffReserved : accOffReserved+accReservedSize]) {
		return nil, ErrReservedNonzero
	}
	return &Account{
		ID:             getU128(b, accOffID),
		DebitsPending:  getU128(b, accOffDebitsPending),
		DebitsPosted:   getU128(b, accOffDebitsPosted),
		CreditsPending: getU128(b, accOffCreditsPending),
		CreditsPosted:  getU128(b, accOffCreditsPosted),
		UserData128:    getU128(b, accOffUserData128),
		UserData64:     getU64(b, accOffUserData64),
		UserData32:     getU32(b, accOffUserData32),
		Ledger:         getU32(b, accOffLedger),
		Code:           getU16(b, accOffCode),
		Flags:          types.AccountFlags(getU16(b, accOffFlags)),
		Timestamp:      getU64(b, accOffTimestamp),
	}, nil
}

// EncodeAccount encodes a into a fresh 128-byte blob.
func EncodeAccount(a *Account) []byte {
	b := make([]byte, AccountSize)
	putU128(b, accOffID, a.ID)
	putU128(b, accOffDebitsPending, a.DebitsPending)
	putU128(b, accOffDebitsPosted, a.DebitsPosted)
	putU128(b, accOffCreditsPending, a.CreditsPending)
	putU128(b, accOffCreditsPosted, a.CreditsPosted)
	putU128(b, accOffUserData128, a.UserData128)
	putU64(b, accOffUserData64, a.UserData64)
	putU32(b, accOffUserData32, a.UserData32)
	putU32(b, accOffLedger, a.Ledger)
	putU16(b, accOffCode, a.Code)
	putU16(b, accOffFlags, uint16(a.Flags))
	putU64(b, accOffTimestamp, a.Timestamp)
	return b
}

// SameDefinition reports whether a and other describe the same
// account definition — every field except Timestamp and the running
// balances, which the kernel owns and which an idempotent re-create
// request cannot be expected to echo back.
func (a *Account) SameDefinition(other *Account) bool {
	return a.ID.Cmp(other.ID) == 0 &&
		a.UserData128.Cmp(other.UserData128) == 0 &&
		a.UserData64 == other.UserData64 &&
		a.UserData32 == other.UserData32 &&
		a.Ledger == other.Ledger &&
		a.Code == other.Code &&
		a.Flags == other.Flags
}
