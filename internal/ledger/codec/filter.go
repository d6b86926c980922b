package codec

import (
	"math/big"

	"github.com/ledgerforge/ledgerd/internal/ledger/types"
)

// AccountFilter offsets, per the wire layout.
const (
	filterOffAccountID    = 0
	filterOffUserData128  = 16
	filterOffUserData64   = 32
	filterOffUserData32   = 40
	filterOffCode         = 44
	filterOffReserved     = 46
	filterOffTimestampMin = 104
	filterOffTimestampMax = 112
	filterOffLimit        = 120
	filterOffFlags        = 124
)

const filterReservedSize = 58 // bytes 46..104

// AccountFilter is the decoded, in-memory form of a 128-byte
// AccountFilter query predicate.
type AccountFilter struct {
	AccountID    *big.Int
	UserData128  *big.Int
	UserData64   uint64
	UserData32   uint32
	Code         uint16
	TimestampMin uint64
	TimestampMax uint64
	Limit        uint32
	Flags        types.FilterFlags
}

// DecodeAccountFilter decodes a 128-byte blob into an AccountFilter.
func DecodeAccountFilter(b []byte) (*AccountFilter, error) {
	if len(b) < AccountFilterSize {
		return nil, ErrMalformed
	}
	if !isZero(b[filterOffReserved : filterOffReserved+filterReservedSize]) {
		return nil, ErrReservedNonzero
	}
	return &AccountFilter{
		AccountID:    getU128(b, filterOffAccountID),
		UserData128:  getU128(b, filterOffUserData128),
		UserData64:   getU64(b, filterOffUserData64),
		UserData32:   getU32(b, filterOffUserData32),
		Code:         getU16(b, filterOffCode),
		TimestampMin: getU64(b, filterOffTimestampMin),
		TimestampMax: getU64(b, filterOffTimestampMax),
		Limit:        getU32(b, filterOffLimit),
		Flags:        types.FilterFlags(getU32(b, filterOffFlags)),
	}, nil
}

// EncodeAccountFilter encodes f into a fresh 128-byte blob.
func EncodeAccountFilter(f *AccountFilter) []byte {
	b := make([]byte, AccountFilterSize)
	putU128(b, filterOffAccountID, f.AccountID)
	putU128(b, filterOffUserData128, f.UserData128)
	putU64(b, filterOffUserData64, f.UserData64)
	putU32(b, filterOffUserData32, f.UserData32)
	putU16(b, filterOffCode, f.Code)
	putU64(b, filterOffTimestampMin, f.TimestampMin)
	putU64(b, filterOffTimestampMax, f.TimestampMax)
	putU32(b, filterOffLimit, f.Limit)
	putU32(b, filterOffFlags, uint32(f.Flags))
	return b
}
