// Package codec encodes and decodes the fixed-width wire records the
// ledger kernel operates on: Account and Transfer (128 bytes each),
// AccountFilter (128 bytes), and BalanceSnapshot (72 bytes). All
// multi-byte integers are little-endian; u128 fields round-trip
// through math/big.Int via pkg/helpers.
package codec

import (
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/ledgerforge/ledgerd/pkg/helpers"
)

// Record sizes in bytes.
const (
	AccountSize         = 128
	TransferSize        = 128
	AccountFilterSize   = 128
	BalanceSnapshotSize = 72
)

// ErrMalformed is returned when an input blob is shorter than its
// declared record size.
var ErrMalformed = errors.New("codec: malformed record")

// ErrReservedNonzero is returned when a reserved byte range is
// nonzero on input.
var ErrReservedNonzero = errors.New("codec: reserved bytes must be zero")

func getU128(b []byte, off int) *big.Int {
	return helpers.BytesToU128(b[off : off+helpers.U128Size])
}

func putU128(b []byte, off int, n *big.Int) {
	if n == nil {
		return // unset field: the fresh blob already holds zero
	}
	enc := helpers.U128ToBytes(n)
	copy(b[off:off+helpers.U128Size], enc[:])
}

func isZero(b []byte) bool {
	return helpers.IsZeroBytes(b)
}

func getU64(b []byte, off int) uint64 { return binary.LittleEndian.Uint64(b[off:]) }
func putU64(b []byte, off int, v uint64) { binary.LittleEndian.PutUint64(b[off:], v) }

func getU32(b []byte, off int) uint32 { return binary.LittleEndian.Uint32(b[off:]) }
func putU32(b []byte, off int, v uint32) { binary.LittleEndian.PutUint32(b[off:], v) }

func getU16(b []byte, off int) uint16 { return binary.LittleEndian.Uint16(b[off:]) }
func putU16(b []byte, off int, v uint16) { binary.LittleEndian.PutUint16(b[off:], v) }
