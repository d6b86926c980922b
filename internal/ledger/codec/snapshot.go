package codec

import "math/big"

// BalanceSnapshot offsets, per the wire layout.
const (
	snapOffTimestamp      = 0
	snapOffDebitsPending  = 8
	snapOffDebitsPosted   = 24
	snapOffCreditsPending = 40
	snapOffCreditsPosted  = 56
)

// BalanceSnapshot is the decoded, in-memory form of a 72-byte
// BalanceSnapshot record, capturing an account's four balances
// immediately after a committed transfer.
type BalanceSnapshot struct {
	Timestamp      uint64
	DebitsPending  *big.Int
	DebitsPosted   *big.Int
	CreditsPending *big.Int
	CreditsPosted  *big.Int
}

// DecodeBalanceSnapshot decodes a 72-byte blob into a BalanceSnapshot.
func DecodeBalanceSnapshot(b []byte) (*BalanceSnapshot, error) {
	if len(b) < BalanceSnapshotSize {
		return nil, ErrMalformed
	}
	return &BalanceSnapshot{
		Timestamp:      getU64(b, snapOffTimestamp),
		DebitsPending:  getU128(b, snapOffDebitsPending),
		DebitsPosted:   getU128(b, snapOffDebitsPosted),
		CreditsPending: getU128(b, snapOffCreditsPending),
		CreditsPosted:  getU128(b, snapOffCreditsPosted),
	}, nil
}

// EncodeBalanceSnapshot encodes s into a fresh 72-byte blob.
func EncodeBalanceSnapshot(s *BalanceSnapshot) []byte {
	b := make([]byte, BalanceSnapshotSize)
	putU64(b, snapOffTimestamp, s.Timestamp)
	putU128(b, snapOffDebitsPending, s.DebitsPending)
	putU128(b, snapOffDebitsPosted, s.DebitsPosted)
	putU128(b, snapOffCreditsPending, s.CreditsPending)
	putU128(b, snapOffCreditsPosted, s.CreditsPosted)
	return b
}

// FromAccount builds a BalanceSnapshot capturing a's current balances
// at the given timestamp.
func FromAccount(a *Account, timestamp uint64) *BalanceSnapshot {
	return &BalanceSnapshot{
		Timestamp:      timestamp,
		DebitsPending:  new(big.Int).Set(a.DebitsPending),
		DebitsPosted:   new(big.Int).Set(a.DebitsPosted),
		CreditsPending: new(big.Int).Set(a.CreditsPending),
		CreditsPosted:  new(big.Int).Set(a.CreditsPosted),
	}
}
