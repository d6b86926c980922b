package kernel

import (
	"math/big"

	"github.com/ledgerforge/ledgerd/internal/kvstore"
	"github.com/ledgerforge/ledgerd/internal/ledger/codec"
	"github.com/ledgerforge/ledgerd/internal/ledger/keys"
	"github.com/ledgerforge/ledgerd/internal/ledger/types"
)

// CreateAccount validates and, if it passes, commits a single
// Account record.
func (k *Kernel) CreateAccount(blob []byte) (types.Code, error) {
	codes, err := k.CreateLinkedAccounts([][]byte{blob})
	if err != nil {
		return 0, err
	}
	return codes[0], nil
}

// CreateLinkedAccounts validates and commits n Account records,
// honoring LINKED chains across them.
func (k *Kernel) CreateLinkedAccounts(blobs [][]byte) ([]types.Code, error) {
	accs := make([]*codec.Account, len(blobs))
	decodeErrs := make([]error, len(blobs))
	for i, b := range blobs {
		a, err := codec.DecodeAccount(b)
		accs[i] = a
		decodeErrs[i] = err
	}

	isLinked := func(i int) bool {
		return accs[i] != nil && accs[i].Flags.Has(types.AccountLinked)
	}
	apply := func(tx *kvstore.Tx, i int) (types.Code, error) {
		if decodeErrs[i] != nil {
			switch decodeErrs[i] {
			case codec.ErrReservedNonzero:
				return types.ReservedField, nil
			case codec.ErrMalformed:
				return types.Malformed, nil
			default:
				return 0, decodeErrs[i]
			}
		}
		return k.applyCreateAccount(tx, accs[i])
	}

	return k.runChains(len(blobs), isLinked, apply)
}

func (k *Kernel) applyCreateAccount(tx *kvstore.Tx, acc *codec.Account) (types.Code, error) {
	if acc.ID.Sign() == 0 {
		return types.IDMustNotBeZero, nil
	}
	if acc.Ledger == 0 {
		return types.LedgerMustNotBeZero, nil
	}
	if acc.Code == 0 {
		return types.CodeMustNotBeZero, nil
	}
	if acc.Flags.Has(types.AccountDebitsMustNotExceedCredits) && acc.Flags.Has(types.AccountCreditsMustNotExceedDebits) {
		return types.AccountFlagsMutuallyExclusive, nil
	}

	key := keys.Account(acc.ID)
	existingBlob, err := tx.Get(key)
	if err == nil {
		existing, derr := codec.DecodeAccount(existingBlob)
		if derr != nil {
			return 0, derr
		}
		return accountExistsCode(existing, acc), nil
	}
	if err != kvstore.ErrNotFound {
		return 0, err
	}

	ts, err := k.oracle.Next(tx)
	if err != nil {
		return 0, err
	}

	fresh := &codec.Account{
		ID:             new(big.Int).Set(acc.ID),
		DebitsPending:  big.NewInt(0),
		DebitsPosted:   big.NewInt(0),
		CreditsPending: big.NewInt(0),
		CreditsPosted:  big.NewInt(0),
		UserData128:    new(big.Int).Set(acc.UserData128),
		UserData64:     acc.UserData64,
		UserData32:     acc.UserData32,
		Ledger:         acc.Ledger,
		Code:           acc.Code,
		Flags:          acc.Flags,
		Timestamp:      ts,
	}
	if err := tx.Put(key, codec.EncodeAccount(fresh)); err != nil {
		return 0, err
	}
	return types.OK, nil
}

// accountExistsCode compares an incoming create_account request
// against the account already on record and reports EXISTS if the
// definition matches, or the first field found to differ otherwise.
func accountExistsCode(existing, incoming *codec.Account) types.Code {
	switch {
	case existing.Ledger != incoming.Ledger:
		return types.ExistsWithDifferentLedger
	case existing.Code != incoming.Code:
		return types.ExistsWithDifferentCode
	case existing.Flags != incoming.Flags:
		return types.ExistsWithDifferentFlags
	case existing.UserData128.Cmp(incoming.UserData128) != 0:
		return types.ExistsWithDifferentUserData128
	case existing.UserData64 != incoming.UserData64:
		return types.ExistsWithDifferentUserData64
	case existing.UserData32 != incoming.UserData32:
		return types.ExistsWithDifferentUserData32
	default:
		return types.Exists
	}
}

// LookupAccount returns the 128-byte Account blob stored at id, or
// nil if no such account exists. A pure read: no timestamp is
// allocated and nothing is mutated.
func (k *Kernel) LookupAccount(id *big.Int) ([]byte, error) {
	tx, err := k.store.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	blob, err := tx.Get(keys.Account(id))
	if err == kvstore.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return blob, nil
}
