package kernel

import (
	"math/big"

	"github.com/ledgerforge/ledgerd/internal/kvstore"
	"github.com/ledgerforge/ledgerd/internal/ledger/codec"
	"github.com/ledgerforge/ledgerd/internal/ledger/indexer"
	"github.com/ledgerforge/ledgerd/internal/ledger/keys"
	"github.com/ledgerforge/ledgerd/internal/ledger/types"
	"github.com/ledgerforge/ledgerd/pkg/helpers"
)

const (
	resolvedPosted byte = 1
	resolvedVoided byte = 2
)

// CreateTransfer validates and, if it passes, commits a single
// Transfer record.
func (k *Kernel) CreateTransfer(blob []byte) (types.Code, error) {
	codes, err := k.CreateLinkedTransfers([][]byte{blob})
	if err != nil {
		return 0, err
	}
	return codes[0], nil
}

// CreateLinkedTransfers validates and commits n Transfer records,
// honoring LINKED chains across them.
func (k *Kernel) CreateLinkedTransfers(blobs [][]byte) ([]types.Code, error) {
	xfers := make([]*codec.Transfer, len(blobs))
	decodeErrs := make([]error, len(blobs))
	for i, b := range blobs {
		x, err := codec.DecodeTransfer(b)
		xfers[i] = x
		decodeErrs[i] = err
	}

	isLinked := func(i int) bool {
		return xfers[i] != nil && xfers[i].Flags.Has(types.TransferLinked)
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
		return k.applyCreateTransfer(tx, xfers[i])
	}

	return k.runChains(len(blobs), isLinked, apply)
}

func (k *Kernel) applyCreateTransfer(tx *kvstore.Tx, xfer *codec.Transfer) (types.Code, error) {
	if code := validateTransferStructure(xfer); code != types.OK {
		return code, nil
	}

	if xfer.Flags.PendingClassCount() > 1 {
		return types.TransferFlagsPendingClassConflict, nil
	}
	switch {
	case xfer.Flags.Has(types.TransferPending):
		if xfer.PendingID.Sign() != 0 {
			return types.PendingIDMustBeZero, nil
		}
	case xfer.Flags.Has(types.TransferPostPending), xfer.Flags.Has(types.TransferVoidPending):
		if xfer.PendingID.Sign() == 0 {
			return types.PendingIDMustNotBeZero, nil
		}
	default:
		if xfer.PendingID.Sign() != 0 {
			return types.PendingIDMustBeZero, nil
		}
	}

	xferKey := keys.Transfer(xfer.ID)
	existingBlob, err := tx.Get(xferKey)
	if err == nil {
		existing, derr := codec.DecodeTransfer(existingBlob)
		if derr != nil {
			return 0, derr
		}
		return transferExistsCode(existing, xfer), nil
	}
	if err != kvstore.ErrNotFound {
		return 0, err
	}

	debitBlob, err := tx.Get(keys.Account(xfer.DebitAccountID))
	if err == kvstore.ErrNotFound {
		return types.DebitAccountNotFound, nil
	}
	if err != nil {
		return 0, err
	}
	debit, err := codec.DecodeAccount(debitBlob)
	if err != nil {
		return 0, err
	}

	creditBlob, err := tx.Get(keys.Account(xfer.CreditAccountID))
	if err == kvstore.ErrNotFound {
		return types.CreditAccountNotFound, nil
	}
	if err != nil {
		return 0, err
	}
	credit, err := codec.DecodeAccount(creditBlob)
	if err != nil {
		return 0, err
	}

	if debit.Ledger != xfer.Ledger || credit.Ledger != xfer.Ledger {
		return types.LedgerMustMatch, nil
	}

	var finalAmount *big.Int
	var code types.Code

	switch {
	case xfer.Flags.Has(types.TransferPostPending):
		finalAmount, code, err = k.applyPostPending(tx, xfer, debit, credit)
	case xfer.Flags.Has(types.TransferVoidPending):
		finalAmount, code, err = k.applyVoidPending(tx, xfer, debit, credit)
	case xfer.Flags.Has(types.TransferPending):
		finalAmount, code = applyPendingTransfer(xfer, debit, credit)
	default:
		finalAmount, code = applySinglePhaseTransfer(xfer, debit, credit)
	}
	if err != nil {
		return 0, err
	}
	if code != types.OK {
		return code, nil
	}

	ts, err := k.oracle.Next(tx)
	if err != nil {
		return 0, err
	}

	stored := *xfer
	stored.Amount = finalAmount
	stored.Timestamp = ts
	if err := tx.Put(xferKey, codec.EncodeTransfer(&stored)); err != nil {
		return 0, err
	}
	if err := tx.Put(keys.Account(debit.ID), codec.EncodeAccount(debit)); err != nil {
		return 0, err
	}
	if err := tx.Put(keys.Account(credit.ID), codec.EncodeAccount(credit)); err != nil {
		return 0, err
	}

	if err := indexer.RecordTransfer(tx, debit.ID, indexer.SideDebit, ts, xfer.ID); err != nil {
		return 0, err
	}
	if err := indexer.RecordTransfer(tx, credit.ID, indexer.SideCredit, ts, xfer.ID); err != nil {
		return 0, err
	}
	if debit.Flags.Has(types.AccountHistory) {
		if err := indexer.RecordBalanceSnapshot(tx, debit.ID, codec.FromAccount(debit, ts)); err != nil {
			return 0, err
		}
	}
	if credit.Flags.Has(types.AccountHistory) {
		if err := indexer.RecordBalanceSnapshot(tx, credit.ID, codec.FromAccount(credit, ts)); err != nil {
			return 0, err
		}
	}

	return types.OK, nil
}

func validateTransferStructure(xfer *codec.Transfer) types.Code {
	switch {
	case xfer.ID.Sign() == 0:
		return types.IDMustNotBeZero
	case xfer.DebitAccountID.Sign() == 0:
		return types.DebitAccountIDMustNotBeZero
	case xfer.CreditAccountID.Sign() == 0:
		return types.CreditAccountIDMustNotBeZero
	case xfer.Ledger == 0:
		return types.LedgerMustNotBeZero
	case xfer.Code == 0:
		return types.CodeMustNotBeZero
	case xfer.DebitAccountID.Cmp(xfer.CreditAccountID) == 0:
		return types.AccountsMustBeDifferent
	case xfer.Amount.Sign() == 0 &&
		!xfer.Flags.Has(types.TransferBalancingDebit) &&
		!xfer.Flags.Has(types.TransferBalancingCredit) &&
		!xfer.Flags.Has(types.TransferPostPending) &&
		!xfer.Flags.Has(types.TransferVoidPending):
		return types.AmountMustNotBeZero
	default:
		return types.OK
	}
}

func transferExistsCode(existing, incoming *codec.Transfer) types.Code {
	switch {
	case existing.DebitAccountID.Cmp(incoming.DebitAccountID) != 0:
		return types.ExistsWithDifferentDebitAccountID
	case existing.CreditAccountID.Cmp(incoming.CreditAccountID) != 0:
		return types.ExistsWithDifferentCreditAccountID
	case existing.PendingID.Cmp(incoming.PendingID) != 0:
		return types.ExistsWithDifferentPendingID
	case existing.Amount.Cmp(incoming.Amount) != 0:
		return types.ExistsWithDifferentAmount
	case existing.UserData128.Cmp(incoming.UserData128) != 0:
		return types.ExistsWithDifferentUserData128
	case existing.UserData64 != incoming.UserData64:
		return types.ExistsWithDifferentUserData64
	case existing.UserData32 != incoming.UserData32:
		return types.ExistsWithDifferentUserData32
	case existing.Ledger != incoming.Ledger:
		return types.ExistsWithDifferentLedger
	case existing.Code != incoming.Code:
		return types.ExistsWithDifferentCode
	case existing.Flags != incoming.Flags:
		return types.ExistsWithDifferentFlags
	default:
		return types.Exists
	}
}

// checkBalanceConstraints applies the universal balance invariant
// (spec §3): DEBITS_MUST_NOT_EXCEED_CREDITS requires
// debits_posted+debits_pending <= credits_posted, and symmetrically
// for CREDITS_MUST_NOT_EXCEED_DEBITS.
func checkBalanceConstraints(debit, credit *codec.Account) types.Code {
	if debit.Flags.Has(types.AccountDebitsMustNotExceedCredits) {
		total := new(big.Int).Add(debit.DebitsPosted, debit.DebitsPending)
		if total.Cmp(debit.CreditsPosted) > 0 {
			return types.ExceedsCredits
		}
	}
	if credit.Flags.Has(types.AccountCreditsMustNotExceedDebits) {
		total := new(big.Int).Add(credit.CreditsPosted, credit.CreditsPending)
		if total.Cmp(credit.DebitsPosted) > 0 {
			return types.ExceedsDebits
		}
	}
	return types.OK
}

// clampBalancingAmount implements the BALANCING_DEBIT/BALANCING_CREDIT
// auto-computation described in spec §4.4.2: the requested amount is
// clamped to the referenced account's remaining room before it would
// exceed its own paired balance.
func clampBalancingAmount(xfer *codec.Transfer, debit, credit *codec.Account) *big.Int {
	amount := xfer.Amount
	if xfer.Flags.Has(types.TransferBalancingDebit) {
		room := roomFor(credit.CreditsPosted, credit.CreditsPending, credit.DebitsPosted, credit.DebitsPending)
		amount = helpers.MinU128(amount, room)
	}
	if xfer.Flags.Has(types.TransferBalancingCredit) {
		room := roomFor(debit.DebitsPosted, debit.DebitsPending, debit.CreditsPosted, debit.CreditsPending)
		amount = helpers.MinU128(amount, room)
	}
	return amount
}

func roomFor(posted, pending, otherPosted, otherPending *big.Int) *big.Int {
	room := new(big.Int).Add(posted, pending)
	room.Sub(room, otherPosted)
	room.Sub(room, otherPending)
	if room.Sign() < 0 {
		return big.NewInt(0)
	}
	return room
}

func applySinglePhaseTransfer(xfer *codec.Transfer, debit, credit *codec.Account) (*big.Int, types.Code) {
	amount := clampBalancingAmount(xfer, debit, credit)

	newDebitPosted, overflow := helpers.AddU128(debit.DebitsPosted, amount)
	if overflow {
		return nil, types.OverflowsDebitsPosted
	}
	newCreditPosted, overflow := helpers.AddU128(credit.CreditsPosted, amount)
	if overflow {
		return nil, types.OverflowsCreditsPosted
	}

	origDebitPosted, origCreditPosted := debit.DebitsPosted, credit.CreditsPosted
	debit.DebitsPosted = newDebitPosted
	credit.CreditsPosted = newCreditPosted

	if code := checkBalanceConstraints(debit, credit); code != types.OK {
		debit.DebitsPosted = origDebitPosted
		credit.CreditsPosted = origCreditPosted
		return nil, code
	}
	return amount, types.OK
}

func applyPendingTransfer(xfer *codec.Transfer, debit, credit *codec.Account) (*big.Int, types.Code) {
	amount := xfer.Amount

	newDebitPending, overflow := helpers.AddU128(debit.DebitsPending, amount)
	if overflow {
		return nil, types.OverflowsDebitsPending
	}
	newCreditPending, overflow := helpers.AddU128(credit.CreditsPending, amount)
	if overflow {
		return nil, types.OverflowsCreditsPending
	}

	origDebitPending, origCreditPending := debit.DebitsPending, credit.CreditsPending
	debit.DebitsPending = newDebitPending
	credit.CreditsPending = newCreditPending

	if code := checkBalanceConstraints(debit, credit); code != types.OK {
		debit.DebitsPending = origDebitPending
		credit.CreditsPending = origCreditPending
		return nil, code
	}
	return amount, types.OK
}

// resolvePending loads and validates the transfer referenced by
// xfer.PendingID, checking it is a genuine unresolved pending
// transfer whose accounts and ledger match xfer's.
func (k *Kernel) resolvePending(tx *kvstore.Tx, xfer *codec.Transfer) (*codec.Transfer, types.Code, error) {
	pendingBlob, err := tx.Get(keys.Transfer(xfer.PendingID))
	if err == kvstore.ErrNotFound {
		return nil, types.PendingTransferNotFound, nil
	}
	if err != nil {
		return nil, 0, err
	}
	pending, err := codec.DecodeTransfer(pendingBlob)
	if err != nil {
		return nil, 0, err
	}
	if !pending.Flags.Has(types.TransferPending) {
		return nil, types.PendingTransferNotFound, nil
	}
	if pending.DebitAccountID.Cmp(xfer.DebitAccountID) != 0 {
		return nil, types.PendingTransferHasDifferentDebitAccountID, nil
	}
	if pending.CreditAccountID.Cmp(xfer.CreditAccountID) != 0 {
		return nil, types.PendingTransferHasDifferentCreditAccountID, nil
	}
	if pending.Ledger != xfer.Ledger {
		return nil, types.PendingTransferHasDifferentLedger, nil
	}

	resolvedKey := keys.TransferResolved(xfer.PendingID)
	marker, err := tx.Get(resolvedKey)
	if err == nil && len(marker) > 0 {
		switch marker[0] {
		case resolvedPosted:
			return nil, types.PendingTransferAlreadyPosted, nil
		case resolvedVoided:
			return nil, types.PendingTransferAlreadyVoided, nil
		}
	} else if err != kvstore.ErrNotFound {
		return nil, 0, err
	}

	return pending, types.OK, nil
}

func (k *Kernel) applyPostPending(tx *kvstore.Tx, xfer *codec.Transfer, debit, credit *codec.Account) (*big.Int, types.Code, error) {
	pending, code, err := k.resolvePending(tx, xfer)
	if err != nil {
		return nil, 0, err
	}
	if code != types.OK {
		return nil, code, nil
	}

	if xfer.Amount.Sign() != 0 && xfer.Amount.Cmp(pending.Amount) > 0 {
		return nil, types.AmountExceedsPendingAmount, nil
	}
	posted := pending.Amount
	if xfer.Amount.Sign() != 0 {
		posted = xfer.Amount
	}

	newDebitPending, underflow := helpers.SubU128(debit.DebitsPending, pending.Amount)
	if underflow {
		return nil, types.OverflowsDebitsPending, nil
	}
	newCreditPending, underflow := helpers.SubU128(credit.CreditsPending, pending.Amount)
	if underflow {
		return nil, types.OverflowsCreditsPending, nil
	}
	newDebitPosted, overflow := helpers.AddU128(debit.DebitsPosted, posted)
	if overflow {
		return nil, types.OverflowsDebitsPosted, nil
	}
	newCreditPosted, overflow := helpers.AddU128(credit.CreditsPosted, posted)
	if overflow {
		return nil, types.OverflowsCreditsPosted, nil
	}

	origDP, origCP, origDPo, origCPo := debit.DebitsPending, credit.CreditsPending, debit.DebitsPosted, credit.CreditsPosted
	debit.DebitsPending, credit.CreditsPending = newDebitPending, newCreditPending
	debit.DebitsPosted, credit.CreditsPosted = newDebitPosted, newCreditPosted

	if c := checkBalanceConstraints(debit, credit); c != types.OK {
		debit.DebitsPending, credit.CreditsPending = origDP, origCP
		debit.DebitsPosted, credit.CreditsPosted = origDPo, origCPo
		return nil, c, nil
	}

	if err := tx.Put(keys.TransferResolved(xfer.PendingID), []byte{resolvedPosted}); err != nil {
		return nil, 0, err
	}
	return posted, types.OK, nil
}

func (k *Kernel) applyVoidPending(tx *kvstore.Tx, xfer *codec.Transfer, debit, credit *codec.Account) (*big.Int, types.Code, error) {
	pending, code, err := k.resolvePending(tx, xfer)
	if err != nil {
		return nil, 0, err
	}
	if code != types.OK {
		return nil, code, nil
	}

	if xfer.Amount.Sign() != 0 && xfer.Amount.Cmp(pending.Amount) != 0 {
		return nil, types.AmountMustBeZeroOrPending, nil
	}

	newDebitPending, underflow := helpers.SubU128(debit.DebitsPending, pending.Amount)
	if underflow {
		return nil, types.OverflowsDebitsPending, nil
	}
	newCreditPending, underflow := helpers.SubU128(credit.CreditsPending, pending.Amount)
	if underflow {
		return nil, types.OverflowsCreditsPending, nil
	}
	debit.DebitsPending = newDebitPending
	credit.CreditsPending = newCreditPending

	if err := tx.Put(keys.TransferResolved(xfer.PendingID), []byte{resolvedVoided}); err != nil {
		return nil, 0, err
	}
	return xfer.Amount, types.OK, nil
}

// LookupTransfer returns the 128-byte Transfer blob stored at id, or
// nil if no such transfer exists.
func (k *Kernel) LookupTransfer(id *big.Int) ([]byte, error) {
	tx, err := k.store.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	blob, err := tx.Get(keys.Transfer(id))
	if err == kvstore.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return blob, nil
}
