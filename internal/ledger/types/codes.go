package types

// Code is the result code returned inline by every kernel operation.
// Single operations return exactly one Code byte; linked batches
// return one Code byte per record, in input order.
//
// Numbering follows the larger TigerBeetle-compatible set named in
// the wire spec for the codes it fixes explicitly (OK, the LINKED_*
// codes, EXISTS, the PENDING_TRANSFER_* codes, the *_ACCOUNT_NOT_FOUND
// codes, ACCOUNTS_MUST_BE_DIFFERENT, EXCEEDS_*, LEDGER_MUST_MATCH).
// Codes not pinned by name there are assigned in the unused numeric
// gaps, grouped by the validation phase that produces them.
type Code uint8

const (
	OK                   Code = 0
	LinkedEventFailed    Code = 1
	LinkedEventChainOpen Code = 2

	// Structural validation, detected before any mutation (3-14).
	ReservedFlag                      Code = 3
	ReservedField                     Code = 4
	IDMustNotBeZero                   Code = 5
	LedgerMustNotBeZero               Code = 6
	CodeMustNotBeZero                 Code = 7
	AccountFlagsMutuallyExclusive     Code = 8
	DebitAccountIDMustNotBeZero       Code = 9
	CreditAccountIDMustNotBeZero      Code = 10
	AmountMustNotBeZero               Code = 11
	PendingIDMustBeZero               Code = 12
	PendingIDMustNotBeZero            Code = 13
	TransferFlagsPendingClassConflict Code = 14

	// Existence / idempotence, distinguished by deep-compare of the
	// stored record against the incoming one (15-24, plus 29).
	ExistsWithDifferentDebitAccountID  Code = 15
	ExistsWithDifferentCreditAccountID Code = 16
	ExistsWithDifferentAmount          Code = 17
	ExistsWithDifferentPendingID       Code = 18
	ExistsWithDifferentUserData128     Code = 19
	ExistsWithDifferentUserData64      Code = 20
	Exists                             Code = 21
	ExistsWithDifferentUserData32      Code = 22
	ExistsWithDifferentCode            Code = 23
	ExistsWithDifferentLedger          Code = 24
	ExistsWithDifferentFlags           Code = 29

	// Pending-transfer and account-reference state errors (34-41).
	PendingTransferNotFound                    Code = 34
	PendingTransferAlreadyPosted                Code = 35
	PendingTransferAlreadyVoided                Code = 36
	PendingTransferExpired                      Code = 37
	DebitAccountNotFound                        Code = 38
	CreditAccountNotFound                       Code = 39
	AccountsMustBeDifferent                     Code = 40
	PendingTransferHasDifferentDebitAccountID   Code = 41

	// Balance-constraint and overflow errors (42-51).
	ExceedsCredits                             Code = 42
	ExceedsDebits                              Code = 43
	PendingTransferHasDifferentCreditAccountID Code = 44
	OverflowsDebitsPending                      Code = 45
	OverflowsDebitsPosted                       Code = 46
	OverflowsCreditsPending                     Code = 47
	OverflowsCreditsPosted                      Code = 48
	AmountExceedsPendingAmount                  Code = 49
	AmountMustBeZeroOrPending                   Code = 50
	PendingTransferHasDifferentLedger           Code = 51

	LedgerMustMatch Code = 52

	// Malformed reports a record blob shorter than its declared size
	// (spec §4.1, §7 category (i)).
	Malformed Code = 53
)

// String returns a human-readable name for the code, for logging.
func (c Code) String() string {
	switch c {
	case OK:
		return "ok"
	case LinkedEventFailed:
		return "linked_event_failed"
	case LinkedEventChainOpen:
		return "linked_event_chain_open"
	case ReservedFlag:
		return "reserved_flag"
	case ReservedField:
		return "reserved_field"
	case IDMustNotBeZero:
		return "id_must_not_be_zero"
	case LedgerMustNotBeZero:
		return "ledger_must_not_be_zero"
	case CodeMustNotBeZero:
		return "code_must_not_be_zero"
	case AccountFlagsMutuallyExclusive:
		return "account_flags_mutually_exclusive"
	case DebitAccountIDMustNotBeZero:
		return "debit_account_id_must_not_be_zero"
	case CreditAccountIDMustNotBeZero:
		return "credit_account_id_must_not_be_zero"
	case AmountMustNotBeZero:
		return "amount_must_not_be_zero"
	case PendingIDMustBeZero:
		return "pending_id_must_be_zero"
	case PendingIDMustNotBeZero:
		return "pending_id_must_not_be_zero"
	case TransferFlagsPendingClassConflict:
		return "transfer_flags_pending_class_conflict"
	case ExistsWithDifferentDebitAccountID:
		return "exists_with_different_debit_account_id"
	case ExistsWithDifferentCreditAccountID:
		return "exists_with_different_credit_account_id"
	case ExistsWithDifferentAmount:
		return "exists_with_different_amount"
	case ExistsWithDifferentPendingID:
		return "exists_with_different_pending_id"
	case ExistsWithDifferentUserData128:
		return "exists_with_different_user_data_128"
	case ExistsWithDifferentUserData64:
		return "exists_with_different_user_data_64"
	case Exists:
		return "exists"
	case ExistsWithDifferentUserData32:
		return "exists_with_different_user_data_32"
	case ExistsWithDifferentCode:
		return "exists_with_different_code"
	case ExistsWithDifferentLedger:
		return "exists_with_different_ledger"
	case ExistsWithDifferentFlags:
		return "exists_with_different_flags"
	case PendingTransferNotFound:
		return "pending_transfer_not_found"
	case PendingTransferAlreadyPosted:
		return "pending_transfer_already_posted"
	case PendingTransferAlreadyVoided:
		return "pending_transfer_already_voided"
	case PendingTransferExpired:
		return "pending_transfer_expired"
	case DebitAccountNotFound:
		return "debit_account_not_found"
	case CreditAccountNotFound:
		return "credit_account_not_found"
	case AccountsMustBeDifferent:
		return "accounts_must_be_different"
	case PendingTransferHasDifferentDebitAccountID:
		return "pending_transfer_has_different_debit_account_id"
	case PendingTransferHasDifferentCreditAccountID:
		return "pending_transfer_has_different_credit_account_id"
	case ExceedsCredits:
		return "exceeds_credits"
	case ExceedsDebits:
		return "exceeds_debits"
	case OverflowsDebitsPending:
		return "overflows_debits_pending"
	case OverflowsDebitsPosted:
		return "overflows_debits_posted"
	case OverflowsCreditsPending:
		return "overflows_credits_pending"
	case OverflowsCreditsPosted:
		return "overflows_credits_posted"
	case AmountExceedsPendingAmount:
		return "amount_exceeds_pending_amount"
	case AmountMustBeZeroOrPending:
		return "amount_must_be_zero_or_pending_amount"
	case PendingTransferHasDifferentLedger:
		return "pending_transfer_has_different_ledger"
	case LedgerMustMatch:
		return "ledger_must_match"
	case Malformed:
		return "malformed"
	default:
		return "unknown"
	}
}
