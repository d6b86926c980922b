package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ledgerforge/ledgerd/internal/ledger/codec"
	"github.com/ledgerforge/ledgerd/internal/ledger/types"
	"github.com/ledgerforge/ledgerd/pkg/helpers"
)

// CodeResult is the response shape for the two single-record create
// operations: the in-band result Code, plus its name for human
// consumption.
type CodeResult struct {
	Code uint8  `json:"code"`
	Name string `json:"name"`
}

func codeResult(code types.Code) *CodeResult {
	return &CodeResult{Code: uint8(code), Name: code.String()}
}

// CodesResult is the response shape for the two linked-batch create
// operations: one Code per input record, in order.
type CodesResult struct {
	Codes []CodeResult `json:"codes"`
}

func codesResult(codes []types.Code) *CodesResult {
	out := make([]CodeResult, len(codes))
	for i, c := range codes {
		out[i] = CodeResult{Code: uint8(c), Name: c.String()}
	}
	return &CodesResult{Codes: out}
}

// CreateAccountParams carries the hex-encoded 128-byte Account record
// to create.
type CreateAccountParams struct {
	Account string `json:"account"`
}

func (s *Server) createAccount(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p CreateAccountParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	blob, err := helpers.HexToBytes(p.Account)
	if err != nil {
		return nil, fmt.Errorf("invalid account hex: %w", err)
	}

	code, err := s.kernel.CreateAccount(blob)
	if err != nil {
		return nil, err
	}
	if code == types.OK {
		s.notifyCommitted("account", p.Account)
	}
	return codeResult(code), nil
}

// CreateLinkedAccountsParams carries the hex-encoded Account records
// of a linked chain, in order.
type CreateLinkedAccountsParams struct {
	Accounts []string `json:"accounts"`
}

func (s *Server) createLinkedAccounts(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p CreateLinkedAccountsParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	blobs := make([][]byte, len(p.Accounts))
	for i, hexBlob := range p.Accounts {
		b, err := helpers.HexToBytes(hexBlob)
		if err != nil {
			return nil, fmt.Errorf("invalid account hex at index %d: %w", i, err)
		}
		blobs[i] = b
	}

	codes, err := s.kernel.CreateLinkedAccounts(blobs)
	if err != nil {
		return nil, err
	}
	for i, c := range codes {
		if c == types.OK {
			s.notifyCommitted("account", p.Accounts[i])
		}
	}
	return codesResult(codes), nil
}

// CreateTransferParams carries the hex-encoded 128-byte Transfer
// record to create.
type CreateTransferParams struct {
	Transfer string `json:"transfer"`
}

func (s *Server) createTransfer(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p CreateTransferParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	blob, err := helpers.HexToBytes(p.Transfer)
	if err != nil {
		return nil, fmt.Errorf("invalid transfer hex: %w", err)
	}

	code, err := s.kernel.CreateTransfer(blob)
	if err != nil {
		return nil, err
	}
	if code == types.OK {
		s.notifyCommitted("transfer", p.Transfer)
	}
	return codeResult(code), nil
}

// CreateLinkedTransfersParams carries the hex-encoded Transfer
// records of a linked chain, in order.
type CreateLinkedTransfersParams struct {
	Transfers []string `json:"transfers"`
}

func (s *Server) createLinkedTransfers(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p CreateLinkedTransfersParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	blobs := make([][]byte, len(p.Transfers))
	for i, hexBlob := range p.Transfers {
		b, err := helpers.HexToBytes(hexBlob)
		if err != nil {
			return nil, fmt.Errorf("invalid transfer hex at index %d: %w", i, err)
		}
		blobs[i] = b
	}

	codes, err := s.kernel.CreateLinkedTransfers(blobs)
	if err != nil {
		return nil, err
	}
	for i, c := range codes {
		if c == types.OK {
			s.notifyCommitted("transfer", p.Transfers[i])
		}
	}
	return codesResult(codes), nil
}

// LookupAccountParams carries the hex-encoded account id to look up.
type LookupAccountParams struct {
	ID string `json:"id"`
}

// LookupResult wraps a found-or-not raw record lookup.
type LookupResult struct {
	Found bool   `json:"found"`
	Blob  string `json:"blob,omitempty"`
}

func (s *Server) lookupAccount(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p LookupAccountParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	blob, err := s.kernel.LookupAccount(helpers.HexToBigInt(p.ID))
	if err != nil {
		return nil, err
	}
	if blob == nil {
		return &LookupResult{Found: false}, nil
	}
	return &LookupResult{Found: true, Blob: helpers.BytesToHex(blob)}, nil
}

// LookupTransferParams carries the hex-encoded transfer id to look up.
type LookupTransferParams struct {
	ID string `json:"id"`
}

func (s *Server) lookupTransfer(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p LookupTransferParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	blob, err := s.kernel.LookupTransfer(helpers.HexToBigInt(p.ID))
	if err != nil {
		return nil, err
	}
	if blob == nil {
		return &LookupResult{Found: false}, nil
	}
	return &LookupResult{Found: true, Blob: helpers.BytesToHex(blob)}, nil
}

// FilterParams carries the hex-encoded 128-byte AccountFilter record
// shared by both query operations.
type FilterParams struct {
	Filter string `json:"filter"`
}

// RecordsResult wraps a list of raw hex-encoded records.
type RecordsResult struct {
	Records []string `json:"records"`
}

func (s *Server) getAccountTransfers(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p FilterParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	raw, err := helpers.HexToBytes(p.Filter)
	if err != nil {
		return nil, fmt.Errorf("invalid filter hex: %w", err)
	}
	filter, err := codec.DecodeAccountFilter(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}

	blobs, err := s.query.GetAccountTransfers(filter)
	if err != nil {
		return nil, err
	}
	return recordsResult(blobs), nil
}

func (s *Server) getAccountBalances(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p FilterParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	raw, err := helpers.HexToBytes(p.Filter)
	if err != nil {
		return nil, fmt.Errorf("invalid filter hex: %w", err)
	}
	filter, err := codec.DecodeAccountFilter(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}

	blobs, err := s.query.GetAccountBalances(filter)
	if err != nil {
		return nil, err
	}
	return recordsResult(blobs), nil
}

func recordsResult(blobs [][]byte) *RecordsResult {
	out := make([]string, len(blobs))
	for i, b := range blobs {
		out[i] = helpers.BytesToHex(b)
	}
	return &RecordsResult{Records: out}
}

// notifyCommitted pushes a ledger_committed event to every subscribed
// WebSocket client. kind is "account" or "transfer"; blob is the
// hex-encoded record that was just committed.
func (s *Server) notifyCommitted(kind, blob string) {
	if s.wsHub == nil {
		return
	}
	s.wsHub.Broadcast(EventLedgerCommitted, map[string]string{
		"kind": kind,
		"blob": blob,
	})
}
