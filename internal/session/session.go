// =================================
// File: internal/session/session.go
// =================================
package session

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
)

var (
	// ErrNetworkUnavailable means the ledger could not be reached.
	ErrNetworkUnavailable = errors.New("network unavailable")

	// ErrNotAuthorized means the ledger rejected a call: a failed transaction
	// or a view method that panicked.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrNoAccount means a call needs a signed-in account and there is none.
	ErrNoAccount = errors.New("no account signed in")
)

// Session is the capability screens use to talk to the ledger.
type Session interface {
	CurrentAccount() (string, bool)
	Loading() bool
	SignIn(ctx context.Context) error
	SignOut()
	ViewFunction(ctx context.Context, contractID, method string, args any) (json.RawMessage, error)
	CallFunction(ctx context.Context, call FunctionCall) (json.RawMessage, error)
}

// FunctionCall describes one mutating contract call.
type FunctionCall struct {
	ContractID string
	Method     string
	Args       any
	Gas        uint64
	Deposit    *big.Int // yoctoNEAR
}

// State is a snapshot of the session published on every change.
type State struct {
	AccountID string
	SignedIn  bool
	Loading   bool
}

// Listener receives session state changes.
type Listener func(State)
