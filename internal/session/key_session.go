// =====================================
// File: internal/session/key_session.go
// =====================================
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/heliox/internal/near/rpc"
	"github.com/rovshanmuradov/heliox/internal/near/tx"
	"github.com/rovshanmuradov/heliox/internal/wallet"
)

// Transport is the subset of the JSON-RPC client a KeySession needs.
type Transport interface {
	CallFunction(ctx context.Context, accountID, method string, args []byte, finality string) (*rpc.CallFunctionResult, error)
	ViewAccessKey(ctx context.Context, accountID, publicKey string) (*rpc.AccessKeyView, error)
	BroadcastTxAsync(ctx context.Context, signedTx []byte) (string, error)
	TxStatus(ctx context.Context, txHash, senderID, waitUntil string) (*rpc.FinalExecutionOutcome, error)
}

// WalletLoader loads the key for accountID (empty means any) from dir.
type WalletLoader func(dir, accountID string) (*wallet.Wallet, error)

// Options configure a KeySession.
type Options struct {
	CredentialsDir string
	AccountID      string
	PollInterval   time.Duration
	PollMaxWait    time.Duration
	Loader         WalletLoader
}

var errOutcomePending = errors.New("transaction outcome pending")

// KeySession signs with a local near-cli key file and talks to the ledger
// over JSON-RPC.
type KeySession struct {
	transport Transport
	opts      Options
	logger    *zap.Logger

	mu        sync.RWMutex
	wallet    *wallet.Wallet
	loading   bool
	listeners []Listener
}

// NewKeySession creates a signed-out session.
func NewKeySession(transport Transport, opts Options, logger *zap.Logger) *KeySession {
	if opts.Loader == nil {
		opts.Loader = wallet.Load
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	if opts.PollMaxWait <= 0 {
		opts.PollMaxWait = time.Minute
	}
	return &KeySession{
		transport: transport,
		opts:      opts,
		logger:    logger.Named("session"),
	}
}

// Subscribe registers l for state changes. It is not called for the
// current state.
func (s *KeySession) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *KeySession) CurrentAccount() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.wallet == nil {
		return "", false
	}
	return s.wallet.AccountID, true
}

func (s *KeySession) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// SignIn loads the configured credential file.
func (s *KeySession) SignIn(ctx context.Context) error {
	s.update(func() { s.loading = true })

	if err := ctx.Err(); err != nil {
		s.update(func() { s.loading = false })
		return err
	}

	w, err := s.opts.Loader(s.opts.CredentialsDir, s.opts.AccountID)
	if err != nil {
		s.update(func() { s.loading = false })
		s.logger.Warn("Sign in failed", zap.String("dir", s.opts.CredentialsDir), zap.Error(err))
		return fmt.Errorf("sign in: %w", err)
	}

	s.update(func() {
		s.wallet = w
		s.loading = false
	})
	s.logger.Info("Signed in",
		zap.String("account", w.AccountID),
		zap.String("public_key", w.PublicKeyString()))
	return nil
}

func (s *KeySession) SignOut() {
	account, ok := s.CurrentAccount()
	s.update(func() { s.wallet = nil })
	if ok {
		s.logger.Info("Signed out", zap.String("account", account))
	}
}

// update applies fn under the write lock and notifies listeners outside it.
func (s *KeySession) update(fn func()) {
	s.mu.Lock()
	fn()
	state := s.stateLocked()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(state)
	}
}

func (s *KeySession) stateLocked() State {
	st := State{Loading: s.loading}
	if s.wallet != nil {
		st.AccountID = s.wallet.AccountID
		st.SignedIn = true
	}
	return st
}

// State returns the current session state.
func (s *KeySession) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

// ViewFunction calls a read-only contract method at final finality.
func (s *KeySession) ViewFunction(ctx context.Context, contractID, method string, args any) (json.RawMessage, error) {
	argsJSON, err := encodeArgs(args)
	if err != nil {
		return nil, err
	}

	res, err := s.transport.CallFunction(ctx, contractID, method, argsJSON, rpc.FinalityFinal)
	if err != nil {
		return nil, fmt.Errorf("view %s.%s: %w", contractID, method, classify(err))
	}
	if res.Error != "" {
		return nil, fmt.Errorf("view %s.%s: %w: %s", contractID, method, ErrNotAuthorized, res.Error)
	}

	raw, err := res.Bytes()
	if err != nil {
		return nil, fmt.Errorf("view %s.%s: %w", contractID, method, err)
	}
	return json.RawMessage(raw), nil
}

// CallFunction signs and submits one function call transaction and waits
// for its final outcome. The transaction is broadcast exactly once.
func (s *KeySession) CallFunction(ctx context.Context, call FunctionCall) (json.RawMessage, error) {
	s.mu.RLock()
	w := s.wallet
	s.mu.RUnlock()
	if w == nil {
		return nil, ErrNoAccount
	}

	argsJSON, err := encodeArgs(call.Args)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With(
		zap.String("account", w.AccountID),
		zap.String("contract", call.ContractID),
		zap.String("method", call.Method))

	key, err := s.transport.ViewAccessKey(ctx, w.AccountID, w.PublicKeyString())
	if err != nil {
		return nil, fmt.Errorf("access key: %w", classify(err))
	}
	blockHash, err := tx.DecodeBlockHash(key.BlockHash)
	if err != nil {
		return nil, fmt.Errorf("access key: %w", err)
	}

	signed, err := w.SignTransaction(&tx.Transaction{
		SignerID:   w.AccountID,
		PublicKey:  w.PublicKey,
		Nonce:      key.Nonce + 1,
		ReceiverID: call.ContractID,
		BlockHash:  blockHash,
		Actions: []tx.FunctionCall{{
			MethodName: call.Method,
			Args:       argsJSON,
			Gas:        call.Gas,
			Deposit:    call.Deposit,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	raw, err := signed.MarshalBorsh()
	if err != nil {
		return nil, fmt.Errorf("encode transaction: %w", err)
	}

	hash, err := s.transport.BroadcastTxAsync(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("broadcast: %w", classify(err))
	}
	if hash != signed.HashBase58() {
		logger.Warn("Node returned unexpected transaction hash",
			zap.String("expected", signed.HashBase58()),
			zap.String("got", hash))
	}
	logger.Info("Transaction submitted", zap.String("tx", hash), zap.Uint64("gas", call.Gas))

	outcome, err := s.awaitOutcome(ctx, hash, w.AccountID, logger)
	if err != nil {
		return nil, err
	}

	for _, l := range outcome.Logs() {
		logger.Debug("Contract log", zap.String("tx", hash), zap.String("log", l))
	}

	if outcome.Status.Failed() {
		logger.Warn("Transaction failed", zap.String("tx", hash), zap.ByteString("failure", outcome.Status.Failure))
		return nil, fmt.Errorf("%w: %s", ErrNotAuthorized, failureText(outcome.Status.Failure))
	}

	value, err := outcome.Status.Value()
	if err != nil {
		return nil, err
	}
	logger.Info("Transaction succeeded", zap.String("tx", hash))
	return json.RawMessage(value), nil
}

// awaitOutcome polls tx until the node reports a final status. Unknown
// transactions, node timeouts and transport errors are polled again.
func (s *KeySession) awaitOutcome(ctx context.Context, hash, sender string, logger *zap.Logger) (*rpc.FinalExecutionOutcome, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.opts.PollInterval
	policy.MaxInterval = s.opts.PollInterval * 10

	operation := func() (*rpc.FinalExecutionOutcome, error) {
		out, err := s.transport.TxStatus(ctx, hash, sender, rpc.WaitFinal)
		if err != nil {
			if rpc.IsTransportError(err) ||
				rpc.IsCause(err, rpc.CauseUnknownTransaction) ||
				rpc.IsCause(err, rpc.CauseTimeoutError) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		if out.Status.Pending {
			return nil, errOutcomePending
		}
		return out, nil
	}

	notify := func(err error, d time.Duration) {
		logger.Debug("Waiting for transaction outcome", zap.String("tx", hash), zap.Duration("backoff", d), zap.Error(err))
	}

	out, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxElapsedTime(s.opts.PollMaxWait),
		backoff.WithNotify(notify))
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", hash, classify(err))
	}
	return out, nil
}

func encodeArgs(args any) ([]byte, error) {
	switch v := args.(type) {
	case nil:
		return []byte("{}"), nil
	case json.RawMessage:
		return v, nil
	case []byte:
		return v, nil
	}
	b, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encode args: %w", err)
	}
	return b, nil
}

// classify maps transport failures onto ErrNetworkUnavailable and keeps the
// original error in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if rpc.IsTransportError(err) || errors.Is(err, errOutcomePending) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrNetworkUnavailable, err)
	}
	return err
}

// failureText extracts the panic message from a Failure object when there
// is one.
func failureText(failure json.RawMessage) string {
	var f struct {
		ActionError struct {
			Kind struct {
				FunctionCallError struct {
					ExecutionError string `json:"ExecutionError"`
				} `json:"FunctionCallError"`
			} `json:"kind"`
		} `json:"ActionError"`
	}
	if err := json.Unmarshal(failure, &f); err == nil {
		if msg := f.ActionError.Kind.FunctionCallError.ExecutionError; msg != "" {
			return msg
		}
	}
	return string(failure)
}
