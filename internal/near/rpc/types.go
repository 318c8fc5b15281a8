// internal/near/rpc/types.go
package rpc

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

const (
	DefaultTimeout = 10 * time.Second
	jsonRPCVersion = "2.0"
)

// Finality values accepted by query.
const (
	FinalityFinal      = "final"
	FinalityOptimistic = "optimistic"
)

// Execution stages accepted by tx as wait_until.
const (
	WaitNone               = "NONE"
	WaitIncluded           = "INCLUDED"
	WaitExecutedOptimistic = "EXECUTED_OPTIMISTIC"
	WaitFinal              = "FINAL"
)

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RemoteError    `json:"error"`
}

// CallFunctionResult is the result of query/call_function.
type CallFunctionResult struct {
	Result      []int    `json:"result"`
	Logs        []string `json:"logs"`
	BlockHeight uint64   `json:"block_height"`
	BlockHash   string   `json:"block_hash"`
	// Older nodes report contract panics here instead of an error object.
	Error string `json:"error,omitempty"`
}

// Bytes returns the raw return value of the view function.
func (r *CallFunctionResult) Bytes() ([]byte, error) {
	out := make([]byte, len(r.Result))
	for i, b := range r.Result {
		if b < 0 || b > 255 {
			return nil, fmt.Errorf("%w: byte %d out of range at %d", ErrInvalidResponse, b, i)
		}
		out[i] = byte(b)
	}
	return out, nil
}

// AccessKeyView is the result of query/view_access_key.
type AccessKeyView struct {
	Nonce       uint64          `json:"nonce"`
	Permission  json.RawMessage `json:"permission"`
	BlockHeight uint64          `json:"block_height"`
	BlockHash   string          `json:"block_hash"`
	Error       string          `json:"error,omitempty"`
}

// NodeStatus is the subset of the status method the client reads.
type NodeStatus struct {
	ChainID string `json:"chain_id"`
	Version struct {
		Version string `json:"version"`
		Build   string `json:"build"`
	} `json:"version"`
	SyncInfo struct {
		LatestBlockHash   string `json:"latest_block_hash"`
		LatestBlockHeight uint64 `json:"latest_block_height"`
		Syncing           bool   `json:"syncing"`
	} `json:"sync_info"`
}

// ExecutionStatus is a transaction or receipt status. Exactly one of the
// fields is meaningful; Pending is set for the string forms NotStarted and
// Started.
type ExecutionStatus struct {
	SuccessValue     *string         `json:"SuccessValue,omitempty"`
	SuccessReceiptID *string         `json:"SuccessReceiptId,omitempty"`
	Failure          json.RawMessage `json:"Failure,omitempty"`
	Pending          bool            `json:"-"`
}

func (s *ExecutionStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		switch str {
		case "NotStarted", "Started", "Unknown":
			s.Pending = true
			return nil
		}
		return fmt.Errorf("%w: unknown execution status %q", ErrInvalidResponse, str)
	}

	type plain ExecutionStatus
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = ExecutionStatus(p)
	return nil
}

// Failed reports whether the status carries a failure.
func (s ExecutionStatus) Failed() bool {
	return len(s.Failure) > 0 && string(s.Failure) != "null"
}

// Value decodes SuccessValue. A missing value decodes to nil.
func (s ExecutionStatus) Value() ([]byte, error) {
	if s.SuccessValue == nil || *s.SuccessValue == "" {
		return nil, nil
	}
	b, err := base64.StdEncoding.DecodeString(*s.SuccessValue)
	if err != nil {
		return nil, fmt.Errorf("%w: SuccessValue: %v", ErrInvalidResponse, err)
	}
	return b, nil
}

// ExecutionOutcome is one transaction or receipt outcome.
type ExecutionOutcome struct {
	Logs       []string        `json:"logs"`
	ReceiptIDs []string        `json:"receipt_ids"`
	GasBurnt   uint64          `json:"gas_burnt"`
	Status     ExecutionStatus `json:"status"`
}

// ExecutionOutcomeWithID pairs an outcome with its transaction or receipt id.
type ExecutionOutcomeWithID struct {
	ID      string           `json:"id"`
	Outcome ExecutionOutcome `json:"outcome"`
}

// FinalExecutionOutcome is the result of tx.
type FinalExecutionOutcome struct {
	FinalExecutionStatus string                   `json:"final_execution_status"`
	Status               ExecutionStatus          `json:"status"`
	Transaction          struct{ Hash string }    `json:"transaction"`
	TransactionOutcome   ExecutionOutcomeWithID   `json:"transaction_outcome"`
	ReceiptsOutcome      []ExecutionOutcomeWithID `json:"receipts_outcome"`
}

// Logs collects the logs of the transaction and all its receipts.
func (o *FinalExecutionOutcome) Logs() []string {
	logs := append([]string(nil), o.TransactionOutcome.Outcome.Logs...)
	for _, r := range o.ReceiptsOutcome {
		logs = append(logs, r.Outcome.Logs...)
	}
	return logs
}
