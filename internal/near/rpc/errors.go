// internal/near/rpc/errors.go
package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNoRPCNodes is returned when the client is built without endpoints.
	ErrNoRPCNodes = errors.New("no RPC nodes available")

	// ErrRateLimit is returned for HTTP 429 responses.
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrTimeout is returned when the request deadline expires.
	ErrTimeout = errors.New("request timeout")

	// ErrInvalidResponse is returned when a body is not a JSON-RPC envelope.
	ErrInvalidResponse = errors.New("invalid RPC response")

	// ErrConnectionFailed covers transport failures and HTTP 5xx.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrRemote marks a well-formed JSON-RPC error object.
	ErrRemote = errors.New("remote error")
)

// Remote error names reported by nearcore.
const (
	NameHandlerError  = "HANDLER_ERROR"
	NameRequestError  = "REQUEST_VALIDATION_ERROR"
	NameInternalError = "INTERNAL_ERROR"

	CauseUnknownTransaction     = "UNKNOWN_TRANSACTION"
	CauseTimeoutError           = "TIMEOUT_ERROR"
	CauseInvalidTransaction     = "INVALID_TRANSACTION"
	CauseContractExecutionError = "CONTRACT_EXECUTION_ERROR"
	CauseUnknownAccessKey       = "UNKNOWN_ACCESS_KEY"
	CauseUnknownAccount         = "UNKNOWN_ACCOUNT"
	CauseNoContractCode         = "NO_CONTRACT_CODE"
)

// RemoteError is the error object of a JSON-RPC response.
type RemoteError struct {
	Name    string          `json:"name"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Cause   struct {
		Name string          `json:"name"`
		Info json.RawMessage `json:"info,omitempty"`
	} `json:"cause"`
}

func (e *RemoteError) Error() string {
	if e.Cause.Name != "" {
		return fmt.Sprintf("%s/%s: %s", e.Name, e.Cause.Name, e.detail())
	}
	return fmt.Sprintf("%s: %s", e.Name, e.detail())
}

func (e *RemoteError) detail() string {
	if len(e.Data) > 0 {
		var s string
		if json.Unmarshal(e.Data, &s) == nil && s != "" {
			return s
		}
		return string(e.Data)
	}
	return e.Message
}

// Is lets errors.Is(err, ErrRemote) match any remote error.
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemote
}

// Error is an RPC failure with the method and node it happened on.
type Error struct {
	Err     error
	NodeURL string
	Method  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("RPC error [%s] at %s: %v", e.Method, e.NodeURL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with request context.
func NewError(err error, nodeURL, method string) error {
	return &Error{
		Err:     err,
		NodeURL: nodeURL,
		Method:  method,
	}
}

// IsTransportError reports whether err means the network, not the ledger,
// failed the request.
func IsTransportError(err error) bool {
	return errors.Is(err, ErrConnectionFailed) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimit) ||
		errors.Is(err, ErrNoRPCNodes)
}

// CauseName returns the nearcore cause name carried by err, if any.
func CauseName(err error) string {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Cause.Name
	}
	return ""
}

// IsCause reports whether err is a remote error with the given cause name.
func IsCause(err error, cause string) bool {
	return CauseName(err) == cause
}
