// internal/near/rpc/client.go
package rpc

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-cleanhttp"
	"go.uber.org/zap"
)

const maxResponseSize = 8 << 20

// Client is a NEAR JSON-RPC client over one or more nodes. Requests start
// at the next node in round-robin order. Read-only methods fail over to
// the remaining nodes on transport errors; broadcasts never do.
type Client struct {
	http    *http.Client
	urls    []string
	current int
	mu      sync.Mutex
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient creates a client for the given node URLs.
func NewClient(urls []string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if len(urls) == 0 {
		return nil, ErrNoRPCNodes
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = timeout

	return &Client{
		http:    httpClient,
		urls:    append([]string(nil), urls...),
		timeout: timeout,
		logger:  logger.Named("rpc-client"),
	}, nil
}

// URLs returns the configured node URLs.
func (c *Client) URLs() []string {
	return append([]string(nil), c.urls...)
}

func (c *Client) nextURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	url := c.urls[c.current]
	c.current = (c.current + 1) % len(c.urls)
	return url
}

// Call sends one request to the next node and decodes the result into out.
func (c *Client) Call(ctx context.Context, method string, params, out any) error {
	return c.do(ctx, c.nextURL(), method, params, out)
}

// CallWithFailover behaves like Call but moves on to the next node when a
// node cannot be reached. Remote errors are returned as is.
func (c *Client) CallWithFailover(ctx context.Context, method string, params, out any) error {
	var lastErr error
	for attempt := 0; attempt < len(c.urls); attempt++ {
		url := c.nextURL()
		err := c.do(ctx, url, method, params, out)
		if err == nil {
			return nil
		}
		if !IsTransportError(err) || ctx.Err() != nil {
			return err
		}

		c.logger.Debug("RPC request failed, trying next node",
			zap.String("url", url),
			zap.String("method", method),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		lastErr = err
	}

	if len(c.urls) > 1 {
		c.logger.Warn("All RPC nodes failed", zap.String("method", method), zap.Error(lastErr))
	}
	return lastErr
}

func (c *Client) do(ctx context.Context, url, method string, params, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(request{
		JSONRPC: jsonRPCVersion,
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return NewError(fmt.Errorf("encode params: %w", err), url, method)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return NewError(fmt.Errorf("%w: %v", ErrConnectionFailed, err), url, method)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return NewError(ErrTimeout, url, method)
		}
		return NewError(fmt.Errorf("%w: %v", ErrConnectionFailed, err), url, method)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return NewError(fmt.Errorf("%w: read body: %v", ErrConnectionFailed, err), url, method)
	}

	c.logger.Debug("RPC call",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	var envelope response
	decodeErr := json.Unmarshal(raw, &envelope)

	// nearcore answers some handler errors with a non-200 status and a
	// regular envelope, so the envelope wins over the status code.
	if decodeErr == nil && envelope.Error != nil {
		return NewError(envelope.Error, url, method)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewError(ErrRateLimit, url, method)
	case resp.StatusCode >= http.StatusInternalServerError:
		return NewError(fmt.Errorf("%w: HTTP %d", ErrConnectionFailed, resp.StatusCode), url, method)
	case resp.StatusCode != http.StatusOK:
		return NewError(fmt.Errorf("%w: HTTP %d", ErrInvalidResponse, resp.StatusCode), url, method)
	case decodeErr != nil:
		return NewError(fmt.Errorf("%w: %v", ErrInvalidResponse, decodeErr), url, method)
	case len(envelope.Result) == 0:
		return NewError(fmt.Errorf("%w: empty result", ErrInvalidResponse), url, method)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return NewError(fmt.Errorf("%w: %v", ErrInvalidResponse, err), url, method)
	}
	return nil
}

// CallFunction runs a view function through query/call_function.
func (c *Client) CallFunction(ctx context.Context, accountID, method string, args []byte, finality string) (*CallFunctionResult, error) {
	if finality == "" {
		finality = FinalityFinal
	}
	params := map[string]string{
		"request_type": "call_function",
		"finality":     finality,
		"account_id":   accountID,
		"method_name":  method,
		"args_base64":  base64.StdEncoding.EncodeToString(args),
	}

	var result CallFunctionResult
	if err := c.CallWithFailover(ctx, "query", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ViewAccessKey returns the nonce and a recent block hash for a key.
func (c *Client) ViewAccessKey(ctx context.Context, accountID, publicKey string) (*AccessKeyView, error) {
	params := map[string]string{
		"request_type": "view_access_key",
		"finality":     FinalityFinal,
		"account_id":   accountID,
		"public_key":   publicKey,
	}

	var result AccessKeyView
	if err := c.CallWithFailover(ctx, "query", params, &result); err != nil {
		return nil, err
	}
	if result.Error != "" {
		return nil, NewError(fmt.Errorf("%w: %s", ErrRemote, result.Error), "", "query")
	}
	return &result, nil
}

// BroadcastTxAsync submits a signed transaction and returns its hash
// without waiting for execution. It is sent to exactly one node.
func (c *Client) BroadcastTxAsync(ctx context.Context, signedTx []byte) (string, error) {
	params := []string{base64.StdEncoding.EncodeToString(signedTx)}

	var hash string
	if err := c.Call(ctx, "broadcast_tx_async", params, &hash); err != nil {
		return "", err
	}
	return hash, nil
}

// TxStatus queries the outcome of a transaction.
func (c *Client) TxStatus(ctx context.Context, txHash, senderID, waitUntil string) (*FinalExecutionOutcome, error) {
	params := map[string]string{
		"tx_hash":           txHash,
		"sender_account_id": senderID,
	}
	if waitUntil != "" {
		params["wait_until"] = waitUntil
	}

	var result FinalExecutionOutcome
	if err := c.CallWithFailover(ctx, "tx", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Status returns the node status.
func (c *Client) Status(ctx context.Context) (*NodeStatus, error) {
	var result NodeStatus
	if err := c.CallWithFailover(ctx, "status", []any{}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}
