// Package signalrpc speaks JSON-RPC 2.0 to a signal-cli daemon over
// HTTP. It carries no retry logic and no state beyond a request id
// counter; callers own retry policy and caching.
package signalrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// DefaultTimeout bounds a single RPC round trip when the caller does
// not supply its own.
const DefaultTimeout = 10 * time.Second

// rpcPath is where the signal-cli HTTP daemon mounts its JSON-RPC
// endpoint, relative to the configured base URL.
const rpcPath = "/api/v1/rpc"

// Error is a JSON-RPC error object returned by the daemon.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("signal-cli rpc error %d: %s", e.Code, e.Message)
}

// Client issues JSON-RPC calls against signal-cli daemon endpoints.
// The zero value is not usable; call New.
type Client struct {
	httpClient *http.Client
	nextID     atomic.Int64
}

// New returns a Client using http.DefaultClient. Per-call deadlines
// come from the timeout argument to Call, not the HTTP client.
func New() *Client {
	return &Client{httpClient: http.DefaultClient}
}

// NewWithHTTPClient returns a Client using the supplied HTTP client.
func NewWithHTTPClient(hc *http.Client) *Client {
	return &Client{httpClient: hc}
}

type request struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      int64          `json:"id"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params,omitempty"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *Error          `json:"error"`
}

// Call posts a single JSON-RPC request to the daemon at endpoint and
// returns the raw result. A timeout of zero or less falls back to
// DefaultTimeout. Daemon-reported errors come back as *Error.
func (c *Client) Call(ctx context.Context, endpoint, method string, params map[string]any, timeout time.Duration) (json.RawMessage, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(request{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("signal-cli rpc: marshal %s request: %w", method, err)
	}

	url := strings.TrimSuffix(endpoint, "/") + rpcPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("signal-cli rpc: build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("signal-cli rpc: %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("signal-cli rpc: %s: unexpected status %d", method, resp.StatusCode)
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("signal-cli rpc: decode %s response: %w", method, err)
	}
	if out.Error != nil {
		return nil, out.Error
	}
	return out.Result, nil
}
