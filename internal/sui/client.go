// FilePath: internal/sui/client.go
package sui

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	nuts "github.com/vaudience/go-nuts"

	"github.com/verdantlabs/chainsense/internal/errors"
)

// SuiCoinType is the gas coin type queried for the sender
const SuiCoinType = "0x2::sui::SUI"

// Client talks JSON-RPC 2.0 to a ledger full node. All calls go through one
// circuit breaker so a dead node trips fast; read-only queries additionally
// retry with exponential backoff. Execution calls are never retried here;
// resubmitting is the caller's decision.
type Client struct {
	url     string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewClient creates a client for the given full-node RPC URL
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "sui-fullnode",
			Timeout: 15 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 5
			},
		}),
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// call performs one RPC round trip through the breaker. A transport-class
// failure (unreachable node, open breaker, bad HTTP status) comes back as a
// TransportFailure; an RPC-level error is returned as rpcCallError for the
// caller to classify.
func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return errors.NewInternalError("encode rpc request", err)
	}

	result, err := c.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("fullnode status %d", resp.StatusCode)
		}
		var rpcResp rpcResponse
		if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
			return nil, fmt.Errorf("decode rpc response: %w", err)
		}
		return &rpcResp, nil
	})
	if err != nil {
		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			return errors.NewTransportError("ledger service unavailable (circuit open)", err)
		}
		return errors.NewTransportError("could not reach ledger service", err)
	}

	rpcResp := result.(*rpcResponse)
	if rpcResp.Error != nil {
		return &rpcCallError{Method: method, Code: rpcResp.Error.Code, Message: rpcResp.Error.Message}
	}
	if out != nil {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return errors.NewInternalError(fmt.Sprintf("decode %s result", method), err)
		}
	}
	return nil
}

// rpcCallError is a ledger-reported error for a single method call
type rpcCallError struct {
	Method  string
	Code    int
	Message string
}

func (e *rpcCallError) Error() string {
	return fmt.Sprintf("%s: rpc error %d: %s", e.Method, e.Code, e.Message)
}

// callWithRetry retries transport-class failures of read-only queries.
// Ledger-reported errors are permanent: asking again gets the same answer.
func (c *Client) callWithRetry(ctx context.Context, method string, params []any, out any) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = 5 * time.Second

	return backoff.Retry(func() error {
		err := c.call(ctx, method, params, out)
		if err != nil && !errors.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(bo, ctx))
}

// ObjectData is the slice of object state this system consumes
type ObjectData struct {
	ObjectID string
	Version  uint64
	Digest   string
	Type     string
	Fields   json.RawMessage
}

type rawObject struct {
	ObjectID string `json:"objectId"`
	Version  string `json:"version"`
	Digest   string `json:"digest"`
	Content  *struct {
		Type   string          `json:"type"`
		Fields json.RawMessage `json:"fields"`
	} `json:"content"`
}

func (o *rawObject) toObjectData() (*ObjectData, error) {
	version, err := parseVersion(o.Version)
	if err != nil {
		return nil, err
	}
	data := &ObjectData{
		ObjectID: o.ObjectID,
		Version:  version,
		Digest:   o.Digest,
	}
	if o.Content != nil {
		data.Type = o.Content.Type
		data.Fields = o.Content.Fields
	}
	return data, nil
}

// GetObject fetches one object with its content
func (c *Client) GetObject(ctx context.Context, id string) (*ObjectData, error) {
	var result struct {
		Data  *rawObject `json:"data"`
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	opts := map[string]bool{"showContent": true}
	if err := c.callWithRetry(ctx, "sui_getObject", []any{id, opts}, &result); err != nil {
		return nil, classifyQueryError(err)
	}
	if result.Data == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("object %s not found", id), nil)
	}
	data, err := result.Data.toObjectData()
	if err != nil {
		return nil, errors.NewInternalError("parse object data", err)
	}
	return data, nil
}

// Coin is one spendable gas coin owned by an address
type Coin struct {
	CoinObjectID string `json:"coinObjectId"`
	Version      string `json:"version"`
	Digest       string `json:"digest"`
	Balance      string `json:"balance"`
}

// Ref converts the coin into a gas payment object reference
func (coin Coin) Ref() (ObjectRef, error) {
	version, err := parseVersion(coin.Version)
	if err != nil {
		return ObjectRef{}, err
	}
	return ObjectRef{
		ObjectID: coin.CoinObjectID,
		Version:  version,
		Digest:   coin.Digest,
	}, nil
}

// GetCoins lists the gas coins owned by an address
func (c *Client) GetCoins(ctx context.Context, owner string) ([]Coin, error) {
	var result struct {
		Data []Coin `json:"data"`
	}
	if err := c.callWithRetry(ctx, "suix_getCoins", []any{owner, SuiCoinType}, &result); err != nil {
		return nil, classifyQueryError(err)
	}
	return result.Data, nil
}

// GetOwnedObjects lists objects of one struct type owned by an address
func (c *Client) GetOwnedObjects(ctx context.Context, owner, structType string) ([]*ObjectData, error) {
	query := map[string]any{
		"filter":  map[string]any{"StructType": structType},
		"options": map[string]bool{"showContent": true},
	}
	var result struct {
		Data []struct {
			Data *rawObject `json:"data"`
		} `json:"data"`
	}
	if err := c.callWithRetry(ctx, "suix_getOwnedObjects", []any{owner, query}, &result); err != nil {
		return nil, classifyQueryError(err)
	}
	objects := make([]*ObjectData, 0, len(result.Data))
	for _, item := range result.Data {
		if item.Data == nil {
			continue
		}
		data, err := item.Data.toObjectData()
		if err != nil {
			nuts.L.Warnf("[SuiClient] skipping malformed owned object: %v", err)
			continue
		}
		objects = append(objects, data)
	}
	return objects, nil
}

// GetReferenceGasPrice returns the network's current reference gas price
func (c *Client) GetReferenceGasPrice(ctx context.Context) (uint64, error) {
	var result string
	if err := c.callWithRetry(ctx, "suix_getReferenceGasPrice", []any{}, &result); err != nil {
		return 0, classifyQueryError(err)
	}
	price, err := strconv.ParseUint(result, 10, 64)
	if err != nil {
		return 0, errors.NewInternalError("parse reference gas price", err)
	}
	return price, nil
}

// ExecutionResult is what the ledger returns for an executed transaction
type ExecutionResult struct {
	Digest        string          `json:"digest"`
	Effects       json.RawMessage `json:"effects"`
	Events        json.RawMessage `json:"events"`
	ObjectChanges json.RawMessage `json:"objectChanges"`
}

// Status extracts the execution status and the ledger's failure text
func (r *ExecutionResult) Status() (string, string) {
	var effects struct {
		Status struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		} `json:"status"`
	}
	if len(r.Effects) == 0 {
		return "", ""
	}
	if err := json.Unmarshal(r.Effects, &effects); err != nil {
		return "", ""
	}
	return effects.Status.Status, effects.Status.Error
}

// ExecuteTransactionBlock submits signed transaction bytes. A ledger-reported
// error is a rejection with the ledger's message preserved verbatim; only a
// failure to reach the service at all is a transport error. Never retried.
func (c *Client) ExecuteTransactionBlock(ctx context.Context, txBytesB64, signature string) (*ExecutionResult, error) {
	options := map[string]bool{
		"showEffects":       true,
		"showEvents":        true,
		"showObjectChanges": true,
	}
	var result ExecutionResult
	err := c.call(ctx, "sui_executeTransactionBlock", []any{txBytesB64, []string{signature}, options}, &result)
	if err != nil {
		var callErr *rpcCallError
		if stderrors.As(err, &callErr) {
			return nil, errors.NewSubmissionRejectedError(callErr.Message, callErr)
		}
		return nil, err
	}
	return &result, nil
}

// classifyQueryError keeps APIErrors as-is and wraps ledger-reported read
// errors as internal failures: the query itself was malformed or the node
// refused it, which is not a transport problem and not retryable.
func classifyQueryError(err error) error {
	var callErr *rpcCallError
	if stderrors.As(err, &callErr) {
		return errors.NewInternalError(callErr.Message, callErr)
	}
	return err
}

func parseVersion(v string) (uint64, error) {
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("object version %q: %w", v, err)
	}
	return n, nil
}
