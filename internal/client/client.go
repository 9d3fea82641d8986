// Package client is a retrying HTTP client for the ledger API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/iho/brook/internal/adapter/http/dto"
)

const idempotencyKeyHeader = "Idempotency-Key"

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Reason  string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Reason, e.Message)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Reason)
}

// Temporary reports whether retrying the request may succeed. 425 means an
// earlier attempt with the same idempotency key is still running.
func (e *APIError) Temporary() bool {
	switch {
	case e.Status == http.StatusTooManyRequests, e.Status == http.StatusTooEarly:
		return true
	default:
		return e.Status >= http.StatusInternalServerError
	}
}

// Client calls the ledger API.
type Client struct {
	baseURL        string
	http           *http.Client
	maxRetries     uint64
	initialBackoff time.Duration
	logger         zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRetries sets how many times a failed request is retried.
func WithRetries(n uint64) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithBackoff sets the first retry delay.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.initialBackoff = d }
}

// WithLogger logs retries to logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &http.Client{Timeout: 10 * time.Second},
		maxRetries:     3,
		initialBackoff: 100 * time.Millisecond,
		logger:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListAccounts lists accounts.
func (c *Client) ListAccounts(ctx context.Context, limit, offset int) (*dto.ListAccountsResponse, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var resp dto.ListAccountsResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/accounts/?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAccount fetches one account.
func (c *Client) GetAccount(ctx context.Context, id string) (*dto.AccountResponse, error) {
	var resp dto.AccountResponse
	if err := c.do(ctx, http.MethodGet, accountPath(id, ""), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Summary fetches the rendered text summary of an account.
func (c *Client) Summary(ctx context.Context, id string) (string, error) {
	var buf bytes.Buffer
	if err := c.do(ctx, http.MethodGet, accountPath(id, "/summary"), nil, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// CreateAccount creates an account.
func (c *Client) CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*dto.AccountResponse, error) {
	var resp dto.AccountResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/accounts/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddTransaction queues a transaction on an account.
func (c *Client) AddTransaction(ctx context.Context, accountID string, req dto.TransactionRequest) (*dto.TransactionResponse, error) {
	var resp dto.TransactionResponse
	if err := c.do(ctx, http.MethodPost, accountPath(accountID, "/transactions"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ProcessTransactions applies pending transactions. An empty asOf applies all of them.
func (c *Client) ProcessTransactions(ctx context.Context, accountID, asOf string) (*dto.ProcessTransactionsResponse, error) {
	var resp dto.ProcessTransactionsResponse
	if err := c.do(ctx, http.MethodPost, accountPath(accountID, "/process"), dto.ProcessTransactionsRequest{AsOf: asOf}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Transfer moves an amount between two accounts.
func (c *Client) Transfer(ctx context.Context, req dto.CreateTransferRequest) (*dto.TransferResponse, error) {
	var resp dto.TransferResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/transfers", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Reconcile compares an account with a replay of its transactions.
func (c *Client) Reconcile(ctx context.Context, accountID string) (*dto.ReconciliationResponse, error) {
	var resp dto.ReconciliationResponse
	if err := c.do(ctx, http.MethodGet, accountPath(accountID, "/reconcile"), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ReconcileAll reconciles every account.
func (c *Client) ReconcileAll(ctx context.Context) (*dto.ReconciliationReportResponse, error) {
	var resp dto.ReconciliationReportResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/reconcile", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func accountPath(id, suffix string) string {
	return "/api/v1/accounts/" + url.PathEscape(id) + suffix
}

// do sends the request, retrying transport errors, 425, 429 and 5xx with
// exponential backoff. POSTs carry one idempotency key across every attempt.
// out may be a *bytes.Buffer to receive the raw body.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	var key string
	if method == http.MethodPost {
		key = ulid.Make().String()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialBackoff
	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)

	attempt := 0
	operation := func() error {
		attempt++
		err := c.send(ctx, method, path, key, body, out)
		if err == nil {
			return nil
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Temporary() {
			return backoff.Permanent(err)
		}

		c.logger.Warn().Err(err).
			Str("method", method).
			Str("path", path).
			Int("attempt", attempt).
			Msg("request failed, retrying")
		return err
	}

	return backoff.Retry(operation, policy)
}

func (c *Client) send(ctx context.Context, method, path, key string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return backoff.Permanent(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if key != "" {
		req.Header.Set(idempotencyKeyHeader, key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Reason: http.StatusText(resp.StatusCode)}
		var errResp dto.ErrorResponse
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			apiErr.Reason = errResp.Error
			apiErr.Message = errResp.Message
		}
		return apiErr
	}

	switch v := out.(type) {
	case nil:
		return nil
	case *bytes.Buffer:
		_, err := v.Write(data)
		return err
	default:
		if err := json.Unmarshal(data, out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	}
}
