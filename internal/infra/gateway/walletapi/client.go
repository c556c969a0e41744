package walletapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/kislikjeka/walletclient/internal/ledger"
	"github.com/kislikjeka/walletclient/pkg/logger"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 1 << 20
)

// AuthResult is the outcome of a successful login
type AuthResult struct {
	Token string
	User  ledger.User
}

// Client is an HTTP client for the wallet REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *metrics
	logger     *logger.Logger
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit paces outgoing requests. rps <= 0 disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMetrics registers request metrics on reg
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) {
		c.metrics = newMetrics(reg)
	}
}

// NewClient creates a new wallet API client
func NewClient(baseURL string, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: log.Component("walletapi"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = newMetrics(prometheus.NewRegistry())
	}
	return c
}

// SetBaseURL overrides the base URL (useful for testing)
func (c *Client) SetBaseURL(url string) {
	c.baseURL = strings.TrimRight(url, "/")
}

// Authenticate logs in with email and password (POST /auth/login)
func (c *Client) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	const op = "authenticate"
	var data loginData
	if err := c.doRequest(ctx, op, http.MethodPost, "/auth/login", "", credentialsRequest{Email: email, Password: password}, &data); err != nil {
		return nil, err
	}
	if data.AccessToken == "" || data.User == nil {
		return nil, &RemoteError{Op: op, Kind: KindMalformed, Message: "login response without token or user"}
	}
	return &AuthResult{Token: data.AccessToken, User: data.User.toUser()}, nil
}

// Register creates a new account (POST /users)
func (c *Client) Register(ctx context.Context, email, password string) (*ledger.User, error) {
	var u userDTO
	if err := c.doRequest(ctx, "register", http.MethodPost, "/users", "", credentialsRequest{Email: email, Password: password}, &u); err != nil {
		return nil, err
	}
	user := u.toUser()
	return &user, nil
}

// CreateTransfer asks the server to move amount to recipientEmail (POST /transactions).
// The returned record has status success or failed.
func (c *Client) CreateTransfer(ctx context.Context, token, recipientEmail string, amount decimal.Decimal) (*ledger.Transaction, error) {
	const op = "create_transfer"
	req := transferRequest{
		ReceiverEmail: recipientEmail,
		Amount:        json.Number(amount.String()),
	}

	var dto transactionDTO
	if err := c.doRequest(ctx, op, http.MethodPost, "/transactions", token, req, &dto); err != nil {
		return nil, err
	}
	tx, err := dto.toTransaction()
	if err != nil {
		return nil, &RemoteError{Op: op, Kind: KindMalformed, Err: err}
	}
	return &tx, nil
}

// ListTransactions fetches the user's transaction history (GET /transactions)
func (c *Client) ListTransactions(ctx context.Context, token string) ([]ledger.Transaction, error) {
	const op = "list_transactions"
	var dtos []transactionDTO
	if err := c.doRequest(ctx, op, http.MethodGet, "/transactions", token, nil, &dtos); err != nil {
		return nil, err
	}

	txs := make([]ledger.Transaction, 0, len(dtos))
	for i := range dtos {
		tx, err := dtos[i].toTransaction()
		if err != nil {
			return nil, &RemoteError{Op: op, Kind: KindMalformed, Err: err}
		}
		txs = append(txs, tx)
	}
	c.logger.Debug("transactions fetched", "count", len(txs))
	return txs, nil
}

// LoadBalance adds funds to the user's wallet (POST /users/load-balance) and
// returns the user with the server's resulting balance.
func (c *Client) LoadBalance(ctx context.Context, token string, amount decimal.Decimal) (*ledger.User, error) {
	var u userDTO
	req := loadBalanceRequest{Amount: json.Number(amount.String())}
	if err := c.doRequest(ctx, "load_balance", http.MethodPost, "/users/load-balance", token, req, &u); err != nil {
		return nil, err
	}
	user := u.toUser()
	return &user, nil
}

// ListUsers fetches every registered user (GET /users)
func (c *Client) ListUsers(ctx context.Context, token string) ([]ledger.User, error) {
	var dtos []userDTO
	if err := c.doRequest(ctx, "list_users", http.MethodGet, "/users", token, nil, &dtos); err != nil {
		return nil, err
	}
	users := make([]ledger.User, len(dtos))
	for i := range dtos {
		users[i] = dtos[i].toUser()
	}
	return users, nil
}

// Profile fetches the authenticated user (GET /users/profile)
func (c *Client) Profile(ctx context.Context, token string) (*ledger.User, error) {
	var u userDTO
	if err := c.doRequest(ctx, "profile", http.MethodGet, "/users/profile", token, nil, &u); err != nil {
		return nil, err
	}
	user := u.toUser()
	return &user, nil
}

// doRequest sends one request and decodes the envelope's data into out.
// Failures are always returned as *RemoteError; nothing is retried.
func (c *Client) doRequest(ctx context.Context, op, method, path, token string, body, out interface{}) (err error) {
	start := time.Now()
	defer func() {
		took := time.Since(start)
		c.metrics.observe(op, err, took)
		if err != nil {
			c.logger.Warn("API call failed", "operation", op, "error", err, "duration_ms", took.Milliseconds())
		} else {
			c.logger.Debug("API call", "operation", op, "duration_ms", took.Milliseconds())
		}
	}()

	if c.limiter != nil {
		if werr := c.limiter.Wait(ctx); werr != nil {
			return transportError(op, werr)
		}
	}

	var reader io.Reader
	if body != nil {
		payload, merr := json.Marshal(body)
		if merr != nil {
			return &RemoteError{Op: op, Kind: KindMalformed, Message: "failed to encode request", Err: merr}
		}
		reader = bytes.NewReader(payload)
	}

	req, rerr := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if rerr != nil {
		return &RemoteError{Op: op, Kind: KindNetwork, Message: "failed to create request", Err: rerr}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, derr := c.httpClient.Do(req)
	if derr != nil {
		return transportError(op, derr)
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if readErr != nil {
		return transportError(op, readErr)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		re := &RemoteError{Op: op, Kind: kindForStatus(resp.StatusCode), StatusCode: resp.StatusCode}
		if decodeErr == nil {
			re.Message = env.reason()
		}
		return re
	}

	if decodeErr != nil {
		return &RemoteError{Op: op, Kind: KindMalformed, StatusCode: resp.StatusCode, Message: "invalid response body", Err: decodeErr}
	}
	if env.Status != statusSuccess {
		return &RemoteError{Op: op, Kind: KindMalformed, StatusCode: resp.StatusCode, Message: env.reason()}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return &RemoteError{Op: op, Kind: KindMalformed, StatusCode: resp.StatusCode, Message: "response carried no data"}
	}
	if out != nil {
		if uerr := json.Unmarshal(env.Data, out); uerr != nil {
			return &RemoteError{Op: op, Kind: KindMalformed, StatusCode: resp.StatusCode, Message: "unexpected data shape", Err: uerr}
		}
	}
	return nil
}

func transportError(op string, err error) *RemoteError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &RemoteError{Op: op, Kind: KindTimeout, Err: err}
	}
	return &RemoteError{Op: op, Kind: KindNetwork, Err: err}
}
