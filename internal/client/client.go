// Package client is a typed HTTP client for the expense tracker API.
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
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"expensetracker/internal/model"
	"expensetracker/internal/service"
)

const defaultTimeout = 15 * time.Second

// APIError is returned for every non-2xx response.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its transport is still
// wrapped so OnUnauthorized fires.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sets the initial access token.
func WithToken(token string) Option {
	return func(c *Client) { c.accessToken = token }
}

// WithOnUnauthorized registers a callback invoked for every 401 response.
func WithOnUnauthorized(fn func(*http.Request)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// Client talks to the API rooted at baseURL (for example http://localhost:8080/api).
type Client struct {
	baseURL        string
	http           *http.Client
	onUnauthorized func(*http.Request)

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
}

// New creates a Client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := *c.http
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc.Transport = &unauthorizedTransport{base: base, onUnauthorized: c.onUnauthorized}
	c.http = &hc
	return c
}

// unauthorizedTransport notifies a callback when the server answers 401.
type unauthorizedTransport struct {
	base           http.RoundTripper
	onUnauthorized func(*http.Request)
}

func (t *unauthorizedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err == nil && resp.StatusCode == http.StatusUnauthorized && t.onUnauthorized != nil {
		t.onUnauthorized(req)
	}
	return resp, err
}

// Token returns the current access token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

func (c *Client) setTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = access
	if refresh != "" {
		c.refreshToken = refresh
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 300 || !env.Success {
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Error}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

type authResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         *model.User `json:"user"`
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, email, password, name string) (*model.User, error) {
	var user model.User
	body := map[string]string{"email": email, "password": password, "name": name}
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates and keeps the returned tokens for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*model.User, error) {
	var resp authResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &resp); err != nil {
		return nil, err
	}
	c.setTokens(resp.AccessToken, resp.RefreshToken)
	return resp.User, nil
}

// Refresh exchanges the stored refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context) error {
	c.mu.RLock()
	refresh := c.refreshToken
	c.mu.RUnlock()
	if refresh == "" {
		return &APIError{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: "no refresh token"}
	}

	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, map[string]string{"refreshToken": refresh}, &resp); err != nil {
		return err
	}
	c.setTokens(resp.AccessToken, "")
	return nil
}

// Logout revokes the stored tokens and forgets them.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.RLock()
	refresh := c.refreshToken
	c.mu.RUnlock()

	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, map[string]string{"refreshToken": refresh}, nil)

	c.mu.Lock()
	c.accessToken, c.refreshToken = "", ""
	c.mu.Unlock()
	return err
}

// ListCategories returns the caller's categories.
func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateCategory creates a category.
func (c *Client) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	var category model.Category
	if err := c.do(ctx, http.MethodPost, "/categories", nil, map[string]string{"name": name}, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// NewExpense is the payload of CreateExpense.
type NewExpense struct {
	Title      string          `json:"title"`
	Amount     decimal.Decimal `json:"amount"`
	Note       string          `json:"note,omitempty"`
	CategoryID uuid.UUID       `json:"categoryId"`
	CreatedAt  *time.Time      `json:"createdAt,omitempty"`
}

// CreateExpense records an expense.
func (c *Client) CreateExpense(ctx context.Context, in NewExpense) (*model.Expense, error) {
	var expense model.Expense
	if err := c.do(ctx, http.MethodPost, "/expenses", nil, in, &expense); err != nil {
		return nil, err
	}
	return &expense, nil
}

// ListExpenses returns one page of expenses, newest first.
func (c *Client) ListExpenses(ctx context.Context, limit, offset int) (*service.ExpensePage, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	var page service.ExpensePage
	if err := c.do(ctx, http.MethodGet, "/expenses", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdateBudget stores the budget settings.
func (c *Client) UpdateBudget(ctx context.Context, amount decimal.Decimal, period model.BudgetPeriod) (*service.BudgetSettings, error) {
	body := map[string]interface{}{"monthlyBudget": amount, "budgetPeriod": string(period)}
	var settings service.BudgetSettings
	if err := c.do(ctx, http.MethodPut, "/budget", nil, body, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// BudgetStatus evaluates the budget against spend in period.
func (c *Client) BudgetStatus(ctx context.Context, period service.Period) (*service.BudgetStatus, error) {
	var status service.BudgetStatus
	if err := c.do(ctx, http.MethodGet, "/budget/status", periodQuery(period), nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Overview fetches the dashboard. With partial set, failed sections are
// reported in Overview.Errors instead of failing the call.
func (c *Client) Overview(ctx context.Context, period service.Period, partial bool) (*service.Overview, error) {
	q := periodQuery(period)
	if partial {
		q.Set("partial", "true")
	}
	var overview service.Overview
	if err := c.do(ctx, http.MethodGet, "/overview", q, nil, &overview); err != nil {
		return nil, err
	}
	return &overview, nil
}

func periodQuery(period service.Period) url.Values {
	q := url.Values{}
	if period != "" {
		q.Set("period", string(period))
	}
	return q
}
