package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// User, Account, Transaction and Settings mirror the server's wire
// shapes. Amounts stay as decimal strings on the client.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Account struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Balance  string `json:"balance"`
	Currency string `json:"currency"`
}

type Transaction struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	AccountID   string `json:"account_id"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type Settings struct {
	UserID      string `json:"user_id"`
	Currency    string `json:"currency"`
	Language    string `json:"language"`
	Theme       string `json:"theme"`
	NotifyEmail bool   `json:"notify_email"`
	NotifyPush  bool   `json:"notify_push"`
}

type Summary struct {
	Income           string `json:"income"`
	Expenses         string `json:"expenses"`
	Net              string `json:"net"`
	NetWorth         string `json:"net_worth"`
	TransactionCount int    `json:"transaction_count"`
}

type MonthTotal struct {
	Month string `json:"month"`
	Net   string `json:"net"`
}

type CategoryTotal struct {
	Category string `json:"category"`
	Net      string `json:"net"`
	Share    string `json:"share"`
}

// APIError carries the server's status and error message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client

	// tokenMu guards token: a login can race in-flight requests.
	tokenMu sync.Mutex
	token   string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) SetToken(token string) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()
	c.token = token
}

func (c *Client) Token() string {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var failure struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		return &APIError{Status: resp.StatusCode, Message: failure.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type authResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Register creates the account and adopts the returned token.
func (c *Client) Register(ctx context.Context, email, password, name string) (User, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	}, &resp)
	if err != nil {
		return User{}, err
	}
	c.SetToken(resp.Token)
	return resp.User, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (User, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return User{}, err
	}
	c.SetToken(resp.Token)
	return resp.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

func (c *Client) Me(ctx context.Context) (User, error) {
	var user User
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user)
	return user, err
}

func (c *Client) ListAccounts(ctx context.Context) ([]Account, error) {
	var accounts []Account
	err := c.do(ctx, http.MethodGet, "/accounts/", nil, &accounts)
	return accounts, err
}

type AccountInput struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Balance  *string `json:"balance,omitempty"`
	Currency *string `json:"currency,omitempty"`
}

func (c *Client) CreateAccount(ctx context.Context, input AccountInput) (Account, error) {
	var account Account
	err := c.do(ctx, http.MethodPost, "/accounts/", input, &account)
	return account, err
}

type AccountUpdate struct {
	Name     *string `json:"name,omitempty"`
	Type     *string `json:"type,omitempty"`
	Currency *string `json:"currency,omitempty"`
}

func (c *Client) UpdateAccount(ctx context.Context, id string, update AccountUpdate) (Account, error) {
	var account Account
	err := c.do(ctx, http.MethodPut, "/accounts/"+id, update, &account)
	return account, err
}

func (c *Client) DeleteAccount(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/accounts/"+id, nil, nil)
}

type TransactionFilter struct {
	AccountID string
	StartDate string
	EndDate   string
}

func (f TransactionFilter) query() string {
	values := url.Values{}
	if f.AccountID != "" {
		values.Set("account_id", f.AccountID)
	}
	if f.StartDate != "" {
		values.Set("start_date", f.StartDate)
	}
	if f.EndDate != "" {
		values.Set("end_date", f.EndDate)
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

func (c *Client) ListTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error) {
	var transactions []Transaction
	err := c.do(ctx, http.MethodGet, "/transactions/"+filter.query(), nil, &transactions)
	return transactions, err
}

type TransactionInput struct {
	AccountID   string  `json:"account_id"`
	Type        string  `json:"type"`
	Amount      string  `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Category    *string `json:"category,omitempty"`
}

func (c *Client) CreateTransaction(ctx context.Context, input TransactionInput) (Transaction, error) {
	var tx Transaction
	err := c.do(ctx, http.MethodPost, "/transactions/", input, &tx)
	return tx, err
}

func (c *Client) UpdateTransaction(ctx context.Context, id string, input TransactionInput) (Transaction, error) {
	var tx Transaction
	err := c.do(ctx, http.MethodPut, "/transactions/"+id, input, &tx)
	return tx, err
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/transactions/"+id, nil, nil)
}

func (c *Client) GetSettings(ctx context.Context) (Settings, error) {
	var settings Settings
	err := c.do(ctx, http.MethodGet, "/settings/", nil, &settings)
	return settings, err
}

type SettingsUpdate struct {
	Currency    *string `json:"currency,omitempty"`
	Language    *string `json:"language,omitempty"`
	Theme       *string `json:"theme,omitempty"`
	NotifyEmail *bool   `json:"notify_email,omitempty"`
	NotifyPush  *bool   `json:"notify_push,omitempty"`
}

func (c *Client) UpdateSettings(ctx context.Context, update SettingsUpdate) (Settings, error) {
	var settings Settings
	err := c.do(ctx, http.MethodPut, "/settings/", update, &settings)
	return settings, err
}

func (c *Client) ReportSummary(ctx context.Context, filter TransactionFilter) (Summary, error) {
	var summary Summary
	err := c.do(ctx, http.MethodGet, "/reports/summary"+filter.query(), nil, &summary)
	return summary, err
}

func (c *Client) ReportMonthly(ctx context.Context, filter TransactionFilter) ([]MonthTotal, error) {
	var totals []MonthTotal
	err := c.do(ctx, http.MethodGet, "/reports/monthly"+filter.query(), nil, &totals)
	return totals, err
}

func (c *Client) ReportCategories(ctx context.Context, filter TransactionFilter) ([]CategoryTotal, error) {
	var totals []CategoryTotal
	err := c.do(ctx, http.MethodGet, "/reports/categories"+filter.query(), nil, &totals)
	return totals, err
}
