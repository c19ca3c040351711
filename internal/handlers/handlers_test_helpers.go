package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finsteer/internal/config"
	"finsteer/internal/middleware"
	"finsteer/internal/services"
	"finsteer/internal/store"
	"finsteer/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubUserStore struct {
	createFn     func(ctx context.Context, tx store.Execer, id, email, passwordHash, name string) error
	getByEmailFn func(ctx context.Context, email string) (store.User, error)
	getByIDFn    func(ctx context.Context, userID string) (store.User, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, id, email, passwordHash, name string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, email, passwordHash, name)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (store.User, error) {
	if s.getByEmailFn == nil {
		return store.User{}, nil
	}
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (store.User, error) {
	if s.getByIDFn == nil {
		return store.User{}, nil
	}
	return s.getByIDFn(ctx, userID)
}

type stubAccountStore struct {
	createFn            func(ctx context.Context, tx store.Execer, id, userID, name, accountType string, balance int64, currency string) error
	listByUserFn        func(ctx context.Context, userID string) ([]store.AccountBalanceSummary, error)
	getForOwnerFn       func(ctx context.Context, accountID, userID string) (store.Account, error)
	updateFn            func(ctx context.Context, tx store.Execer, accountID, userID string, update store.AccountUpdate) (int64, error)
	deleteFn            func(ctx context.Context, tx store.Execer, accountID, userID string) (int64, error)
	countTransactionsFn func(ctx context.Context, accountID string) (int64, error)
}

func (s stubAccountStore) Create(ctx context.Context, tx store.Execer, id, userID, name, accountType string, balance int64, currency string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, userID, name, accountType, balance, currency)
}

func (s stubAccountStore) ListByUser(ctx context.Context, userID string) ([]store.AccountBalanceSummary, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID)
}

func (s stubAccountStore) GetForOwner(ctx context.Context, accountID, userID string) (store.Account, error) {
	if s.getForOwnerFn == nil {
		return store.Account{}, nil
	}
	return s.getForOwnerFn(ctx, accountID, userID)
}

func (s stubAccountStore) Update(ctx context.Context, tx store.Execer, accountID, userID string, update store.AccountUpdate) (int64, error) {
	if s.updateFn == nil {
		return 1, nil
	}
	return s.updateFn(ctx, tx, accountID, userID, update)
}

func (s stubAccountStore) Delete(ctx context.Context, tx store.Execer, accountID, userID string) (int64, error) {
	if s.deleteFn == nil {
		return 1, nil
	}
	return s.deleteFn(ctx, tx, accountID, userID)
}

func (s stubAccountStore) CountTransactions(ctx context.Context, accountID string) (int64, error) {
	if s.countTransactionsFn == nil {
		return 0, nil
	}
	return s.countTransactionsFn(ctx, accountID)
}

type stubTransactionStore struct {
	createFn        func(ctx context.Context, tx store.Execer, input store.TransactionInput) error
	listByUserFn    func(ctx context.Context, userID string, filter store.TransactionFilter) ([]store.Transaction, error)
	getForOwnerFn   func(ctx context.Context, transactionID, userID string) (store.Transaction, error)
	listForReportFn func(ctx context.Context, userID string, start, end time.Time) ([]store.Transaction, error)
}

func (s stubTransactionStore) Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubTransactionStore) ListByUser(ctx context.Context, userID string, filter store.TransactionFilter) ([]store.Transaction, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID, filter)
}

func (s stubTransactionStore) GetForOwner(ctx context.Context, transactionID, userID string) (store.Transaction, error) {
	if s.getForOwnerFn == nil {
		return store.Transaction{}, nil
	}
	return s.getForOwnerFn(ctx, transactionID, userID)
}

func (s stubTransactionStore) ListForReport(ctx context.Context, userID string, start, end time.Time) ([]store.Transaction, error) {
	if s.listForReportFn == nil {
		return nil, nil
	}
	return s.listForReportFn(ctx, userID, start, end)
}

type stubSettingsStore struct {
	getByUserFn func(ctx context.Context, userID string) (store.Settings, error)
	upsertFn    func(ctx context.Context, tx store.Execer, userID string, update store.SettingsUpdate) error
}

func (s stubSettingsStore) GetByUser(ctx context.Context, userID string) (store.Settings, error) {
	if s.getByUserFn == nil {
		return store.Settings{}, nil
	}
	return s.getByUserFn(ctx, userID)
}

func (s stubSettingsStore) Upsert(ctx context.Context, tx store.Execer, userID string, update store.SettingsUpdate) error {
	if s.upsertFn == nil {
		return nil
	}
	return s.upsertFn(ctx, tx, userID, update)
}

type stubService struct {
	createFn func(ctx context.Context, req services.CreateRequest) (store.Transaction, error)
	updateFn func(ctx context.Context, req services.UpdateRequest) (store.Transaction, error)
	deleteFn func(ctx context.Context, transactionID, userID string) error
}

func (s stubService) Create(ctx context.Context, req services.CreateRequest) (store.Transaction, error) {
	if s.createFn == nil {
		return store.Transaction{}, nil
	}
	return s.createFn(ctx, req)
}

func (s stubService) Update(ctx context.Context, req services.UpdateRequest) (store.Transaction, error) {
	if s.updateFn == nil {
		return store.Transaction{}, nil
	}
	return s.updateFn(ctx, req)
}

func (s stubService) Delete(ctx context.Context, transactionID, userID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, transactionID, userID)
}

func newTestHandler(txRunner fakeTxRunner, users UserStore, accounts AccountStore, transactions TransactionStore, settings SettingsStore, service TransactionService) *Handler {
	cfg := config.Config{
		AppEnv:         "test",
		Port:           "0",
		JWTSecret:      "secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
	}
	return New(txRunner, cfg, users, accounts, transactions, settings, service, websocket.NewHub())
}

// serveAs runs a handler with the user already authenticated, the state
// every authed route sees after the middleware.
func serveAs(t *testing.T, handler http.HandlerFunc, userID, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

// withURLParam attaches a chi route parameter to a bare test request.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func stringPtr(value string) *string {
	return &value
}
