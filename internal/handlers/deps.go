package handlers

import (
	"context"
	"time"

	"finsteer/internal/services"
	"finsteer/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, email, passwordHash, name string) error
	GetByEmail(ctx context.Context, email string) (store.User, error)
	GetByID(ctx context.Context, userID string) (store.User, error)
}

type AccountStore interface {
	Create(ctx context.Context, tx store.Execer, id, userID, name, accountType string, balance int64, currency string) error
	ListByUser(ctx context.Context, userID string) ([]store.AccountBalanceSummary, error)
	GetForOwner(ctx context.Context, accountID, userID string) (store.Account, error)
	Update(ctx context.Context, tx store.Execer, accountID, userID string, update store.AccountUpdate) (int64, error)
	Delete(ctx context.Context, tx store.Execer, accountID, userID string) (int64, error)
	CountTransactions(ctx context.Context, accountID string) (int64, error)
}

type TransactionStore interface {
	Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error
	ListByUser(ctx context.Context, userID string, filter store.TransactionFilter) ([]store.Transaction, error)
	GetForOwner(ctx context.Context, transactionID, userID string) (store.Transaction, error)
	ListForReport(ctx context.Context, userID string, start, end time.Time) ([]store.Transaction, error)
}

type SettingsStore interface {
	GetByUser(ctx context.Context, userID string) (store.Settings, error)
	Upsert(ctx context.Context, tx store.Execer, userID string, update store.SettingsUpdate) error
}

type TransactionService interface {
	Create(ctx context.Context, req services.CreateRequest) (store.Transaction, error)
	Update(ctx context.Context, req services.UpdateRequest) (store.Transaction, error)
	Delete(ctx context.Context, transactionID, userID string) error
}
