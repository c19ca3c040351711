package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"finsteer/internal/db"
	"finsteer/internal/money"
	"finsteer/internal/store"
	"finsteer/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound        = errors.New("transaction not found")
	ErrAccountNotOwned = errors.New("account does not belong to user")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidType     = errors.New("invalid transaction type")
)

type TransactionService struct {
	txRunner     db.TxRunner
	accountStore AccountStore
	txStore      TransactionStore
	hub          UpdateHub
}

type AccountStore interface {
	GetForUpdate(ctx context.Context, tx store.Getter, accountID string) (store.Account, error)
	AdjustBalance(ctx context.Context, tx store.Execer, accountID string, delta int64) (int64, error)
}

type TransactionStore interface {
	Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error
	GetForOwner(ctx context.Context, transactionID, userID string) (store.Transaction, error)
	Update(ctx context.Context, tx store.Execer, input store.TransactionInput) error
	Delete(ctx context.Context, tx store.Execer, transactionID, userID string) (int64, error)
}

type UpdateHub interface {
	BroadcastUpdate(userID string, update websocket.EntityUpdate)
}

func NewTransactionService(txRunner db.TxRunner, accountStore AccountStore, txStore TransactionStore, hub UpdateHub) *TransactionService {
	return &TransactionService{
		txRunner:     txRunner,
		accountStore: accountStore,
		txStore:      txStore,
		hub:          hub,
	}
}

type CreateRequest struct {
	UserID      string
	AccountID   string
	Type        string
	AmountMinor int64
	Date        time.Time
	Description string
	Category    *string
}

// Create writes the transaction and keeps the denormalized account
// balance in step within the same database transaction.
func (s *TransactionService) Create(ctx context.Context, req CreateRequest) (store.Transaction, error) {
	if req.AmountMinor <= 0 {
		return store.Transaction{}, ErrInvalidAmount
	}
	delta, err := signedMinor(req.Type, req.AmountMinor)
	if err != nil {
		return store.Transaction{}, err
	}
	transactionID := uuid.NewString()
	var accountAfter store.Account
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.accountStore.GetForUpdate(ctx, tx, req.AccountID)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrAccountNotOwned
			}
			return err
		}
		if account.UserID != req.UserID {
			return ErrAccountNotOwned
		}
		if err := s.txStore.Create(ctx, tx, store.TransactionInput{
			ID:          transactionID,
			UserID:      req.UserID,
			AccountID:   req.AccountID,
			Type:        req.Type,
			Amount:      req.AmountMinor,
			Date:        req.Date,
			Description: req.Description,
			Category:    req.Category,
		}); err != nil {
			return err
		}
		if _, err := s.accountStore.AdjustBalance(ctx, tx, req.AccountID, delta); err != nil {
			return err
		}
		accountAfter = account
		accountAfter.Balance = account.Balance + delta
		return nil
	})
	if err != nil {
		return store.Transaction{}, err
	}
	created := store.Transaction{
		ID:          transactionID,
		UserID:      req.UserID,
		AccountID:   req.AccountID,
		Type:        req.Type,
		Amount:      req.AmountMinor,
		Date:        req.Date,
		Description: req.Description,
		Category:    req.Category,
	}
	s.broadcastTransaction(req.UserID, websocket.ActionCreated, created)
	s.broadcastAccount(req.UserID, accountAfter)
	return created, nil
}

type UpdateRequest struct {
	ID          string
	UserID      string
	AccountID   string
	Type        string
	AmountMinor int64
	Date        time.Time
	Description string
	Category    *string
}

// Update rewrites the row and applies the signed delta between the old
// and new amounts; moving a transaction between accounts adjusts both.
func (s *TransactionService) Update(ctx context.Context, req UpdateRequest) (store.Transaction, error) {
	if req.AmountMinor <= 0 {
		return store.Transaction{}, ErrInvalidAmount
	}
	newDelta, err := signedMinor(req.Type, req.AmountMinor)
	if err != nil {
		return store.Transaction{}, err
	}
	existing, err := s.txStore.GetForOwner(ctx, req.ID, req.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return store.Transaction{}, ErrNotFound
		}
		return store.Transaction{}, err
	}
	oldDelta, err := signedMinor(existing.Type, existing.Amount)
	if err != nil {
		return store.Transaction{}, err
	}
	var oldAccountAfter, newAccountAfter store.Account
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		oldAccount, newAccount, err := lockTwoAccounts(ctx, tx, s.accountStore, existing.AccountID, req.AccountID)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrAccountNotOwned
			}
			return err
		}
		if oldAccount.UserID != req.UserID || newAccount.UserID != req.UserID {
			return ErrAccountNotOwned
		}
		if err := s.txStore.Update(ctx, tx, store.TransactionInput{
			ID:          req.ID,
			UserID:      req.UserID,
			AccountID:   req.AccountID,
			Type:        req.Type,
			Amount:      req.AmountMinor,
			Date:        req.Date,
			Description: req.Description,
			Category:    req.Category,
		}); err != nil {
			return err
		}
		if existing.AccountID == req.AccountID {
			if _, err := s.accountStore.AdjustBalance(ctx, tx, req.AccountID, newDelta-oldDelta); err != nil {
				return err
			}
			newAccountAfter = newAccount
			newAccountAfter.Balance = newAccount.Balance + newDelta - oldDelta
			oldAccountAfter = newAccountAfter
			return nil
		}
		if _, err := s.accountStore.AdjustBalance(ctx, tx, existing.AccountID, -oldDelta); err != nil {
			return err
		}
		if _, err := s.accountStore.AdjustBalance(ctx, tx, req.AccountID, newDelta); err != nil {
			return err
		}
		oldAccountAfter = oldAccount
		oldAccountAfter.Balance = oldAccount.Balance - oldDelta
		newAccountAfter = newAccount
		newAccountAfter.Balance = newAccount.Balance + newDelta
		return nil
	})
	if err != nil {
		return store.Transaction{}, err
	}
	updated := store.Transaction{
		ID:          req.ID,
		UserID:      req.UserID,
		AccountID:   req.AccountID,
		Type:        req.Type,
		Amount:      req.AmountMinor,
		Date:        req.Date,
		Description: req.Description,
		Category:    req.Category,
		CreatedAt:   existing.CreatedAt,
	}
	s.broadcastTransaction(req.UserID, websocket.ActionUpdated, updated)
	s.broadcastAccount(req.UserID, newAccountAfter)
	if existing.AccountID != req.AccountID {
		s.broadcastAccount(req.UserID, oldAccountAfter)
	}
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, transactionID, userID string) error {
	existing, err := s.txStore.GetForOwner(ctx, transactionID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	delta, err := signedMinor(existing.Type, existing.Amount)
	if err != nil {
		return err
	}
	var accountAfter store.Account
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.accountStore.GetForUpdate(ctx, tx, existing.AccountID)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrAccountNotOwned
			}
			return err
		}
		rows, err := s.txStore.Delete(ctx, tx, transactionID, userID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrNotFound
		}
		if _, err := s.accountStore.AdjustBalance(ctx, tx, existing.AccountID, -delta); err != nil {
			return err
		}
		accountAfter = account
		accountAfter.Balance = account.Balance - delta
		return nil
	})
	if err != nil {
		return err
	}
	s.hub.BroadcastUpdate(userID, websocket.EntityUpdate{
		Resource: "transactions",
		Action:   websocket.ActionDeleted,
		ID:       transactionID,
	})
	s.broadcastAccount(userID, accountAfter)
	return nil
}

func (s *TransactionService) broadcastTransaction(userID, action string, row store.Transaction) {
	payload, _ := json.Marshal(map[string]any{
		"id":          row.ID,
		"account_id":  row.AccountID,
		"type":        row.Type,
		"amount":      money.FormatMinor(row.Amount),
		"date":        row.Date.Format("2006-01-02"),
		"description": row.Description,
		"category":    derefOrEmpty(row.Category),
	})
	s.hub.BroadcastUpdate(userID, websocket.EntityUpdate{
		Resource: "transactions",
		Action:   action,
		ID:       row.ID,
		Data:     payload,
	})
}

// broadcastAccount carries the whole account row. Subscribers replace
// their cached entity with the payload, so a balance-only body would
// erase every other field client-side.
func (s *TransactionService) broadcastAccount(userID string, account store.Account) {
	payload, _ := json.Marshal(map[string]any{
		"id":         account.ID,
		"user_id":    account.UserID,
		"name":       account.Name,
		"type":       account.Type,
		"balance":    money.FormatMinor(account.Balance),
		"currency":   account.Currency,
		"created_at": account.CreatedAt,
	})
	s.hub.BroadcastUpdate(userID, websocket.EntityUpdate{
		Resource: "accounts",
		Action:   websocket.ActionUpdated,
		ID:       account.ID,
		Data:     payload,
	})
}

// signedMinor applies the canonical signing rule: income adds, expense
// subtracts.
func signedMinor(txType string, amountMinor int64) (int64, error) {
	switch txType {
	case "income":
		return amountMinor, nil
	case "expense":
		return -amountMinor, nil
	default:
		return 0, ErrInvalidType
	}
}

func lockTwoAccounts(ctx context.Context, tx store.Getter, accountStore AccountStore, firstID, secondID string) (store.Account, store.Account, error) {
	if firstID == secondID {
		account, err := accountStore.GetForUpdate(ctx, tx, firstID)
		if err != nil {
			return store.Account{}, store.Account{}, err
		}
		return account, account, nil
	}
	leftID, rightID := orderedIDs(firstID, secondID)
	leftAccount, err := accountStore.GetForUpdate(ctx, tx, leftID)
	if err != nil {
		return store.Account{}, store.Account{}, err
	}
	rightAccount, err := accountStore.GetForUpdate(ctx, tx, rightID)
	if err != nil {
		return store.Account{}, store.Account{}, err
	}
	if firstID == leftID {
		return leftAccount, rightAccount, nil
	}
	return rightAccount, leftAccount, nil
}

func orderedIDs(firstID, secondID string) (string, string) {
	if firstID <= secondID {
		return firstID, secondID
	}
	return secondID, firstID
}

func derefOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
