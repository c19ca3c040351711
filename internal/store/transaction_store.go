package store

import (
	"context"
	"fmt"
	"time"
)

type TransactionStore struct {
	db DB
}

type Transaction struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	AccountID   string    `db:"account_id"`
	Type        string    `db:"type"`
	Amount      int64     `db:"amount"`
	Date        time.Time `db:"date"`
	Description string    `db:"description"`
	Category    *string   `db:"category"`
	CreatedAt   any       `db:"created_at"`
}

type TransactionInput struct {
	ID          string
	UserID      string
	AccountID   string
	Type        string
	Amount      int64
	Date        time.Time
	Description string
	Category    *string
}

type TransactionFilter struct {
	AccountID string
	StartDate *time.Time
	EndDate   *time.Time
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

func (s *TransactionStore) Create(ctx context.Context, tx Execer, input TransactionInput) error {
	query := `
		INSERT INTO transactions (id, user_id, account_id, type, amount, date, description, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.UserID, input.AccountID, input.Type, input.Amount,
		input.Date, input.Description, input.Category,
	)
	return err
}

func (s *TransactionStore) ListByUser(ctx context.Context, userID string, filter TransactionFilter) ([]Transaction, error) {
	query := `
		SELECT id, user_id, account_id, type, amount, date, description, category, created_at
		FROM transactions
		WHERE user_id = $1
	`
	args := []any{userID}
	param := 2
	if filter.AccountID != "" {
		query += " AND account_id = $" + itoa(param)
		args = append(args, filter.AccountID)
		param++
	}
	if filter.StartDate != nil {
		query += " AND date >= $" + itoa(param)
		args = append(args, *filter.StartDate)
		param++
	}
	if filter.EndDate != nil {
		query += " AND date <= $" + itoa(param)
		args = append(args, *filter.EndDate)
		param++
	}
	query += " ORDER BY date DESC, created_at DESC"
	var rows []Transaction
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListForReport returns the user's transactions in a date range in
// ascending date order, the order report reductions consume them in.
func (s *TransactionStore) ListForReport(ctx context.Context, userID string, start, end time.Time) ([]Transaction, error) {
	var rows []Transaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, account_id, type, amount, date, description, category, created_at
		FROM transactions
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC, created_at ASC
	`, userID, start, end)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *TransactionStore) GetForOwner(ctx context.Context, transactionID, userID string) (Transaction, error) {
	var row Transaction
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, account_id, type, amount, date, description, category, created_at
		FROM transactions
		WHERE id = $1 AND user_id = $2
	`, transactionID, userID)
	if err != nil {
		return Transaction{}, err
	}
	return row, nil
}

func (s *TransactionStore) Update(ctx context.Context, tx Execer, input TransactionInput) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET account_id = $3, type = $4, amount = $5, date = $6, description = $7, category = $8, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`, input.ID, input.UserID, input.AccountID, input.Type, input.Amount,
		input.Date, input.Description, input.Category)
	return err
}

func (s *TransactionStore) Delete(ctx context.Context, tx Execer, transactionID, userID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		DELETE FROM transactions
		WHERE id = $1 AND user_id = $2
	`, transactionID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func itoa(value int) string {
	return fmt.Sprintf("%d", value)
}
