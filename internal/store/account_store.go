package store

import "context"

type AccountStore struct {
	db DB
}

type Account struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	Name      string `db:"name"`
	Type      string `db:"type"`
	Balance   int64  `db:"balance"`
	Currency  string `db:"currency"`
	CreatedAt any    `db:"created_at"`
}

// AccountBalanceSummary carries both the stored balance column and the
// balance derived from the account's transactions. The two should match
// after every committed write; Difference surfaces drift.
type AccountBalanceSummary struct {
	ID                string `db:"id"`
	UserID            string `db:"user_id"`
	Name              string `db:"name"`
	Type              string `db:"type"`
	Currency          string `db:"currency"`
	StoredBalance     int64  `db:"stored_balance"`
	CalculatedBalance int64  `db:"calculated_balance"`
	Difference        int64  `db:"difference"`
	CreatedAt         any    `db:"created_at"`
}

// AccountUpdate carries the fields an owner may change directly. The
// balance column is maintained from transaction writes only.
type AccountUpdate struct {
	Name     *string
	Type     *string
	Currency *string
}

func NewAccountStore(db DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) Create(ctx context.Context, tx Execer, id, userID, name, accountType string, balance int64, currency string) error {
	query := `
		INSERT INTO accounts (id, user_id, name, type, balance, currency)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := tx.ExecContext(ctx, query, id, userID, name, accountType, balance, currency)
	return err
}

const signedSum = `COALESCE(SUM(CASE WHEN t.type = 'income' THEN t.amount ELSE -t.amount END), 0)`

func (s *AccountStore) ListByUser(ctx context.Context, userID string) ([]AccountBalanceSummary, error) {
	var rows []AccountBalanceSummary
	err := s.db.SelectContext(ctx, &rows, `
		SELECT a.id,
		       a.user_id,
		       a.name,
		       a.type,
		       a.currency,
		       a.balance AS stored_balance,
		       `+signedSum+` AS calculated_balance,
		       (a.balance - `+signedSum+`) AS difference,
		       a.created_at
		FROM accounts a
		LEFT JOIN transactions t ON t.account_id = a.id
		WHERE a.user_id = $1
		GROUP BY a.id, a.user_id, a.name, a.type, a.currency, a.balance, a.created_at
		ORDER BY a.created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *AccountStore) GetForOwner(ctx context.Context, accountID, userID string) (Account, error) {
	var row Account
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, name, type, balance, currency, created_at
		FROM accounts
		WHERE id = $1 AND user_id = $2
	`, accountID, userID)
	if err != nil {
		return Account{}, err
	}
	return row, nil
}

func (s *AccountStore) GetForUpdate(ctx context.Context, tx Getter, accountID string) (Account, error) {
	var row Account
	err := tx.GetContext(ctx, &row, `
		SELECT id, user_id, name, type, balance, currency, created_at
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`, accountID)
	if err != nil {
		return Account{}, err
	}
	return row, nil
}

func (s *AccountStore) Update(ctx context.Context, tx Execer, accountID, userID string, update AccountUpdate) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET name = COALESCE($3, name),
		    type = COALESCE($4, type),
		    currency = COALESCE($5, currency),
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`, accountID, userID, update.Name, update.Type, update.Currency)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *AccountStore) Delete(ctx context.Context, tx Execer, accountID, userID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		DELETE FROM accounts
		WHERE id = $1 AND user_id = $2
	`, accountID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *AccountStore) AdjustBalance(ctx context.Context, tx Execer, accountID string, delta int64) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
	`, delta, accountID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *AccountStore) CountTransactions(ctx context.Context, accountID string) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM transactions WHERE account_id = $1
	`, accountID)
	return count, err
}
