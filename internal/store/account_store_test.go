package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
)

func TestAccountStoreListByUserDerivesBalances(t *testing.T) {
	ctx := context.Background()
	store := NewAccountStore(stubDB{
		selectFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "LEFT JOIN transactions") {
				t.Fatalf("expected signed-sum join, got: %s", query)
			}
			if !strings.Contains(query, "WHEN t.type = 'income' THEN t.amount ELSE -t.amount") {
				t.Fatalf("expected signing rule in query: %s", query)
			}
			if len(args) != 1 || args[0] != "user-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			rows := dest.(*[]AccountBalanceSummary)
			*rows = []AccountBalanceSummary{
				{ID: "acc-1", StoredBalance: 12000, CalculatedBalance: 12000, Difference: 0},
			}
			return nil
		},
	})
	summaries, err := store.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summaries) != 1 || summaries[0].Difference != 0 {
		t.Fatalf("unexpected summaries: %#v", summaries)
	}
}

func TestAccountStoreGetForOwnerScopesByUser(t *testing.T) {
	ctx := context.Background()
	store := NewAccountStore(stubDB{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "WHERE id = $1 AND user_id = $2") {
				t.Fatalf("unexpected query: %s", query)
			}
			if args[0] != "acc-1" || args[1] != "user-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			row := dest.(*Account)
			*row = Account{ID: "acc-1", UserID: "user-1", Balance: 5000}
			return nil
		},
	})
	account, err := store.GetForOwner(ctx, "acc-1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Balance != 5000 {
		t.Fatalf("unexpected account: %#v", account)
	}
}

func TestAccountStoreGetForUpdateLocksRow(t *testing.T) {
	ctx := context.Background()
	store := NewAccountStore(stubDB{})
	getter := stubGetter{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "FOR UPDATE") {
				t.Fatalf("expected row lock, got: %s", query)
			}
			row := dest.(*Account)
			*row = Account{ID: "acc-1", UserID: "user-1"}
			return nil
		},
	}
	if _, err := store.GetForUpdate(ctx, getter, "acc-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAccountStoreUpdatePartial(t *testing.T) {
	ctx := context.Background()
	name := "Emergency Fund"
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "COALESCE($3, name)") {
				t.Fatalf("expected partial update, got: %s", query)
			}
			if strings.Contains(query, "balance") {
				t.Fatalf("balance must not be writable here: %s", query)
			}
			if args[2] != &name {
				t.Fatalf("expected name pointer in args: %#v", args)
			}
			if args[3] != (*string)(nil) || args[4] != (*string)(nil) {
				t.Fatalf("expected nil for unset fields: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	store := NewAccountStore(stubDB{})
	rows, err := store.Update(ctx, execer, "acc-1", "user-1", AccountUpdate{Name: &name})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 row, got %d", rows)
	}
}

func TestAccountStoreUpdateMissingRow(t *testing.T) {
	ctx := context.Background()
	execer := stubExecer{
		execFn: func(context.Context, string, ...any) (sql.Result, error) {
			return stubResult{rows: 0}, nil
		},
	}
	store := NewAccountStore(stubDB{})
	rows, err := store.Update(ctx, execer, "missing", "user-1", AccountUpdate{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected 0 rows, got %d", rows)
	}
}

func TestAccountStoreAdjustBalance(t *testing.T) {
	ctx := context.Background()
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "balance = balance + $1") {
				t.Fatalf("expected relative adjustment, got: %s", query)
			}
			if args[0] != int64(-2500) || args[1] != "acc-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	store := NewAccountStore(stubDB{})
	if _, err := store.AdjustBalance(ctx, execer, "acc-1", -2500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAccountStoreCountTransactions(t *testing.T) {
	ctx := context.Background()
	store := NewAccountStore(stubDB{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "COUNT(*) FROM transactions") {
				t.Fatalf("unexpected query: %s", query)
			}
			*dest.(*int64) = 3
			return nil
		},
	})
	count, err := store.CountTransactions(ctx, "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3, got %d", count)
	}
}
