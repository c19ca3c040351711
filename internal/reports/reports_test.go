package reports

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestSignedMinor(t *testing.T) {
	if got := SignedMinor(Transaction{Type: "income", AmountMinor: 500}); got != 500 {
		t.Fatalf("income: got %d", got)
	}
	if got := SignedMinor(Transaction{Type: "expense", AmountMinor: 500}); got != -500 {
		t.Fatalf("expense: got %d", got)
	}
}

func TestComputeTotals(t *testing.T) {
	totals := ComputeTotals([]Transaction{
		{Type: "income", AmountMinor: 20000},
		{Type: "expense", AmountMinor: 8000},
	})
	if totals.IncomeMinor != 20000 || totals.ExpensesMinor != 8000 || totals.NetMinor != 12000 {
		t.Fatalf("unexpected totals: %+v", totals)
	}
}

func TestAccountBalances(t *testing.T) {
	accounts := []Account{{ID: "a"}, {ID: "b"}}
	transactions := []Transaction{
		{AccountID: "a", Type: "income", AmountMinor: 10000},
		{AccountID: "a", Type: "expense", AmountMinor: 3000},
		{AccountID: "a", Type: "income", AmountMinor: 5000},
	}
	balances := AccountBalances(accounts, transactions)
	if len(balances) != 2 {
		t.Fatalf("expected 2 balances, got %d", len(balances))
	}
	if balances[0].BalanceMinor != 12000 {
		t.Fatalf("expected 12000 for account a, got %d", balances[0].BalanceMinor)
	}
	if balances[1].BalanceMinor != 0 {
		t.Fatalf("expected 0 for account with no transactions, got %d", balances[1].BalanceMinor)
	}
}

func TestNetWorthIncludesNegatives(t *testing.T) {
	got := NetWorth([]Account{
		{BalanceMinor: 10000},
		{BalanceMinor: -3000},
		{BalanceMinor: 5000},
	})
	if got != 12000 {
		t.Fatalf("expected 12000, got %d", got)
	}
}

func TestMonthlyTotalsSortedByMonth(t *testing.T) {
	totals := MonthlyTotals([]Transaction{
		{Type: "expense", AmountMinor: 1000, Date: day(2025, time.March, 5)},
		{Type: "income", AmountMinor: 5000, Date: day(2025, time.January, 10)},
		{Type: "income", AmountMinor: 2000, Date: day(2025, time.March, 20)},
	})
	if len(totals) != 2 {
		t.Fatalf("expected 2 months, got %d", len(totals))
	}
	if totals[0].Month != "2025-01" || totals[0].NetMinor != 5000 {
		t.Fatalf("unexpected first month: %+v", totals[0])
	}
	if totals[1].Month != "2025-03" || totals[1].NetMinor != 1000 {
		t.Fatalf("unexpected second month: %+v", totals[1])
	}
}

func TestCategoryTotalsUncategorizedFallback(t *testing.T) {
	totals := CategoryTotals([]Transaction{
		{Type: "expense", AmountMinor: 7500, Category: "Groceries"},
		{Type: "expense", AmountMinor: 2500},
	})
	if len(totals) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(totals))
	}
	byName := map[string]CategoryTotal{}
	for _, total := range totals {
		byName[total.Category] = total
	}
	groceries, ok := byName["Groceries"]
	if !ok || groceries.NetMinor != -7500 || groceries.Share != "75.00" {
		t.Fatalf("unexpected groceries total: %+v", groceries)
	}
	other, ok := byName["Uncategorized"]
	if !ok || other.NetMinor != -2500 || other.Share != "25.00" {
		t.Fatalf("unexpected uncategorized total: %+v", other)
	}
}

func TestCategoryTotalsEmptyInput(t *testing.T) {
	if totals := CategoryTotals(nil); len(totals) != 0 {
		t.Fatalf("expected no totals, got %+v", totals)
	}
}

func TestTopAccountsOrdersByMagnitude(t *testing.T) {
	top := TopAccounts([]AccountBalance{
		{AccountID: "small", BalanceMinor: 100},
		{AccountID: "debt", BalanceMinor: -90000},
		{AccountID: "big", BalanceMinor: 50000},
	}, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(top))
	}
	if top[0].AccountID != "debt" || top[1].AccountID != "big" {
		t.Fatalf("unexpected order: %+v", top)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []Transaction{
		{
			AccountID:   "acc-1",
			Type:        "expense",
			AmountMinor: 4599,
			Date:        day(2025, time.March, 10),
			Description: "weekly shop",
			Category:    "Groceries",
		},
		{
			AccountID:   "acc-1",
			Type:        "income",
			AmountMinor: 250000,
			Date:        day(2025, time.March, 25),
			Description: "salary",
		},
	}, map[string]string{"acc-1": "Main Checking"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "date,account,category,type,amount,description" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if lines[1] != "2025-03-10,Main Checking,Groceries,expense,45.99,weekly shop" {
		t.Fatalf("unexpected row: %q", lines[1])
	}
	if lines[2] != "2025-03-25,Main Checking,Uncategorized,income,2500.00,salary" {
		t.Fatalf("unexpected row: %q", lines[2])
	}
}

func TestExportFilename(t *testing.T) {
	got := ExportFilename(day(2025, time.January, 1), day(2025, time.March, 31))
	if got != "transactions_2025-01-01_to_2025-03-31.csv" {
		t.Fatalf("unexpected filename: %q", got)
	}
}
