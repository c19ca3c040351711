package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"finsteer/internal/money"

	"github.com/shopspring/decimal"
)

// Transaction is the slice of a stored transaction that aggregation
// needs. Amounts are positive minor units; Type carries the sign.
type Transaction struct {
	ID          string
	AccountID   string
	Type        string
	AmountMinor int64
	Date        time.Time
	Description string
	Category    string
}

type Account struct {
	ID           string
	Name         string
	BalanceMinor int64
}

type Totals struct {
	IncomeMinor   int64
	ExpensesMinor int64
	NetMinor      int64
}

type AccountBalance struct {
	AccountID    string
	Name         string
	BalanceMinor int64
}

type MonthTotal struct {
	Month    string
	NetMinor int64
}

type CategoryTotal struct {
	Category string
	NetMinor int64
	Share    string
}

// SignedMinor is the single signing rule used everywhere: income adds,
// everything else subtracts.
func SignedMinor(tx Transaction) int64 {
	if tx.Type == "income" {
		return tx.AmountMinor
	}
	return -tx.AmountMinor
}

// AccountBalances derives each account's balance by summing its signed
// transactions. Accounts without transactions report zero.
func AccountBalances(accounts []Account, transactions []Transaction) []AccountBalance {
	sums := make(map[string]int64, len(accounts))
	for _, tx := range transactions {
		sums[tx.AccountID] += SignedMinor(tx)
	}
	balances := make([]AccountBalance, 0, len(accounts))
	for _, account := range accounts {
		balances = append(balances, AccountBalance{
			AccountID:    account.ID,
			Name:         account.Name,
			BalanceMinor: sums[account.ID],
		})
	}
	return balances
}

// NetWorth sums account balances as stored, negatives included.
func NetWorth(accounts []Account) int64 {
	var total int64
	for _, account := range accounts {
		total += account.BalanceMinor
	}
	return total
}

func ComputeTotals(transactions []Transaction) Totals {
	var totals Totals
	for _, tx := range transactions {
		if tx.Type == "income" {
			totals.IncomeMinor += tx.AmountMinor
		} else {
			totals.ExpensesMinor += tx.AmountMinor
		}
	}
	totals.NetMinor = totals.IncomeMinor - totals.ExpensesMinor
	return totals
}

// MonthlyTotals groups signed totals by calendar month, keyed
// "2006-01", in ascending month order.
func MonthlyTotals(transactions []Transaction) []MonthTotal {
	sums := make(map[string]int64)
	for _, tx := range transactions {
		sums[tx.Date.Format("2006-01")] += SignedMinor(tx)
	}
	months := make([]string, 0, len(sums))
	for month := range sums {
		months = append(months, month)
	}
	sort.Strings(months)
	totals := make([]MonthTotal, 0, len(months))
	for _, month := range months {
		totals = append(totals, MonthTotal{Month: month, NetMinor: sums[month]})
	}
	return totals
}

const uncategorized = "Uncategorized"

// CategoryTotals groups signed totals by category label and computes
// each category's share of the total absolute volume.
func CategoryTotals(transactions []Transaction) []CategoryTotal {
	sums := make(map[string]int64)
	var volume int64
	for _, tx := range transactions {
		category := tx.Category
		if category == "" {
			category = uncategorized
		}
		sums[category] += SignedMinor(tx)
		volume += tx.AmountMinor
	}
	names := make([]string, 0, len(sums))
	for name := range sums {
		names = append(names, name)
	}
	sort.Strings(names)
	totals := make([]CategoryTotal, 0, len(names))
	for _, name := range names {
		share := "0.00"
		if volume > 0 {
			abs := sums[name]
			if abs < 0 {
				abs = -abs
			}
			share = decimal.NewFromInt(abs).
				Mul(decimal.NewFromInt(100)).
				Div(decimal.NewFromInt(volume)).
				StringFixedBank(2)
		}
		totals = append(totals, CategoryTotal{Category: name, NetMinor: sums[name], Share: share})
	}
	return totals
}

// TopAccounts returns up to limit accounts ordered by absolute balance,
// largest first.
func TopAccounts(balances []AccountBalance, limit int) []AccountBalance {
	sorted := make([]AccountBalance, len(balances))
	copy(sorted, balances)
	sort.SliceStable(sorted, func(i, j int) bool {
		return absMinor(sorted[i].BalanceMinor) > absMinor(sorted[j].BalanceMinor)
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// WriteCSV streams the export rows: date, account, category, type,
// amount, description.
func WriteCSV(w io.Writer, transactions []Transaction, accountNames map[string]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"date", "account", "category", "type", "amount", "description"}); err != nil {
		return err
	}
	for _, tx := range transactions {
		category := tx.Category
		if category == "" {
			category = uncategorized
		}
		record := []string{
			tx.Date.Format("2006-01-02"),
			accountNames[tx.AccountID],
			category,
			tx.Type,
			money.FormatMinor(tx.AmountMinor),
			tx.Description,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func ExportFilename(start, end time.Time) string {
	return fmt.Sprintf("transactions_%s_to_%s.csv", start.Format("2006-01-02"), end.Format("2006-01-02"))
}

func absMinor(value int64) int64 {
	if value < 0 {
		return -value
	}
	return value
}
