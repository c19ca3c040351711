package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"finsteer/internal/store"
)

func reportFixture() (stubTransactionStore, stubAccountStore) {
	category := "Groceries"
	transactions := stubTransactionStore{
		listForReportFn: func(context.Context, string, time.Time, time.Time) ([]store.Transaction, error) {
			return []store.Transaction{
				{ID: "tx-1", AccountID: "acc-1", Type: "income", Amount: 20000, Date: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), Description: "salary"},
				{ID: "tx-2", AccountID: "acc-1", Type: "expense", Amount: 8000, Date: time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC), Description: "weekly shop", Category: &category},
			}, nil
		},
	}
	accounts := stubAccountStore{
		listByUserFn: func(context.Context, string) ([]store.AccountBalanceSummary, error) {
			return []store.AccountBalanceSummary{
				{ID: "acc-1", Name: "Main Checking", CalculatedBalance: 12000},
			}, nil
		},
	}
	return transactions, accounts
}

func TestReportSummary(t *testing.T) {
	transactions, accounts := reportFixture()
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, accounts, transactions, stubSettingsStore{}, stubService{})

	rr := serveAs(t, handler.ReportSummary, "user-1", http.MethodGet, "/reports/summary", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if payload["income"] != "200.00" || payload["expenses"] != "80.00" || payload["net"] != "120.00" {
		t.Fatalf("unexpected totals: %#v", payload)
	}
	if payload["net_worth"] != "120.00" {
		t.Fatalf("unexpected net worth: %#v", payload["net_worth"])
	}
}

func TestReportMonthly(t *testing.T) {
	transactions, accounts := reportFixture()
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, accounts, transactions, stubSettingsStore{}, stubService{})

	rr := serveAs(t, handler.ReportMonthly, "user-1", http.MethodGet, "/reports/monthly", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload []map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(payload) != 2 {
		t.Fatalf("expected 2 months, got %#v", payload)
	}
	if payload[0]["month"] != "2025-01" || payload[0]["net"] != "200.00" {
		t.Fatalf("unexpected first month: %#v", payload[0])
	}
	if payload[1]["month"] != "2025-02" || payload[1]["net"] != "-80.00" {
		t.Fatalf("unexpected second month: %#v", payload[1])
	}
}

func TestReportCategories(t *testing.T) {
	transactions, accounts := reportFixture()
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, accounts, transactions, stubSettingsStore{}, stubService{})

	rr := serveAs(t, handler.ReportCategories, "user-1", http.MethodGet, "/reports/categories", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload []map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	byName := map[string]map[string]any{}
	for _, entry := range payload {
		byName[entry["category"].(string)] = entry
	}
	if byName["Groceries"]["net"] != "-80.00" {
		t.Fatalf("unexpected groceries entry: %#v", byName["Groceries"])
	}
	if byName["Uncategorized"]["net"] != "200.00" {
		t.Fatalf("unexpected uncategorized entry: %#v", byName["Uncategorized"])
	}
}

func TestReportExportWritesCSV(t *testing.T) {
	transactions, accounts := reportFixture()
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, accounts, transactions, stubSettingsStore{}, stubService{})

	rr := serveAs(t, handler.ReportExport, "user-1", http.MethodGet,
		"/reports/export?start_date=2025-01-01&end_date=2025-02-28", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("unexpected content type: %q", ct)
	}
	disposition := rr.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "transactions_2025-01-01_to_2025-02-28.csv") {
		t.Fatalf("unexpected disposition: %q", disposition)
	}
	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(lines))
	}
	if !strings.Contains(lines[1], "Main Checking") {
		t.Fatalf("expected account name in row: %q", lines[1])
	}
}

func TestReportRangeCoversFutureDates(t *testing.T) {
	var gotEnd time.Time
	future := time.Date(2031, 6, 1, 0, 0, 0, 0, time.UTC)
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubAccountStore{}, stubTransactionStore{
		listForReportFn: func(_ context.Context, _ string, _, end time.Time) ([]store.Transaction, error) {
			gotEnd = end
			return []store.Transaction{
				{ID: "tx-1", AccountID: "acc-1", Type: "income", Amount: 5000, Date: future, Description: "scheduled payout"},
			}, nil
		},
	}, stubSettingsStore{}, stubService{})

	rr := serveAs(t, handler.ReportSummary, "user-1", http.MethodGet, "/reports/summary", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !gotEnd.After(future) {
		t.Fatalf("expected open range to reach past %v, got %v", future, gotEnd)
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if payload["income"] != "50.00" {
		t.Fatalf("expected future income counted, got %#v", payload)
	}
}

func TestReportExportEmptyRange(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubAccountStore{}, stubTransactionStore{
		listForReportFn: func(context.Context, string, time.Time, time.Time) ([]store.Transaction, error) {
			return nil, nil
		},
	}, stubSettingsStore{}, stubService{})

	rr := serveAs(t, handler.ReportExport, "user-1", http.MethodGet, "/reports/export", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
