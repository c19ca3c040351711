package handlers

import (
	"net/http"
	"time"

	"finsteer/internal/middleware"
	"finsteer/internal/money"
	"finsteer/internal/reports"
	"finsteer/internal/store"
)

// resolveRange fills in the open ends of an optional date range. The
// bounds reach wide enough to cover any storable date in either
// direction; transactions may carry future dates.
func resolveRange(start, end *time.Time) (time.Time, time.Time) {
	from := time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
	if start != nil {
		from = *start
	}
	to := time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
	if end != nil {
		to = *end
	}
	return from, to
}

func (h *Handler) loadReportInput(w http.ResponseWriter, r *http.Request) ([]reports.Transaction, []store.AccountBalanceSummary, time.Time, time.Time, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return nil, nil, time.Time{}, time.Time{}, false
	}
	start, end, err := parseDateRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return nil, nil, time.Time{}, time.Time{}, false
	}
	from, to := resolveRange(start, end)
	rows, err := h.transactions.ListForReport(r.Context(), userID, from, to)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load transactions")
		return nil, nil, time.Time{}, time.Time{}, false
	}
	accounts, err := h.accounts.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load accounts")
		return nil, nil, time.Time{}, time.Time{}, false
	}
	return reportTransactions(rows), accounts, from, to, true
}

func reportTransactions(rows []store.Transaction) []reports.Transaction {
	converted := make([]reports.Transaction, 0, len(rows))
	for _, row := range rows {
		category := ""
		if row.Category != nil {
			category = *row.Category
		}
		converted = append(converted, reports.Transaction{
			ID:          row.ID,
			AccountID:   row.AccountID,
			Type:        row.Type,
			AmountMinor: row.Amount,
			Date:        row.Date,
			Description: row.Description,
			Category:    category,
		})
	}
	return converted
}

func reportAccounts(summaries []store.AccountBalanceSummary) []reports.Account {
	converted := make([]reports.Account, 0, len(summaries))
	for _, summary := range summaries {
		converted = append(converted, reports.Account{
			ID:           summary.ID,
			Name:         summary.Name,
			BalanceMinor: summary.CalculatedBalance,
		})
	}
	return converted
}

func (h *Handler) ReportSummary(w http.ResponseWriter, r *http.Request) {
	transactions, summaries, _, _, ok := h.loadReportInput(w, r)
	if !ok {
		return
	}
	accounts := reportAccounts(summaries)
	totals := reports.ComputeTotals(transactions)
	balances := reports.AccountBalances(accounts, transactions)
	top := reports.TopAccounts(balances, 5)
	respondJSON(w, http.StatusOK, map[string]any{
		"income":            money.FormatMinor(totals.IncomeMinor),
		"expenses":          money.FormatMinor(totals.ExpensesMinor),
		"net":               money.FormatMinor(totals.NetMinor),
		"net_worth":         money.FormatMinor(reports.NetWorth(accounts)),
		"transaction_count": len(transactions),
		"accounts":          balancesJSON(balances),
		"top_accounts":      balancesJSON(top),
	})
}

func balancesJSON(balances []reports.AccountBalance) []map[string]any {
	out := make([]map[string]any, 0, len(balances))
	for _, balance := range balances {
		out = append(out, map[string]any{
			"account_id": balance.AccountID,
			"name":       balance.Name,
			"balance":    money.FormatMinor(balance.BalanceMinor),
		})
	}
	return out
}

func (h *Handler) ReportMonthly(w http.ResponseWriter, r *http.Request) {
	transactions, _, _, _, ok := h.loadReportInput(w, r)
	if !ok {
		return
	}
	totals := reports.MonthlyTotals(transactions)
	response := make([]map[string]any, 0, len(totals))
	for _, total := range totals {
		response = append(response, map[string]any{
			"month": total.Month,
			"net":   money.FormatMinor(total.NetMinor),
		})
	}
	respondJSON(w, http.StatusOK, response)
}

func (h *Handler) ReportCategories(w http.ResponseWriter, r *http.Request) {
	transactions, _, _, _, ok := h.loadReportInput(w, r)
	if !ok {
		return
	}
	totals := reports.CategoryTotals(transactions)
	response := make([]map[string]any, 0, len(totals))
	for _, total := range totals {
		response = append(response, map[string]any{
			"category": total.Category,
			"net":      money.FormatMinor(total.NetMinor),
			"share":    total.Share,
		})
	}
	respondJSON(w, http.StatusOK, response)
}

func (h *Handler) ReportExport(w http.ResponseWriter, r *http.Request) {
	transactions, summaries, from, to, ok := h.loadReportInput(w, r)
	if !ok {
		return
	}
	if len(transactions) == 0 {
		respondError(w, http.StatusNotFound, "no transactions found for the given date range")
		return
	}
	names := make(map[string]string, len(summaries))
	for _, summary := range summaries {
		names[summary.ID] = summary.Name
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+reports.ExportFilename(from, to)+`"`)
	w.WriteHeader(http.StatusOK)
	_ = reports.WriteCSV(w, transactions, names)
}
