package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"finsteer/internal/money"
	"finsteer/internal/store"
	"finsteer/internal/validator"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func userJSON(user store.User) map[string]any {
	return map[string]any{
		"id":         user.ID,
		"email":      user.Email,
		"name":       user.Name,
		"created_at": user.CreatedAt,
	}
}

func accountJSON(account store.Account) map[string]any {
	return map[string]any{
		"id":         account.ID,
		"user_id":    account.UserID,
		"name":       account.Name,
		"type":       account.Type,
		"balance":    money.FormatMinor(account.Balance),
		"currency":   account.Currency,
		"created_at": account.CreatedAt,
	}
}

func accountSummaryJSON(summary store.AccountBalanceSummary) map[string]any {
	return map[string]any{
		"id":             summary.ID,
		"user_id":        summary.UserID,
		"name":           summary.Name,
		"type":           summary.Type,
		"balance":        money.FormatMinor(summary.CalculatedBalance),
		"stored_balance": money.FormatMinor(summary.StoredBalance),
		"currency":       summary.Currency,
		"created_at":     summary.CreatedAt,
	}
}

func transactionJSON(tx store.Transaction) map[string]any {
	category := ""
	if tx.Category != nil {
		category = *tx.Category
	}
	return map[string]any{
		"id":          tx.ID,
		"user_id":     tx.UserID,
		"account_id":  tx.AccountID,
		"type":        tx.Type,
		"amount":      money.FormatMinor(tx.Amount),
		"date":        tx.Date.Format(validator.DateLayout),
		"description": tx.Description,
		"category":    category,
		"created_at":  tx.CreatedAt,
	}
}

func settingsJSON(settings store.Settings) map[string]any {
	return map[string]any{
		"user_id":      settings.UserID,
		"currency":     settings.Currency,
		"language":     settings.Language,
		"theme":        settings.Theme,
		"notify_email": settings.NotifyEmail,
		"notify_push":  settings.NotifyPush,
		"updated_at":   settings.UpdatedAt,
	}
}

// parseDateRange reads optional start_date/end_date query parameters.
func parseDateRange(r *http.Request) (*time.Time, *time.Time, error) {
	query := r.URL.Query()
	var start, end *time.Time
	if raw := query.Get("start_date"); raw != "" {
		parsed, err := validator.ValidateDate(raw)
		if err != nil {
			return nil, nil, err
		}
		start = &parsed
	}
	if raw := query.Get("end_date"); raw != "" {
		parsed, err := validator.ValidateDate(raw)
		if err != nil {
			return nil, nil, err
		}
		end = &parsed
	}
	return start, end, nil
}
