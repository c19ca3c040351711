package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"finsteer/internal/middleware"
	"finsteer/internal/money"
	"finsteer/internal/services"
	"finsteer/internal/store"
	"finsteer/internal/validator"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	start, end, err := parseDateRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter := store.TransactionFilter{
		AccountID: r.URL.Query().Get("account_id"),
		StartDate: start,
		EndDate:   end,
	}
	transactions, err := h.transactions.ListByUser(r.Context(), userID, filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load transactions")
		return
	}
	normalized := make([]map[string]any, 0, len(transactions))
	for _, tx := range transactions {
		normalized = append(normalized, transactionJSON(tx))
	}
	respondJSON(w, http.StatusOK, normalized)
}

type transactionRequest struct {
	AccountID   string  `json:"account_id"`
	Type        string  `json:"type"`
	Amount      string  `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Category    *string `json:"category"`
}

// decodeTransactionRequest validates the shared create/update payload.
// On failure it writes the error response and reports false.
func decodeTransactionRequest(w http.ResponseWriter, r *http.Request) (transactionRequest, int64, time.Time, bool) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return transactionRequest{}, 0, time.Time{}, false
	}
	if req.AccountID == "" {
		respondError(w, http.StatusBadRequest, "account_id is required")
		return transactionRequest{}, 0, time.Time{}, false
	}
	if err := validator.ValidateTransactionType(req.Type); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return transactionRequest{}, 0, time.Time{}, false
	}
	if err := validator.ValidateAmount(req.Amount); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return transactionRequest{}, 0, time.Time{}, false
	}
	amountMinor, err := money.ParseMinor(req.Amount)
	if err != nil || amountMinor <= 0 {
		respondError(w, http.StatusBadRequest, validator.ErrInvalidAmount.Error())
		return transactionRequest{}, 0, time.Time{}, false
	}
	date, err := validator.ValidateDate(req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return transactionRequest{}, 0, time.Time{}, false
	}
	if err := validator.ValidateDescription(req.Description); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return transactionRequest{}, 0, time.Time{}, false
	}
	return req, amountMinor, date, true
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	req, amountMinor, date, ok := decodeTransactionRequest(w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), services.CreateRequest{
		UserID:      userID,
		AccountID:   req.AccountID,
		Type:        req.Type,
		AmountMinor: amountMinor,
		Date:        date,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, transactionJSON(created))
}

func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	transactionID := chi.URLParam(r, "id")
	req, amountMinor, date, ok := decodeTransactionRequest(w, r)
	if !ok {
		return
	}
	updated, err := h.service.Update(r.Context(), services.UpdateRequest{
		ID:          transactionID,
		UserID:      userID,
		AccountID:   req.AccountID,
		Type:        req.Type,
		AmountMinor: amountMinor,
		Date:        date,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, transactionJSON(updated))
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	transactionID := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), transactionID, userID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch err {
	case services.ErrNotFound:
		respondError(w, http.StatusNotFound, "transaction not found")
	case services.ErrAccountNotOwned:
		respondError(w, http.StatusNotFound, "account not found")
	case services.ErrInvalidAmount:
		respondError(w, http.StatusBadRequest, validator.ErrInvalidAmount.Error())
	case services.ErrInvalidType:
		respondError(w, http.StatusBadRequest, validator.ErrInvalidTxType.Error())
	default:
		respondError(w, http.StatusInternalServerError, "transaction failed")
	}
}
