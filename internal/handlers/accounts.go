package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"finsteer/internal/middleware"
	"finsteer/internal/money"
	"finsteer/internal/store"
	"finsteer/internal/validator"
	"finsteer/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	accounts, err := h.accounts.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load accounts")
		return
	}
	normalized := make([]map[string]any, 0, len(accounts))
	for _, account := range accounts {
		normalized = append(normalized, accountSummaryJSON(account))
	}
	respondJSON(w, http.StatusOK, normalized)
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	accountID := chi.URLParam(r, "id")
	account, err := h.accounts.GetForOwner(r.Context(), accountID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "account not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load account")
		return
	}
	respondJSON(w, http.StatusOK, accountJSON(account))
}

type createAccountRequest struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Balance  *string `json:"balance"`
	Currency *string `json:"currency"`
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateAccountName(req.Name); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.ValidateAccountType(req.Type); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var balanceMinor int64
	if req.Balance != nil {
		parsed, err := money.ParseMinor(*req.Balance)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid balance")
			return
		}
		balanceMinor = parsed
	}
	currency := "USD"
	if req.Currency != nil {
		if err := validator.ValidateCurrency(*req.Currency); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		currency = *req.Currency
	}
	// A non-zero opening balance is materialized as an initial
	// transaction in the same database transaction, so the stored
	// balance and the transaction-derived balance agree from the start.
	accountID := uuid.NewString()
	var opening store.TransactionInput
	hasOpening := balanceMinor != 0
	if hasOpening {
		openingType := "income"
		amount := balanceMinor
		if balanceMinor < 0 {
			openingType = "expense"
			amount = -balanceMinor
		}
		opening = store.TransactionInput{
			ID:          uuid.NewString(),
			UserID:      userID,
			AccountID:   accountID,
			Type:        openingType,
			Amount:      amount,
			Date:        time.Now().UTC().Truncate(24 * time.Hour),
			Description: "Opening balance",
		}
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.accounts.Create(r.Context(), tx, accountID, userID, req.Name, req.Type, balanceMinor, currency); err != nil {
			return err
		}
		if hasOpening {
			return h.transactions.Create(r.Context(), tx, opening)
		}
		return nil
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create account")
		return
	}
	account, err := h.accounts.GetForOwner(r.Context(), accountID, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load account")
		return
	}
	h.broadcastAccount(userID, websocket.ActionCreated, account)
	if hasOpening {
		h.broadcastTransaction(userID, websocket.ActionCreated, store.Transaction{
			ID:          opening.ID,
			UserID:      opening.UserID,
			AccountID:   opening.AccountID,
			Type:        opening.Type,
			Amount:      opening.Amount,
			Date:        opening.Date,
			Description: opening.Description,
		})
	}
	respondJSON(w, http.StatusCreated, accountJSON(account))
}

// updateAccountRequest has no balance field on purpose: the balance
// column only moves with transaction writes.
type updateAccountRequest struct {
	Name     *string `json:"name"`
	Type     *string `json:"type"`
	Currency *string `json:"currency"`
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	accountID := chi.URLParam(r, "id")
	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	update := store.AccountUpdate{}
	if req.Name != nil {
		if err := validator.ValidateAccountName(*req.Name); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		update.Name = req.Name
	}
	if req.Type != nil {
		if err := validator.ValidateAccountType(*req.Type); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		update.Type = req.Type
	}
	if req.Currency != nil {
		if err := validator.ValidateCurrency(*req.Currency); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		update.Currency = req.Currency
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		rows, err := h.accounts.Update(r.Context(), tx, accountID, userID, update)
		if err != nil {
			return err
		}
		if rows == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
	if err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "account not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to update account")
		return
	}
	account, err := h.accounts.GetForOwner(r.Context(), accountID, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load account")
		return
	}
	h.broadcastAccount(userID, websocket.ActionUpdated, account)
	respondJSON(w, http.StatusOK, accountJSON(account))
}

// DeleteAccount refuses to orphan history: accounts still referenced by
// transactions cannot be removed.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	accountID := chi.URLParam(r, "id")
	if _, err := h.accounts.GetForOwner(r.Context(), accountID, userID); err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "account not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load account")
		return
	}
	count, err := h.accounts.CountTransactions(r.Context(), accountID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete account")
		return
	}
	if count > 0 {
		respondError(w, http.StatusConflict, "account_has_transactions")
		return
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		rows, err := h.accounts.Delete(r.Context(), tx, accountID, userID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
	if err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "account not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to delete account")
		return
	}
	h.hub.BroadcastUpdate(userID, websocket.EntityUpdate{
		Resource: "accounts",
		Action:   websocket.ActionDeleted,
		ID:       accountID,
	})
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// SelfCheck reports stored vs derived balance drift per account. The
// two should never differ after a committed write.
func (h *Handler) SelfCheck(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	accounts, err := h.accounts.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to self_check")
		return
	}
	response := make([]map[string]any, 0, len(accounts))
	for _, account := range accounts {
		response = append(response, map[string]any{
			"account_id":         account.ID,
			"name":               account.Name,
			"currency":           account.Currency,
			"stored_balance":     money.FormatMinor(account.StoredBalance),
			"calculated_balance": money.FormatMinor(account.CalculatedBalance),
			"difference":         money.FormatMinor(account.Difference),
		})
	}
	respondJSON(w, http.StatusOK, response)
}

func (h *Handler) broadcastAccount(userID, action string, account store.Account) {
	payload, _ := json.Marshal(accountJSON(account))
	h.hub.BroadcastUpdate(userID, websocket.EntityUpdate{
		Resource: "accounts",
		Action:   action,
		ID:       account.ID,
		Data:     payload,
	})
}

func (h *Handler) broadcastTransaction(userID, action string, tx store.Transaction) {
	payload, _ := json.Marshal(transactionJSON(tx))
	h.hub.BroadcastUpdate(userID, websocket.EntityUpdate{
		Resource: "transactions",
		Action:   action,
		ID:       tx.ID,
		Data:     payload,
	})
}
