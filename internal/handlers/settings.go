package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"finsteer/internal/middleware"
	"finsteer/internal/store"
	"finsteer/internal/validator"
	"finsteer/internal/websocket"

	"github.com/jmoiron/sqlx"
)

func defaultSettings(userID string) store.Settings {
	return store.Settings{
		UserID:      userID,
		Currency:    "USD",
		Language:    "en",
		Theme:       "light",
		NotifyEmail: true,
		NotifyPush:  true,
	}
}

// GetSettings never 404s: users without a stored row get the defaults
// the upsert would materialize.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	settings, err := h.settings.GetByUser(r.Context(), userID)
	if err != nil {
		if err == sql.ErrNoRows {
			respondJSON(w, http.StatusOK, settingsJSON(defaultSettings(userID)))
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load settings")
		return
	}
	respondJSON(w, http.StatusOK, settingsJSON(settings))
}

type updateSettingsRequest struct {
	Currency    *string `json:"currency"`
	Language    *string `json:"language"`
	Theme       *string `json:"theme"`
	NotifyEmail *bool   `json:"notify_email"`
	NotifyPush  *bool   `json:"notify_push"`
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Currency != nil {
		if err := validator.ValidateCurrency(*req.Currency); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	update := store.SettingsUpdate{
		Currency:    req.Currency,
		Language:    req.Language,
		Theme:       req.Theme,
		NotifyEmail: req.NotifyEmail,
		NotifyPush:  req.NotifyPush,
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.settings.Upsert(r.Context(), tx, userID, update)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update settings")
		return
	}
	settings, err := h.settings.GetByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load settings")
		return
	}
	payload, _ := json.Marshal(settingsJSON(settings))
	h.hub.BroadcastUpdate(userID, websocket.EntityUpdate{
		Resource: "settings",
		Action:   websocket.ActionUpdated,
		ID:       userID,
		Data:     payload,
	})
	respondJSON(w, http.StatusOK, settingsJSON(settings))
}
