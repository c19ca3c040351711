package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"

	"finsteer/internal/store"
)

func TestGetSettingsReturnsDefaultsWhenMissing(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubAccountStore{}, stubTransactionStore{}, stubSettingsStore{
		getByUserFn: func(context.Context, string) (store.Settings, error) {
			return store.Settings{}, sql.ErrNoRows
		},
	}, stubService{})

	rr := serveAs(t, handler.GetSettings, "user-1", http.MethodGet, "/settings/", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if payload["currency"] != "USD" || payload["language"] != "en" || payload["theme"] != "light" {
		t.Fatalf("unexpected defaults: %#v", payload)
	}
	if payload["notify_email"] != true || payload["notify_push"] != true {
		t.Fatalf("expected notifications on by default: %#v", payload)
	}
}

func TestGetSettingsReturnsStoredRow(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubAccountStore{}, stubTransactionStore{}, stubSettingsStore{
		getByUserFn: func(_ context.Context, userID string) (store.Settings, error) {
			return store.Settings{UserID: userID, Currency: "EUR", Language: "de", Theme: "dark", NotifyEmail: false, NotifyPush: true}, nil
		},
	}, stubService{})

	rr := serveAs(t, handler.GetSettings, "user-1", http.MethodGet, "/settings/", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if payload["currency"] != "EUR" || payload["theme"] != "dark" || payload["notify_email"] != false {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestUpdateSettingsPartialUpsert(t *testing.T) {
	var gotUpdate store.SettingsUpdate
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubAccountStore{}, stubTransactionStore{}, stubSettingsStore{
		upsertFn: func(_ context.Context, _ store.Execer, userID string, update store.SettingsUpdate) error {
			if userID != "user-1" {
				t.Fatalf("unexpected user: %q", userID)
			}
			gotUpdate = update
			return nil
		},
		getByUserFn: func(_ context.Context, userID string) (store.Settings, error) {
			return store.Settings{UserID: userID, Currency: "USD", Language: "en", Theme: "dark", NotifyEmail: true, NotifyPush: true}, nil
		},
	}, stubService{})

	body := bytes.NewReader([]byte(`{"theme":"dark"}`))
	rr := serveAs(t, handler.UpdateSettings, "user-1", http.MethodPut, "/settings/", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if gotUpdate.Theme == nil || *gotUpdate.Theme != "dark" {
		t.Fatalf("expected theme update, got %#v", gotUpdate)
	}
	if gotUpdate.Currency != nil || gotUpdate.Language != nil || gotUpdate.NotifyEmail != nil || gotUpdate.NotifyPush != nil {
		t.Fatalf("expected other fields unset, got %#v", gotUpdate)
	}
}

func TestUpdateSettingsRejectsUnknownCurrency(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubAccountStore{}, stubTransactionStore{}, stubSettingsStore{
		upsertFn: func(context.Context, store.Execer, string, store.SettingsUpdate) error {
			t.Fatal("upsert should not run")
			return nil
		},
	}, stubService{})

	body := bytes.NewReader([]byte(`{"currency":"XXX"}`))
	rr := serveAs(t, handler.UpdateSettings, "user-1", http.MethodPut, "/settings/", body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}
