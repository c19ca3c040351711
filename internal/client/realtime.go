package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

// Realtime owns a single websocket subscription to /ws/updates and
// applies pushed entity changes to the store. The caller controls the
// lifecycle through Open and Close; there is no implicit reconnect.
type Realtime struct {
	store *Store

	mu   sync.Mutex
	conn *websocket.Conn
	done chan struct{}
}

func NewRealtime(store *Store) *Realtime {
	return &Realtime{store: store}
}

var ErrAlreadyOpen = errors.New("realtime connection already open")

// Open dials wsURL (ws:// or wss:// base of the API) with the given
// token and starts applying updates until the connection drops or
// Close is called.
func (rt *Realtime) Open(ctx context.Context, wsURL, token string) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.conn != nil {
		return ErrAlreadyOpen
	}
	endpoint, err := url.Parse(wsURL)
	if err != nil {
		return err
	}
	endpoint.Path = "/ws/updates"
	endpoint.RawQuery = url.Values{"token": {token}}.Encode()
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint.String(), nil)
	if err != nil {
		return err
	}
	rt.conn = conn
	rt.done = make(chan struct{})
	go rt.readLoop(conn, rt.done)
	return nil
}

func (rt *Realtime) Close() error {
	rt.mu.Lock()
	conn := rt.conn
	done := rt.done
	rt.conn = nil
	rt.done = nil
	rt.mu.Unlock()
	if conn == nil {
		return nil
	}
	err := conn.Close()
	<-done
	return err
}

type pushUpdate struct {
	Resource string          `json:"resource"`
	Action   string          `json:"action"`
	ID       string          `json:"id"`
	Data     json.RawMessage `json:"data"`
}

func (rt *Realtime) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var update pushUpdate
		if err := json.Unmarshal(payload, &update); err != nil {
			continue
		}
		rt.store.applyUpdate(update)
	}
}

// applyUpdate reconciles a pushed change. Pushes are last-writer-wins
// against concurrent fetches; both carry server-canonical entities, so
// order does not affect correctness.
func (s *Store) applyUpdate(update pushUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch update.Resource {
	case "accounts":
		if update.Action == "deleted" {
			s.removeAccountLocked(update.ID)
			return
		}
		var account Account
		if err := json.Unmarshal(update.Data, &account); err != nil {
			return
		}
		if account.ID == "" {
			account.ID = update.ID
		}
		s.upsertAccountLocked(account)
	case "transactions":
		if update.Action == "deleted" {
			s.removeTransactionLocked(update.ID)
			return
		}
		var tx Transaction
		if err := json.Unmarshal(update.Data, &tx); err != nil {
			return
		}
		if tx.ID == "" {
			tx.ID = update.ID
		}
		s.upsertTransactionLocked(tx)
	case "settings":
		var settings Settings
		if err := json.Unmarshal(update.Data, &settings); err != nil {
			return
		}
		s.settings = settings
	}
}
