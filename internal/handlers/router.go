package handlers

import (
	"net/http"

	"finsteer/internal/config"
	"finsteer/internal/db"
	"finsteer/internal/middleware"
	"finsteer/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	txRunner     db.TxRunner
	cfg          config.Config
	users        UserStore
	accounts     AccountStore
	transactions TransactionStore
	settings     SettingsStore
	service      TransactionService
	hub          *websocket.Hub
}

func New(txRunner db.TxRunner, cfg config.Config, users UserStore, accounts AccountStore, transactions TransactionStore, settings SettingsStore, service TransactionService, hub *websocket.Hub) *Handler {
	return &Handler{
		txRunner:     txRunner,
		cfg:          cfg,
		users:        users,
		accounts:     accounts,
		transactions: transactions,
		settings:     settings,
		service:      service,
		hub:          hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	authed := middleware.Auth(h.cfg.JWTSecret)
	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(authed).Post("/logout", h.Logout)
		r.With(authed).Get("/me", h.Me)
	})
	router.Route("/accounts", func(r chi.Router) {
		r.Use(authed)
		r.Get("/", h.ListAccounts)
		r.Post("/", h.CreateAccount)
		r.Get("/self-check", h.SelfCheck)
		r.Get("/{id}", h.GetAccount)
		r.Put("/{id}", h.UpdateAccount)
		r.Delete("/{id}", h.DeleteAccount)
	})
	router.Route("/transactions", func(r chi.Router) {
		r.Use(authed)
		r.Get("/", h.ListTransactions)
		r.Post("/", h.CreateTransaction)
		r.Put("/{id}", h.UpdateTransaction)
		r.Delete("/{id}", h.DeleteTransaction)
	})
	router.Route("/reports", func(r chi.Router) {
		r.Use(authed)
		r.Get("/summary", h.ReportSummary)
		r.Get("/monthly", h.ReportMonthly)
		r.Get("/categories", h.ReportCategories)
		r.Get("/export", h.ReportExport)
	})
	router.Route("/settings", func(r chi.Router) {
		r.Use(authed)
		r.Get("/", h.GetSettings)
		r.Put("/", h.UpdateSettings)
	})
	router.Get("/ws/updates", h.WSUpdates)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
