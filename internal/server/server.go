package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"reviewdeck-backend/internal/config"
	"reviewdeck-backend/internal/gitlab"
	"reviewdeck-backend/internal/notify"
)

// Server is the HTTP surface of the backend. It owns no provider state;
// everything flows through the adapter.
type Server struct {
	cfg      config.Config
	logger   *slog.Logger
	adapter  *gitlab.Adapter
	notifier *notify.Notifier
	queries  []config.SavedQuery
}

func New(cfg config.Config, adapter *gitlab.Adapter, notifier *notify.Notifier, queries []config.SavedQuery, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:      cfg,
		logger:   logger,
		adapter:  adapter,
		notifier: notifier,
		queries:  queries,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/queries", s.handleQueries)
	r.Get("/api/events", s.handleEvents)
	r.Post("/api/reconnect", s.handleReconnect)

	r.Route("/api/pulls", func(r chi.Router) {
		r.Get("/", s.handleSearch)
		r.Post("/detail", s.handleDetail)
		r.Post("/reviewers", s.handleReviewers)
		r.Post("/commits", s.handleCommits)
		r.Post("/changes", s.handleChanges)

		r.Post("/comments", s.handleCreateComment)
		r.Post("/comments/reply", s.handleReplyComment)
		r.Post("/comments/delete", s.handleDeleteComment)

		r.Post("/review/stage", s.handleStageComment)
		r.Post("/review/pending", s.handlePendingReview)
		r.Post("/review/submit", s.handleSubmitReview)
		r.Post("/review/discard", s.handleDiscardReview)

		r.Post("/lock", s.handleSetLocked)
		r.Post("/approve", s.handleApprove)
		r.Post("/unapprove", s.handleUnapprove)
		r.Post("/labels", s.handleSetLabels)
		r.Post("/milestone", s.handleSetMilestone)
		r.Post("/draft", s.handleSetDraft)
		r.Post("/merge", s.handleMerge)
	})

	r.Get("/api/file-comments", s.handleFileComments)

	r.Route("/api/boards", func(r chi.Router) {
		r.Get("/", s.handleBoards)
		r.Get("/cards", s.handleCards)
		r.Post("/cards", s.handleCreateCard)
	})

	return r
}

func (s *Server) Start() error {
	addr := ":" + s.cfg.Port
	s.logger.Info("listening", "addr", addr)
	return http.ListenAndServe(addr, s.Router())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleQueries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.queries)
}

// handleReconnect resets the adapter's process-lifetime caches after the
// stored credential or base URL changed.
func (s *Server) handleReconnect(w http.ResponseWriter, r *http.Request) {
	s.adapter.Reconnect()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reconnected"})
}
