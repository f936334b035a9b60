// Package api wires the HTTP surface of the dream journal service.
package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/lucidia/lucid-server/internal/api/recovery"
	"github.com/lucidia/lucid-server/internal/api/respond"
	"github.com/lucidia/lucid-server/internal/auth"
	"github.com/lucidia/lucid-server/internal/chat"
	"github.com/lucidia/lucid-server/internal/dreams"
	"github.com/lucidia/lucid-server/internal/enrich"
	"github.com/lucidia/lucid-server/internal/prefs"
)

// Server holds the handler dependencies.
type Server struct {
	journal  *dreams.Service
	enricher *enrich.Enricher
	chat     *chat.Service
	prefs    *prefs.Store
	verifier auth.Verifier
	healthFn func(ctx context.Context) error
	logger   zerolog.Logger
}

// NewServer constructs the HTTP server facade. healthFn reports backing-store
// health for the health endpoint.
func NewServer(journal *dreams.Service, enricher *enrich.Enricher, chatSvc *chat.Service, prefsStore *prefs.Store, verifier auth.Verifier, healthFn func(ctx context.Context) error, logger zerolog.Logger) *Server {
	return &Server{
		journal:  journal,
		enricher: enricher,
		chat:     chatSvc,
		prefs:    prefsStore,
		verifier: verifier,
		healthFn: healthFn,
		logger:   logger.With().Str("component", "api").Logger(),
	}
}

// Router builds the route table. Fixed paths are registered before the {id}
// routes so "search" and friends never parse as dream ids.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(recovery.Middleware)

	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/api/dreams/search", s.handleSearchDreams).Methods(http.MethodPost)
	r.HandleFunc("/api/dreams/search-chat", s.handleSearchChat).Methods(http.MethodPost)
	r.HandleFunc("/api/dreams/export/pdf", s.handleExportPDF).Methods(http.MethodGet)
	r.HandleFunc("/api/dreams/export/txt", s.handleExportText).Methods(http.MethodGet)
	r.HandleFunc("/api/dreams/export/json", s.handleExportJSON).Methods(http.MethodGet)

	r.HandleFunc("/api/dreams", s.handleCreateDream).Methods(http.MethodPost)
	r.HandleFunc("/api/dreams", s.handleListDreams).Methods(http.MethodGet)
	r.HandleFunc("/api/dreams/{id}", s.handleGetDream).Methods(http.MethodGet)
	r.HandleFunc("/api/dreams/{id}", s.handleUpdateDream).Methods(http.MethodPut)
	r.HandleFunc("/api/dreams/{id}", s.handleDeleteDream).Methods(http.MethodDelete)
	r.HandleFunc("/api/dreams/{id}/analysis", s.handleGetAnalysis).Methods(http.MethodGet)
	r.HandleFunc("/api/dreams/{id}/image", s.handleGetImage).Methods(http.MethodGet)

	r.HandleFunc("/api/chat", s.handleChat).Methods(http.MethodPost)

	r.HandleFunc("/api/user/image-style", s.handleSetImageStyle).Methods(http.MethodPost)
	r.HandleFunc("/api/user/image-quality", s.handleSetImageQuality).Methods(http.MethodPost)

	return r
}

// authenticate resolves the caller's email from the bearer token. On failure
// it writes a 401 and returns ok=false.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (string, bool) {
	token, err := auth.ExtractBearerToken(r)
	if err != nil {
		respond.WriteUnauthorized(w, "Invalid ID token")
		return "", false
	}
	email, err := s.verifier.Verify(r.Context(), token)
	if err != nil {
		s.logger.Debug().Err(err).Msg("token rejected")
		respond.WriteUnauthorized(w, "Invalid ID token")
		return "", false
	}
	return email, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.healthFn(r.Context()); err != nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
