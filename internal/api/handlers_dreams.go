package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lucidia/lucid-server/internal/api/respond"
	"github.com/lucidia/lucid-server/internal/auth"
)

type createDreamRequest struct {
	Title string `json:"title"`
	Date  string `json:"date"`
	Entry string `json:"entry"`
	// Legacy clients send the identity token in the body instead of the
	// Authorization header.
	IDToken string `json:"id_token"`
}

func (s *Server) handleCreateDream(w http.ResponseWriter, r *http.Request) {
	var req createDreamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid request body")
		return
	}

	token, err := auth.ExtractBearerToken(r)
	if err != nil {
		token = req.IDToken
	}
	email, err := s.verifier.Verify(r.Context(), token)
	if err != nil {
		respond.WriteUnauthorized(w, "Invalid ID token")
		return
	}

	dream, err := s.journal.Create(r.Context(), req.Title, req.Date, req.Entry, email)
	if err != nil {
		s.logger.Error().Err(err).Msg("dream creation failed")
		respond.WriteInternalError(w, "Dream creation failed")
		return
	}
	respond.WriteJSON(w, http.StatusOK, dream)
}

func (s *Server) handleListDreams(w http.ResponseWriter, r *http.Request) {
	email, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	list, err := s.journal.ListByOwner(r.Context(), email)
	if err != nil {
		s.logger.Error().Err(err).Msg("list dreams failed")
		respond.WriteInternalError(w, "Internal server error")
		return
	}
	respond.WriteJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetDream(w http.ResponseWriter, r *http.Request) {
	email, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	dream, err := s.journal.Get(r.Context(), id)
	if err != nil || dream.OwnerEmail != email {
		respond.WriteNotFound(w, fmt.Sprintf("Dream with id %s not found.", id))
		return
	}
	respond.WriteJSON(w, http.StatusOK, dream)
}

type updateDreamRequest struct {
	Analysis interface{} `json:"analysis"`
	Image    interface{} `json:"image"`
}

func (s *Server) handleUpdateDream(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req updateDreamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid request body")
		return
	}
	dream, err := s.enricher.UpdateEnrichment(r.Context(), id, req.Analysis, req.Image)
	if err != nil {
		s.logger.Error().Err(err).Str("dreamId", id).Msg("dream update failed")
		respond.WriteInternalError(w, "Dream update failed")
		return
	}
	respond.WriteJSON(w, http.StatusOK, dream)
}

func (s *Server) handleDeleteDream(w http.ResponseWriter, r *http.Request) {
	email, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	dream, err := s.journal.Get(r.Context(), id)
	if err != nil || dream.OwnerEmail != email {
		respond.WriteUnauthorized(w, "Unauthorized access.")
		return
	}
	if !s.journal.Delete(r.Context(), id) {
		respond.WriteInternalError(w, fmt.Sprintf("Failed to delete dream with id %s.", id))
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Dream with id %s successfully deleted.", id),
	})
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	email, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	dream, err := s.journal.Get(r.Context(), id)
	if err != nil || dream.OwnerEmail != email {
		respond.WriteUnauthorized(w, "Unauthorized access.")
		return
	}
	analysis, err := s.enricher.EnsureAnalysis(r.Context(), id)
	if err != nil {
		s.logger.Error().Err(err).Str("dreamId", id).Msg("analysis generation failed")
		respond.WriteInternalError(w, "Unable to generate analysis")
		return
	}
	respond.WriteJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	email, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	dream, err := s.journal.Get(r.Context(), id)
	if err != nil || dream.OwnerEmail != email {
		respond.WriteNotFound(w, fmt.Sprintf("Dream with id %s not found.", id))
		return
	}
	p, err := s.prefs.Get(r.Context(), email)
	if err != nil {
		s.logger.Error().Err(err).Msg("load image preferences failed")
		respond.WriteInternalError(w, "Internal server error")
		return
	}
	url, err := s.enricher.EnsureImage(r.Context(), id, p.Style, p.Quality)
	if err != nil {
		s.logger.Error().Err(err).Str("dreamId", id).Msg("image generation failed")
		respond.WriteInternalError(w, "Unable to generate image")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"image": url})
}

type searchDreamsRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleSearchDreams(w http.ResponseWriter, r *http.Request) {
	email, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req searchDreamsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid request body")
		return
	}
	results, err := s.journal.Search(r.Context(), email, req.Query)
	if err != nil {
		s.logger.Error().Err(err).Msg("dream search failed")
		respond.WriteInternalError(w, "Internal server error")
		return
	}
	respond.WriteJSON(w, http.StatusOK, results)
}
