package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lucidia/lucid-server/internal/api/respond"
	"github.com/lucidia/lucid-server/internal/prefs"
)

func (s *Server) handleSetImageStyle(w http.ResponseWriter, r *http.Request) {
	email, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req struct {
		Style string `json:"style"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := s.prefs.SetStyle(r.Context(), email, req.Style); err != nil {
		if errors.Is(err, prefs.ErrInvalidPreference) {
			respond.WriteBadRequest(w, "Invalid image style value")
			return
		}
		s.logger.Error().Err(err).Msg("store image style failed")
		respond.WriteInternalError(w, "Internal server error")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Image style updated!",
	})
}

func (s *Server) handleSetImageQuality(w http.ResponseWriter, r *http.Request) {
	email, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req struct {
		Quality string `json:"quality"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := s.prefs.SetQuality(r.Context(), email, req.Quality); err != nil {
		if errors.Is(err, prefs.ErrInvalidPreference) {
			respond.WriteBadRequest(w, "Invalid image quality value")
			return
		}
		s.logger.Error().Err(err).Msg("store image quality failed")
		respond.WriteInternalError(w, "Internal server error")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Image quality preference updated successfully.",
	})
}
