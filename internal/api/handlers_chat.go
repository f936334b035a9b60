package api

import (
	"encoding/json"
	"net/http"

	"github.com/lucidia/lucid-server/internal/api/respond"
)

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	email, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid request body")
		return
	}
	reply, err := s.chat.Chat(r.Context(), email, req.Message)
	if err != nil {
		s.logger.Error().Err(err).Msg("chat failed")
		respond.WriteInternalError(w, "Unable to generate a response.")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"response": reply})
}

type searchChatRequest struct {
	FunctionName string `json:"function_name"`
	Prompt       string `json:"prompt"`
}

func (s *Server) handleSearchChat(w http.ResponseWriter, r *http.Request) {
	email, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req searchChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid request body")
		return
	}
	result, err := s.chat.SearchChat(r.Context(), email, req.FunctionName, req.Prompt)
	if err != nil {
		s.logger.Error().Err(err).Msg("search chat failed")
		respond.WriteInternalError(w, "Unable to generate a response.")
		return
	}
	respond.WriteJSON(w, http.StatusOK, result)
}
