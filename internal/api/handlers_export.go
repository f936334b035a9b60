package api

import (
	"bytes"
	"net/http"

	"github.com/lucidia/lucid-server/internal/api/respond"
	"github.com/lucidia/lucid-server/internal/export"
	"github.com/lucidia/lucid-server/internal/model"
)

// exportJournal renders the caller's journal into buf. Rendering happens
// before any header is written so failures can still return a JSON error.
func (s *Server) exportJournal(w http.ResponseWriter, r *http.Request, render func(buf *bytes.Buffer, list []model.Dream) error, contentType, filename string) {
	email, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	list, err := s.journal.ListByOwner(r.Context(), email)
	if err != nil {
		s.logger.Error().Err(err).Msg("export: list dreams failed")
		respond.WriteInternalError(w, "Internal server error")
		return
	}
	var buf bytes.Buffer
	if err := render(&buf, list); err != nil {
		s.logger.Error().Err(err).Msg("export: render failed")
		respond.WriteInternalError(w, "Export failed")
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	s.exportJournal(w, r, func(buf *bytes.Buffer, list []model.Dream) error {
		return export.WritePDF(buf, list)
	}, "application/pdf", "dreams.pdf")
}

func (s *Server) handleExportText(w http.ResponseWriter, r *http.Request) {
	s.exportJournal(w, r, func(buf *bytes.Buffer, list []model.Dream) error {
		return export.WriteText(buf, list)
	}, "text/plain; charset=utf-8", "dreams.txt")
}

func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	s.exportJournal(w, r, func(buf *bytes.Buffer, list []model.Dream) error {
		return export.WriteJSON(buf, list)
	}, "application/json", "dreams.json")
}
