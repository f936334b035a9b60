// Package export renders a user's dream journal to portable formats.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/lucidia/lucid-server/internal/model"
)

// WriteJSON writes the journal as an indented JSON array.
func WriteJSON(w io.Writer, dreams []model.Dream) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(dreams)
}

// WriteText writes the journal as plain text, one block per dream.
func WriteText(w io.Writer, dreams []model.Dream) error {
	for i, d := range dreams {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s (%s)\n%s\n", d.Title, d.Date, d.Entry); err != nil {
			return err
		}
		if d.Analysis != "" {
			if _, err := fmt.Fprintf(w, "Analysis: %s\n", d.Analysis); err != nil {
				return err
			}
		}
	}
	return nil
}

// WritePDF renders the journal as a PDF document, one section per dream.
func WritePDF(w io.Writer, dreams []model.Dream) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Dream Journal", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Dream Journal", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for _, d := range dreams {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.MultiCell(0, 7, d.Title, "", "L", false)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 5, d.Date, "", "L", false)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, d.Entry, "", "L", false)
		if d.Analysis != "" {
			pdf.SetFont("Helvetica", "I", 10)
			pdf.MultiCell(0, 5, "Analysis: "+d.Analysis, "", "L", false)
		}
		pdf.Ln(6)
	}
	return pdf.Output(w)
}
