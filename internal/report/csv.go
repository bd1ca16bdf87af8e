package report

import (
	"encoding/csv"
	"io"

	"github.com/x-dv7/p01-lesson05/pkg/models"
)

// CSVEmitter writes a header row and one text row per entry
type CSVEmitter struct{}

// NewCSVEmitter creates a CSV emitter
func NewCSVEmitter() *CSVEmitter {
	return &CSVEmitter{}
}

// Format returns "csv"
func (e *CSVEmitter) Format() string {
	return "csv"
}

// Emit writes the CSV document
func (e *CSVEmitter) Emit(w io.Writer, entries []models.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.Headers); err != nil {
		return err
	}
	for _, entry := range entries {
		if err := cw.Write(entry.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
