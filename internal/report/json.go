package report

import (
	"encoding/json"
	"io"

	"github.com/x-dv7/p01-lesson05/pkg/models"
)

// JSONEmitter writes entries as an indented JSON array with typed fields
type JSONEmitter struct{}

// NewJSONEmitter creates a JSON emitter
func NewJSONEmitter() *JSONEmitter {
	return &JSONEmitter{}
}

// Format returns "json"
func (e *JSONEmitter) Format() string {
	return "json"
}

// Emit writes the JSON document
func (e *JSONEmitter) Emit(w io.Writer, entries []models.Entry) error {
	if entries == nil {
		entries = []models.Entry{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(entries)
}

// ReadJSON parses a report written by JSONEmitter
func ReadJSON(r io.Reader) ([]models.Entry, error) {
	var entries []models.Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, err
	}
	return entries, nil
}
