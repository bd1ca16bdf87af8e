package namecodec

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Decoder reinterprets the raw bytes of a legacy (non UTF-8) filename
type Decoder interface {
	Name() string
	// Decode returns the decoded name and whether the bytes were valid
	// in this encoding
	Decode(raw []byte) (string, bool)
}

// Manager holds an ordered chain of decoders
type Manager struct {
	decoders []Decoder
}

// NewManager creates an empty decoder chain
func NewManager() *Manager {
	return &Manager{
		decoders: make([]Decoder, 0),
	}
}

// NewManagerFromNames builds a chain from encoding names, in order
func NewManagerFromNames(names []string) (*Manager, error) {
	m := NewManager()
	for _, name := range names {
		d, err := NewDecoder(name)
		if err != nil {
			return nil, err
		}
		m.Register(d)
	}
	return m, nil
}

// Register appends a decoder to the chain
func (m *Manager) Register(d Decoder) {
	m.decoders = append(m.decoders, d)
}

// Names returns the decoder names in chain order
func (m *Manager) Names() []string {
	names := make([]string, len(m.decoders))
	for i, d := range m.decoders {
		names[i] = d.Name()
	}
	return names
}

// Decode runs the chain over raw and returns the first valid result in NFC
// form. If no decoder accepts the bytes, raw is returned unchanged and ok is
// false.
func (m *Manager) Decode(raw []byte) (name string, ok bool) {
	for _, d := range m.decoders {
		if decoded, valid := d.Decode(raw); valid {
			return norm.NFC.String(decoded), true
		}
	}
	return string(raw), false
}

// String describes the chain, e.g. "cp866 -> utf-8"
func (m *Manager) String() string {
	return strings.Join(m.Names(), " -> ")
}
