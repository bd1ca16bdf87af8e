package report

import (
	"errors"
	"fmt"
	"sort"
)

// ErrMissingCapability is returned when an emitter is used while unavailable
var ErrMissingCapability = errors.New("missing capability")

// Capability describes whether a report format can be produced
type Capability struct {
	Format    string
	Available bool
	Reason    string // why the format is unavailable
}

// Registry maps format tags to their availability, probed once at startup
type Registry struct {
	caps map[string]Capability
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{caps: make(map[string]Capability)}
}

// Register records a format; probe may be nil for formats with no
// prerequisites, otherwise its error marks the format unavailable
func (r *Registry) Register(format string, probe func() error) {
	c := Capability{Format: format, Available: true}
	if probe != nil {
		if err := probe(); err != nil {
			c.Available = false
			c.Reason = err.Error()
		}
	}
	r.caps[format] = c
}

// Lookup returns the capability recorded for format
func (r *Registry) Lookup(format string) (Capability, bool) {
	c, ok := r.caps[format]
	return c, ok
}

// Require returns an ErrMissingCapability error unless format is available
func (r *Registry) Require(format string) error {
	c, ok := r.caps[format]
	if !ok {
		return fmt.Errorf("%w: %s is not registered", ErrMissingCapability, format)
	}
	if !c.Available {
		return fmt.Errorf("%w: %s: %s", ErrMissingCapability, format, c.Reason)
	}
	return nil
}

// Formats returns all registered format tags, sorted
func (r *Registry) Formats() []string {
	formats := make([]string, 0, len(r.caps))
	for format := range r.caps {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}
