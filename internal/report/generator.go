package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/x-dv7/p01-lesson05/internal/config"
	"github.com/x-dv7/p01-lesson05/internal/filesystem"
	"github.com/x-dv7/p01-lesson05/pkg/models"
	"go.uber.org/zap"
)

// ErrUnsupportedFormat is returned for report paths with an unknown extension
var ErrUnsupportedFormat = errors.New("unsupported report format")

// Emitter serializes the entry list into one file format
type Emitter interface {
	// Format returns the format tag, which is also the file extension
	Format() string
	// Emit writes the complete document for entries to w
	Emit(w io.Writer, entries []models.Entry) error
}

// Generator picks an emitter from the report path and writes the report
type Generator struct {
	config   *config.Config
	logger   *zap.Logger
	registry *Registry
	emitters map[string]Emitter
}

// NewGenerator creates a report generator with all built-in emitters
func NewGenerator(cfg *config.Config, logger *zap.Logger) (*Generator, error) {
	g := &Generator{
		config:   cfg,
		logger:   logger,
		registry: NewRegistry(),
		emitters: make(map[string]Emitter),
	}

	g.Register(NewJSONEmitter(), nil)
	g.Register(NewCSVEmitter(), nil)
	g.Register(NewXLSXEmitter(cfg.Report.SheetName), nil)
	g.Register(NewDOCXEmitter(cfg.Report.Title), nil)

	pdf := NewPDFEmitter(cfg.Report.Title, cfg.Report.PDFFont)
	g.Register(pdf, pdf.Probe)

	for _, format := range g.registry.Formats() {
		c, _ := g.registry.Lookup(format)
		if !c.Available {
			logger.Warn("Report format unavailable",
				zap.String("format", format),
				zap.String("reason", c.Reason))
		}
	}

	return g, nil
}

// Register adds an emitter and records its capability
func (g *Generator) Register(e Emitter, probe func() error) {
	g.emitters[e.Format()] = e
	g.registry.Register(e.Format(), probe)
}

// Registry returns the capability registry
func (g *Generator) Registry() *Registry {
	return g.registry
}

// Supported returns the supported format tags, sorted
func (g *Generator) Supported() []string {
	return g.registry.Formats()
}

// FormatFromPath returns the lowercased extension of path without the dot
func FormatFromPath(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Check resolves the emitter for outputPath and verifies it can run
func (g *Generator) Check(outputPath string) (Emitter, error) {
	format := FormatFromPath(outputPath)
	emitter, ok := g.emitters[format]
	if !ok {
		return nil, fmt.Errorf("%w '%s' (supported: %s)", ErrUnsupportedFormat, format, strings.Join(g.Supported(), ", "))
	}
	if err := g.registry.Require(format); err != nil {
		return nil, err
	}
	return emitter, nil
}

// Generate writes the report for results to outputPath and returns its
// absolute path. The file only appears once it is complete.
func (g *Generator) Generate(results *models.ScanResults, outputPath string) (string, error) {
	emitter, err := g.Check(outputPath)
	if err != nil {
		return "", err
	}

	g.logger.Info("Generating report",
		zap.String("format", emitter.Format()),
		zap.String("output", outputPath),
		zap.Int("entries", len(results.Entries)))

	err = filesystem.WriteFileAtomic(outputPath, func(w io.Writer) error {
		return emitter.Emit(w, results.Entries)
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate %s report: %w", emitter.Format(), err)
	}

	// Get absolute path
	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return outputPath, nil
	}
	return absPath, nil
}

// fileExists is used by capability probes
func fileExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}
