package core

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/x-dv7/p01-lesson05/internal/archive"
	"github.com/x-dv7/p01-lesson05/internal/config"
	"github.com/x-dv7/p01-lesson05/internal/filesystem"
	"github.com/x-dv7/p01-lesson05/internal/namecodec"
	"github.com/x-dv7/p01-lesson05/pkg/models"
	"go.uber.org/zap"
)

var (
	// ErrPathNotFound is returned when the scan root does not exist
	ErrPathNotFound = errors.New("path not found")
	// ErrPathNotADirectory is returned when the scan root is not a directory
	ErrPathNotADirectory = errors.New("path is not a directory")
)

// ProgressCallback is called after each scan level is listed
type ProgressCallback func(level string, entries int)

// Scanner builds the ordered entry listing of a directory tree, expanding
// ZIP archives in place
type Scanner struct {
	config           *config.Config
	logger           *zap.Logger
	walker           *filesystem.Walker
	extractor        *archive.Extractor
	progressCallback ProgressCallback
}

// NewScanner creates a new scanner instance
func NewScanner(cfg *config.Config, logger *zap.Logger) (*Scanner, error) {
	names, err := namecodec.Load(cfg.Archive.EncodingsFile, cfg.Archive.NameEncodings)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize filename decoders: %w", err)
	}

	logger.Debug("Filename decoding chain", zap.String("chain", names.String()))

	return &Scanner{
		config:    cfg,
		logger:    logger,
		walker:    filesystem.NewWalker(logger),
		extractor: archive.NewExtractor(names, cfg.Archive.RestoreMtime, logger),
	}, nil
}

// SetProgressCallback sets the progress callback function
func (s *Scanner) SetProgressCallback(cb ProgressCallback) {
	s.progressCallback = cb
}

// SetTempRoot sets where archive extraction directories are created
func (s *Scanner) SetTempRoot(dir string) {
	s.extractor.SetTempRoot(dir)
}

// reportProgress calls the progress callback if set
func (s *Scanner) reportProgress(level string, entries int) {
	if s.progressCallback != nil {
		s.progressCallback(level, entries)
	}
}

// Scan lists root and returns the entries with summary statistics
func (s *Scanner) Scan(root string) (*models.ScanResults, error) {
	s.logger.Info("Starting scan", zap.String("path", root))

	if err := CheckRoot(root); err != nil {
		return nil, err
	}

	results := &models.ScanResults{
		StartTime: time.Now(),
		Root:      root,
		Stats:     &models.ScanStatistics{},
	}

	if err := s.scan(root, "", results); err != nil {
		return nil, err
	}

	results.EndTime = time.Now()
	results.Duration = results.EndTime.Sub(results.StartTime)

	s.logger.Info("Scan completed",
		zap.Duration("duration", results.Duration),
		zap.Int("entries", len(results.Entries)),
		zap.Int("archives", results.Stats.Archives),
		zap.Int("corrupt_archives", results.Stats.CorruptArchives))

	return results, nil
}

// Entries returns only the ordered entry list for root
func (s *Scanner) Entries(root string) ([]models.Entry, error) {
	results, err := s.Scan(root)
	if err != nil {
		return nil, err
	}
	return results.Entries, nil
}

// CheckRoot validates that root exists and is a directory
func CheckRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrPathNotFound, root)
		}
		return fmt.Errorf("failed to access %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrPathNotADirectory, root)
	}
	return nil
}

// scan lists one level (a directory or an extracted archive) and appends its
// entries to results, every name prefixed with prefix. Archive contents are
// appended right after the archive's own entry.
func (s *Scanner) scan(root, prefix string, results *models.ScanResults) error {
	infos, err := s.walker.Walk(root)
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", root, err)
	}

	s.reportProgress(levelName(root, prefix), len(infos))

	for _, info := range infos {
		entry := info.Entry(prefix)
		results.AddEntries(entry)

		if info.IsDir || !filesystem.IsZipFile(info.RelPath) {
			continue
		}

		stats, err := s.extractor.Expand(info.Path, func(dir string) error {
			return s.scan(dir, entry.Name+"/", results)
		})
		switch {
		case errors.Is(err, archive.ErrCorruptArchive):
			s.logger.Debug("Skipping unreadable archive", zap.String("archive", entry.Name), zap.Error(err))
			results.Stats.CorruptArchives++
		case err != nil:
			return err
		default:
			results.Stats.Archives++
			results.Stats.SkippedMembers += stats.Skipped
		}
	}

	return nil
}

// levelName names a scan level for progress reporting
func levelName(root, prefix string) string {
	if prefix == "" {
		return root
	}
	return prefix[:len(prefix)-1]
}
