package filesystem

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/x-dv7/p01-lesson05/pkg/models"
	"go.uber.org/zap"
)

// Walker enumerates one scan level of the filesystem
type Walker struct {
	logger *zap.Logger
}

// NewWalker creates a new filesystem walker
func NewWalker(logger *zap.Logger) *Walker {
	return &Walker{logger: logger}
}

// Walk returns every directory and regular file below root, sorted by
// slash-separated relative path. Symbolic links are neither listed nor
// followed; the root itself is not included.
func (w *Walker) Walk(root string) ([]*models.FileInfo, error) {
	var (
		mu    sync.Mutex
		infos []*models.FileInfo
	)

	// One worker: enumeration stays single-threaded
	conf := fastwalk.Config{
		Follow:     false,
		NumWorkers: 1,
	}

	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("Error accessing path", zap.String("path", path), zap.Error(err))
			return nil // Continue walking
		}

		// Get relative path
		relPath, err := filepath.Rel(root, path)
		if err != nil || relPath == "." {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.Type()&fs.ModeSymlink != 0 {
			w.logger.Debug("Skipping symlink", zap.String("path", relPath))
			return nil
		}

		info, err := d.Info()
		if err != nil {
			w.logger.Warn("Failed to stat path", zap.String("path", relPath), zap.Error(err))
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		// Devices, sockets and pipes are not part of the listing
		if !info.IsDir() && !info.Mode().IsRegular() {
			w.logger.Debug("Skipping irregular file", zap.String("path", relPath))
			return nil
		}

		fileInfo := &models.FileInfo{
			Path:    path,
			RelPath: relPath,
			Size:    info.Size(),
			ModTime: info.ModTime(),
			IsDir:   info.IsDir(),
		}

		mu.Lock()
		infos = append(infos, fileInfo)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	SortByPath(infos)
	return infos, nil
}

// SortByPath orders file infos by byte-wise comparison of their relative paths
func SortByPath(infos []*models.FileInfo) {
	slices.SortStableFunc(infos, func(a, b *models.FileInfo) int {
		return strings.Compare(a.RelPath, b.RelPath)
	})
}

// GetExtension returns the file extension without dot
func GetExtension(path string) string {
	ext := filepath.Ext(path)
	if len(ext) > 0 && ext[0] == '.' {
		return ext[1:]
	}
	return ext
}

// IsZipFile reports whether the path has a .zip extension, ignoring case
func IsZipFile(path string) bool {
	return strings.EqualFold(GetExtension(path), "zip")
}
