package archive

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/klauspost/compress/zip"
	"github.com/x-dv7/p01-lesson05/internal/namecodec"
	"go.uber.org/zap"
)

// ErrCorruptArchive is returned when a file cannot be opened as a ZIP archive
var ErrCorruptArchive = errors.New("corrupt archive")

// tempPattern names the scratch directories created for extraction
const tempPattern = "dirreport-zip-*"

// Stats describes one extraction
type Stats struct {
	Members  int // members in the central directory
	Skipped  int // members that could not be written
	Repaired int // legacy member names decoded by the chain
}

// Extractor unpacks ZIP archives into scoped temporary directories
type Extractor struct {
	names        *namecodec.Manager
	restoreMtime bool
	tempRoot     string
	logger       *zap.Logger
}

// NewExtractor creates an extractor that repairs legacy member names with names
func NewExtractor(names *namecodec.Manager, restoreMtime bool, logger *zap.Logger) *Extractor {
	if names == nil {
		names = namecodec.NewManager()
	}
	return &Extractor{
		names:        names,
		restoreMtime: restoreMtime,
		logger:       logger,
	}
}

// SetTempRoot sets the parent of scratch directories (default os.TempDir)
func (x *Extractor) SetTempRoot(dir string) {
	x.tempRoot = dir
}

// Expand extracts the archive at path into a fresh temporary directory and
// calls fn with it. The directory and everything in it is removed before
// Expand returns, whatever fn returns. If path is not a readable ZIP archive
// the error wraps ErrCorruptArchive and fn is not called.
func (x *Extractor) Expand(path string, fn func(dir string) error) (Stats, error) {
	var stats Stats

	r, err := zip.OpenReader(path)
	if err != nil {
		return stats, fmt.Errorf("%w: %s: %v", ErrCorruptArchive, path, err)
	}
	defer r.Close()

	dir, err := os.MkdirTemp(x.tempRoot, tempPattern)
	if err != nil {
		return stats, fmt.Errorf("failed to create extraction directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			x.logger.Warn("Failed to remove extraction directory", zap.String("dir", dir), zap.Error(err))
		}
	}()

	stats = x.extract(&r.Reader, dir)

	x.logger.Debug("Extracted archive",
		zap.String("archive", path),
		zap.String("dir", dir),
		zap.Int("members", stats.Members),
		zap.Int("skipped", stats.Skipped),
		zap.Int("repaired", stats.Repaired))

	return stats, fn(dir)
}

// dirTime records a directory whose timestamp is applied after extraction
type dirTime struct {
	path    string
	modTime time.Time
}

// extract writes all members below dir. Failures on single members are
// logged and counted, never fatal.
func (x *Extractor) extract(r *zip.Reader, dir string) Stats {
	stats := Stats{Members: len(r.File)}
	var dirs []dirTime

	for _, f := range r.File {
		name := f.Name
		if f.NonUTF8 {
			decoded, ok := x.names.Decode([]byte(f.Name))
			if ok {
				if decoded != f.Name {
					stats.Repaired++
				}
				name = decoded
			} else {
				x.logger.Debug("Undecodable member name, keeping raw bytes", zap.ByteString("name", []byte(f.Name)))
			}
		}

		target, err := securejoin.SecureJoin(dir, name)
		if err != nil || target == dir {
			x.logger.Debug("Skipping member with unusable path", zap.String("name", name), zap.Error(err))
			stats.Skipped++
			continue
		}

		switch {
		case f.FileInfo().IsDir() || strings.HasSuffix(name, "/"):
			if err := os.MkdirAll(target, 0755); err != nil {
				x.logger.Warn("Failed to create directory", zap.String("name", name), zap.Error(err))
				stats.Skipped++
				continue
			}
			dirs = append(dirs, dirTime{path: target, modTime: memberModTime(f)})

		case f.Mode()&os.ModeSymlink != 0:
			// Symlinks are never listed, so there is nothing to extract
			x.logger.Debug("Skipping symlink member", zap.String("name", name))

		default:
			if err := writeMember(f, target); err != nil {
				x.logger.Warn("Failed to extract member", zap.String("name", name), zap.Error(err))
				stats.Skipped++
				continue
			}
			x.setModTime(target, memberModTime(f))
		}
	}

	// Children first, so writing into a directory does not reset its time
	sort.Slice(dirs, func(i, j int) bool {
		return len(dirs[i].path) > len(dirs[j].path)
	})
	for _, d := range dirs {
		x.setModTime(d.path, d.modTime)
	}

	return stats
}

// setModTime applies a member timestamp when restoring is enabled
func (x *Extractor) setModTime(path string, t time.Time) {
	if !x.restoreMtime || t.IsZero() {
		return
	}
	if err := os.Chtimes(path, t, t); err != nil {
		x.logger.Debug("Failed to restore modification time", zap.String("path", path), zap.Error(err))
	}
}

// writeMember copies one member's content to target
func writeMember(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Extra field tags that carry an absolute modification time
const (
	ntfsExtraID    = 0x000a
	extTimeExtraID = 0x5455
	infoZipUnixID  = 0x5855
)

// memberModTime returns the member's modification time. A member with only
// MS-DOS fields holds the archiver's wall clock with no zone, so it is read
// as local time; extended timestamps are absolute.
func memberModTime(f *zip.File) time.Time {
	t := f.Modified
	if t.IsZero() {
		return t
	}
	if hasExtendedTime(f.Extra) || (f.ModifiedTime == 0 && f.ModifiedDate == 0) {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.Local)
}

// hasExtendedTime reports whether extra holds a timestamp block
func hasExtendedTime(extra []byte) bool {
	for len(extra) >= 4 {
		tag := binary.LittleEndian.Uint16(extra)
		size := int(binary.LittleEndian.Uint16(extra[2:]))
		extra = extra[4:]
		if size > len(extra) {
			return false
		}
		switch tag {
		case ntfsExtraID, extTimeExtraID, infoZipUnixID:
			return true
		}
		extra = extra[size:]
	}
	return false
}
