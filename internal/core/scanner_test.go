package core

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/x-dv7/p01-lesson05/internal/config"
	"github.com/x-dv7/p01-lesson05/pkg/models"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		Archive: config.ArchiveConfig{
			NameEncodings: []string{"cp866", "utf-8"},
			RestoreMtime:  true,
		},
	}
}

func newTestScanner(t *testing.T) *Scanner {
	t.Helper()
	scanner, err := NewScanner(testConfig(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewScanner() error = %v", err)
	}
	scanner.SetTempRoot(t.TempDir())
	return scanner
}

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
}

// zipBytes builds an archive from name -> content pairs, in the given order
func zipBytes(t *testing.T, members ...string) []byte {
	t.Helper()
	if len(members)%2 != 0 {
		t.Fatal("zipBytes needs name/content pairs")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i := 0; i < len(members); i += 2 {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     members[i],
			Method:   zip.Deflate,
			Modified: time.Date(2022, time.May, 6, 7, 8, 9, 0, time.Local),
		})
		if err != nil {
			t.Fatalf("Failed to add member: %v", err)
		}
		if _, err := w.Write([]byte(members[i+1])); err != nil {
			t.Fatalf("Failed to write member: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	return buf.Bytes()
}

func names(entries []models.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func assertNames(t *testing.T, entries []models.Entry, expected []string) {
	t.Helper()
	got := names(entries)
	if len(got) != len(expected) {
		t.Fatalf("entries = %v, want %v", got, expected)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("entries[%d] = %q, want %q", i, got[i], expected[i])
		}
	}
}

func TestScanner_NewScanner(t *testing.T) {
	cfg := testConfig()
	logger := zap.NewNop()

	scanner, err := NewScanner(cfg, logger)
	if err != nil {
		t.Fatalf("NewScanner() error = %v", err)
	}

	if scanner.config != cfg {
		t.Error("Scanner config not set correctly")
	}
	if scanner.logger != logger {
		t.Error("Scanner logger not set correctly")
	}
	if scanner.walker == nil || scanner.extractor == nil {
		t.Error("Scanner walker/extractor not initialized")
	}
}

func TestScanner_NewScanner_BadEncoding(t *testing.T) {
	cfg := testConfig()
	cfg.Archive.NameEncodings = []string{"no-such-codepage"}

	if _, err := NewScanner(cfg, zap.NewNop()); err == nil {
		t.Error("NewScanner() expected error for unknown encoding")
	}
}

func TestScanner_Scan_RootErrors(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "file.txt")
	writeFile(t, file, []byte("x"))

	scanner := newTestScanner(t)

	_, err := scanner.Scan(filepath.Join(tmpDir, "missing"))
	if !errors.Is(err, ErrPathNotFound) {
		t.Errorf("Scan(missing) error = %v, want ErrPathNotFound", err)
	}

	_, err = scanner.Scan(file)
	if !errors.Is(err, ErrPathNotADirectory) {
		t.Errorf("Scan(file) error = %v, want ErrPathNotADirectory", err)
	}
}

func TestScanner_Scan_EmptyDirectory(t *testing.T) {
	scanner := newTestScanner(t)

	results, err := scanner.Scan(t.TempDir())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(results.Entries) != 0 {
		t.Errorf("Scan() entries = %v, want none", names(results.Entries))
	}
	if results.Stats.Files != 0 || results.Stats.Folders != 0 {
		t.Errorf("Scan() stats = %+v, want zero counts", results.Stats)
	}
}

func TestScanner_Scan_EntryFields(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "docs", "readme.md"), []byte("hello"))
	if err := os.Mkdir(filepath.Join(root, "empty"), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	modTime := time.Date(2019, time.December, 31, 23, 59, 58, 0, time.Local)
	if err := os.Chtimes(filepath.Join(root, "docs", "readme.md"), modTime, modTime); err != nil {
		t.Fatalf("Failed to set mtime: %v", err)
	}

	entries, err := newTestScanner(t).Entries(root)
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	assertNames(t, entries, []string{"docs", "docs/readme.md", "empty"})

	docs, readme, empty := entries[0], entries[1], entries[2]
	if docs.Type != models.KindFolder || docs.Size != 0 {
		t.Errorf("docs = %+v, want folder of size 0", docs)
	}
	if readme.Type != models.KindFile || readme.Size != 5 {
		t.Errorf("readme = %+v, want 5-byte file", readme)
	}
	if readme.Modified != "2019-12-31 23:59:58" {
		t.Errorf("readme.Modified = %q, want %q", readme.Modified, "2019-12-31 23:59:58")
	}
	if empty.Type != models.KindFolder {
		t.Errorf("empty = %+v, want folder", empty)
	}
}

func TestScanner_Scan_Deterministic(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b/2.txt", "b/1.txt", "a.txt", "c/d/e.txt", "B.bin"} {
		writeFile(t, filepath.Join(root, filepath.FromSlash(name)), []byte(name))
	}

	scanner := newTestScanner(t)
	first, err := scanner.Entries(root)
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	second, err := scanner.Entries(root)
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("runs differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("entry %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}

	for i := 1; i < len(first); i++ {
		if first[i-1].Name >= first[i].Name {
			t.Errorf("entries not ascending: %q before %q", first[i-1].Name, first[i].Name)
		}
	}
}

func TestScanner_Scan_ExpandsArchive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), []byte("a"))
	writeFile(t, filepath.Join(root, "archive.zip"), zipBytes(t, "sub/b.txt", "bb", "a.txt", "aa"))
	writeFile(t, filepath.Join(root, "b.txt"), []byte("b"))

	results, err := newTestScanner(t).Scan(root)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	assertNames(t, results.Entries, []string{
		"a.txt",
		"archive.zip",
		"archive.zip/a.txt",
		"archive.zip/sub",
		"archive.zip/sub/b.txt",
		"b.txt",
	})

	if results.Entries[1].Type != models.KindFile {
		t.Errorf("archive entry type = %v, want file", results.Entries[1].Type)
	}
	if results.Entries[3].Type != models.KindFolder {
		t.Errorf("archive.zip/sub type = %v, want folder", results.Entries[3].Type)
	}
	if results.Entries[4].Size != 2 {
		t.Errorf("archive.zip/sub/b.txt size = %d, want 2", results.Entries[4].Size)
	}
	if results.Entries[2].Modified != "2022-05-06 07:08:09" {
		t.Errorf("archive.zip/a.txt modified = %q, want header time", results.Entries[2].Modified)
	}
	if results.Stats.Archives != 1 {
		t.Errorf("Stats.Archives = %d, want 1", results.Stats.Archives)
	}
}

func TestScanner_Scan_NestedArchives(t *testing.T) {
	root := t.TempDir()
	inner := zipBytes(t, "c.txt", "c")
	outer := zipBytes(t, "deep/inner.ZIP", string(inner), "x.txt", "x")
	writeFile(t, filepath.Join(root, "dir", "outer.zip"), outer)

	entries, err := newTestScanner(t).Entries(root)
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}

	assertNames(t, entries, []string{
		"dir",
		"dir/outer.zip",
		"dir/outer.zip/deep",
		"dir/outer.zip/deep/inner.ZIP",
		"dir/outer.zip/deep/inner.ZIP/c.txt",
		"dir/outer.zip/x.txt",
	})
}

func TestScanner_Scan_CorruptArchive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "x.zip"), []byte("definitely not a zip"))

	results, err := newTestScanner(t).Scan(root)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	assertNames(t, results.Entries, []string{"x.zip"})
	if results.Entries[0].Type != models.KindFile {
		t.Errorf("x.zip type = %v, want file", results.Entries[0].Type)
	}
	if results.Stats.CorruptArchives != 1 {
		t.Errorf("Stats.CorruptArchives = %d, want 1", results.Stats.CorruptArchives)
	}
}

func TestScanner_Scan_NoTempDirsLeft(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "one.zip"), zipBytes(t, "a.txt", "a"))
	writeFile(t, filepath.Join(root, "two.zip"), zipBytes(t, "nested.zip", string(zipBytes(t, "b.txt", "b"))))

	tempRoot := t.TempDir()
	scanner := newTestScanner(t)
	scanner.SetTempRoot(tempRoot)

	if _, err := scanner.Scan(root); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	left, err := os.ReadDir(tempRoot)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(left) != 0 {
		t.Errorf("%d extraction directories left behind", len(left))
	}
}

func TestScanner_Scan_SkipsSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	root := t.TempDir()
	target := t.TempDir()
	writeFile(t, filepath.Join(target, "hidden.txt"), []byte("h"))
	writeFile(t, filepath.Join(root, "keep.txt"), []byte("k"))
	if err := os.Symlink(target, filepath.Join(root, "linkdir")); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}
	if err := os.Symlink(filepath.Join(root, "keep.txt"), filepath.Join(root, "link.zip")); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	entries, err := newTestScanner(t).Entries(root)
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	assertNames(t, entries, []string{"keep.txt"})
}

func TestScanner_ProgressCallback(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.zip"), zipBytes(t, "in.txt", "i"))

	scanner := newTestScanner(t)
	var levels []string
	scanner.SetProgressCallback(func(level string, entries int) {
		levels = append(levels, level)
	})

	if _, err := scanner.Scan(root); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(levels) != 2 || levels[0] != root || levels[1] != "a.zip" {
		t.Errorf("progress levels = %v, want [%s a.zip]", levels, root)
	}
}
