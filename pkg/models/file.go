package models

import (
	"strconv"
	"time"
)

// TimeLayout is the layout used for Entry.Modified
const TimeLayout = "2006-01-02 15:04:05"

// Kind is the type of filesystem object an Entry describes
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// Entry describes one file or folder found during a scan
type Entry struct {
	Name     string `json:"name"`     // Slash-separated path relative to the scan root
	Type     Kind   `json:"type"`     // file or folder
	Size     int64  `json:"size"`     // Byte length for files, always 0 for folders
	Modified string `json:"modified"` // Local modification time, TimeLayout
}

// IsDir reports whether the entry is a folder
func (e Entry) IsDir() bool {
	return e.Type == KindFolder
}

// Row returns the entry as report cells in column order
func (e Entry) Row() []string {
	return []string{e.Name, string(e.Type), strconv.FormatInt(e.Size, 10), e.Modified}
}

// FormatModTime formats a modification time in local time with second precision
func FormatModTime(t time.Time) string {
	return t.Local().Format(TimeLayout)
}

// FileInfo contains basic information about one enumerated filesystem object
type FileInfo struct {
	Path    string // Absolute path on disk
	RelPath string // Slash-separated path relative to the walk root
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// Entry converts the file info into a report entry named prefix+RelPath
func (fi *FileInfo) Entry(prefix string) Entry {
	e := Entry{
		Name:     prefix + fi.RelPath,
		Type:     KindFile,
		Size:     fi.Size,
		Modified: FormatModTime(fi.ModTime),
	}
	if fi.IsDir {
		e.Type = KindFolder
		e.Size = 0
	}
	return e
}
