package models

import "time"

// Headers are the report column titles, in order
var Headers = []string{"Name", "Type", "Size", "Modified"}

// ScanResults contains the complete scan results
type ScanResults struct {
	// Summary
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Root      string        `json:"root"`

	// Entries in report order
	Entries []Entry `json:"entries"`

	// Statistics
	Stats *ScanStatistics `json:"statistics"`

	// Report path
	ReportPath string `json:"report_path,omitempty"`
}

// ScanStatistics contains counters collected while scanning
type ScanStatistics struct {
	Files           int   `json:"files"`
	Folders         int   `json:"folders"`
	TotalSize       int64 `json:"total_size"`
	Archives        int   `json:"archives"`         // archives that were expanded
	CorruptArchives int   `json:"corrupt_archives"` // .zip files that could not be opened
	SkippedMembers  int   `json:"skipped_members"`  // archive members that could not be extracted
}

// AddEntries appends entries and updates the file/folder counters
func (r *ScanResults) AddEntries(entries ...Entry) {
	if r.Stats == nil {
		r.Stats = &ScanStatistics{}
	}
	for _, e := range entries {
		r.Entries = append(r.Entries, e)
		if e.IsDir() {
			r.Stats.Folders++
		} else {
			r.Stats.Files++
			r.Stats.TotalSize += e.Size
		}
	}
}
