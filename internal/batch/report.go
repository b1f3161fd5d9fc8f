package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileError records why one file produced no records.
type FileError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Report summarises a conversion run.
type Report struct {
	RunID       string      `json:"run_id"`
	StartedAt   time.Time   `json:"started_at"`
	CompletedAt time.Time   `json:"completed_at"`
	Input       string      `json:"input"`
	Output      string      `json:"output,omitempty"` // empty when nothing was written
	View        string      `json:"view"`
	FilesFound  int         `json:"files_found"`
	FilesParsed int         `json:"files_parsed"`
	FilesFailed int         `json:"files_failed"`
	Turns       int         `json:"turns"`
	Processed   []string    `json:"processed"`
	Failed      []FileError `json:"failed"`
}

// AddProcessed records a parsed file and its turn count.
func (r *Report) AddProcessed(path string, turns int) {
	r.Processed = append(r.Processed, path)
	r.FilesParsed++
	r.Turns += turns
}

// AddError records a file that failed.
func (r *Report) AddError(path string, err error) {
	r.Failed = append(r.Failed, FileError{Path: path, Error: err.Error()})
	r.FilesFailed++
}

// Save writes the report as indented JSON, creating parent directories.
func (r *Report) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// LoadReport reads a report written by Save.
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return &r, nil
}

// DefaultReportPath places the report next to the CSV output.
func DefaultReportPath(output string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + ".report.json"
}
