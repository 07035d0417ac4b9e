// Package report writes scan results to CSV and JSON files.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"

	"ff-scanner/internal/models"
)

// Writer persists opportunity summaries under a results directory.
type Writer struct {
	dir            string
	timestampFiles bool
	now            func() time.Time
}

// NewWriter builds a report writer. When timestampFiles is set, each file
// name carries the scan time so runs never overwrite each other.
func NewWriter(dir string, timestampFiles bool) *Writer {
	return &Writer{dir: dir, timestampFiles: timestampFiles, now: time.Now}
}

func (w *Writer) filename(ext string) string {
	name := "forward_factor_results"
	if w.timestampFiles {
		name = fmt.Sprintf("%s_%s", name, w.now().Format("20060102_150405"))
	}
	return filepath.Join(w.dir, name+"."+ext)
}

func (w *Writer) ensureDir() error {
	return os.MkdirAll(w.dir, 0o755)
}

// WriteCSV writes the summaries as CSV and returns the file path.
func (w *Writer) WriteCSV(opportunities []models.OpportunitySummary) (string, error) {
	if err := w.ensureDir(); err != nil {
		return "", fmt.Errorf("creating results directory: %w", err)
	}

	path := w.filename("csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating CSV file: %w", err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&opportunities, f); err != nil {
		return "", fmt.Errorf("writing CSV: %w", err)
	}
	return path, nil
}

// jsonReport is the JSON file shape: a small header plus the result rows.
type jsonReport struct {
	GeneratedAt   time.Time                   `json:"generated_at"`
	Count         int                         `json:"count"`
	Opportunities []models.OpportunitySummary `json:"opportunities"`
}

// WriteJSON writes the summaries as JSON and returns the file path.
func (w *Writer) WriteJSON(opportunities []models.OpportunitySummary) (string, error) {
	if err := w.ensureDir(); err != nil {
		return "", fmt.Errorf("creating results directory: %w", err)
	}

	report := jsonReport{
		GeneratedAt:   w.now().UTC(),
		Count:         len(opportunities),
		Opportunities: opportunities,
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding JSON: %w", err)
	}

	path := w.filename("json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing JSON: %w", err)
	}
	return path, nil
}

// ReadCSV loads a previously written CSV report, mainly for tooling and
// tests.
func ReadCSV(path string) ([]models.OpportunitySummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening CSV file: %w", err)
	}
	defer f.Close()

	var opportunities []models.OpportunitySummary
	if err := gocsv.UnmarshalFile(f, &opportunities); err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	return opportunities, nil
}
