// Package report persists validation summaries as flat files and renders
// them for the console.
package report

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/regioncheck/domain"
)

// fileStamp is appended to every report file name.
const fileStamp = "20060102_150405"

// RunMeta describes the validation run a report belongs to.
type RunMeta struct {
	RunID     string
	Timestamp time.Time
	Endpoint  string
	Criteria  domain.Criteria
}

// NewRunMeta stamps a fresh run with a random identifier.
func NewRunMeta(endpoint string, criteria domain.Criteria) RunMeta {
	return RunMeta{
		RunID:     uuid.NewString(),
		Timestamp: time.Now(),
		Endpoint:  endpoint,
		Criteria:  criteria,
	}
}

// Formats selects which files WriteAll produces.
type Formats struct {
	CSV  bool
	JSON bool
	HTML bool
}

// Writer writes report files into a single directory.
type Writer struct {
	dir    string
	logger *zap.Logger
	now    func() time.Time
}

// NewWriter prepares dir (creating it when missing) for report output.
func NewWriter(dir string, logger *zap.Logger) (*Writer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir == "" {
		return nil, errors.New("report: directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("report: create dir %s: %w", dir, err)
	}
	return &Writer{dir: dir, logger: logger, now: time.Now}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// WriteAll writes every selected format and returns the created paths.
// The first failure aborts the remaining formats.
func (w *Writer) WriteAll(meta RunMeta, summary *domain.Summary, formats Formats) ([]string, error) {
	steps := []struct {
		enabled bool
		write   func(RunMeta, *domain.Summary) (string, error)
	}{
		{formats.CSV, w.WriteCSV},
		{formats.JSON, w.WriteJSON},
		{formats.HTML, w.WriteHTML},
	}

	var paths []string
	for _, step := range steps {
		if !step.enabled {
			continue
		}
		path, err := step.write(meta, summary)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Cleanup removes regular files older than retention from the output
// directory. A non-positive retention keeps everything.
func (w *Writer) Cleanup(retention time.Duration) (int, error) {
	if retention <= 0 {
		return 0, nil
	}
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("report: list %s: %w", w.dir, err)
	}

	cutoff := w.now().Add(-retention)
	removed := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			w.logger.Warn("failed to delete old report", zap.String("path", path), zap.Error(err))
			continue
		}
		w.logger.Info("deleted old report", zap.String("path", path))
		removed++
	}
	return removed, nil
}

func (w *Writer) path(prefix, ext string, meta RunMeta) string {
	ts := meta.Timestamp
	if ts.IsZero() {
		ts = w.now()
	}
	return filepath.Join(w.dir, fmt.Sprintf("%s_%s.%s", prefix, ts.Format(fileStamp), ext))
}

func (w *Writer) create(path string, write func(*os.File) error) (string, error) {
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("report: create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return "", fmt.Errorf("report: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("report: close %s: %w", path, err)
	}
	w.logger.Info("report generated", zap.String("path", path))
	return path, nil
}

func summaryResults(summary *domain.Summary) []domain.UserResult {
	if summary == nil {
		return nil
	}
	return summary.UserResults
}
