package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fastygo/regioncheck/domain"
)

func sampleSummary() *domain.Summary {
	return domain.NewSummary([]domain.UserResult{
		{
			UserID: 1, UserName: "Leanne Graham", Username: "Bret",
			Coordinates: domain.Coordinates{Lat: -37.3159, Lng: 81.1496},
			TotalTodos:  3, CompletedTodos: 2, CompletionPercentage: 200.0 / 3, Passed: true,
		},
		{
			UserID: 5, UserName: "Chelsey Dietrich", Username: "Kamren",
			Coordinates: domain.Coordinates{Lat: -31.8129, Lng: 62.5342},
			TotalTodos:  4, CompletedTodos: 2, CompletionPercentage: 50, Passed: false,
		},
	})
}

func sampleMeta() RunMeta {
	return RunMeta{
		RunID:     "run-1",
		Timestamp: time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC),
		Endpoint:  "http://jsonplaceholder.typicode.com",
		Criteria:  domain.DefaultCriteria(),
	}
}

func newTestWriter(t *testing.T) *Writer {
	t.Helper()
	w, err := NewWriter(filepath.Join(t.TempDir(), "reports"), zaptest.NewLogger(t))
	require.NoError(t, err)
	return w
}

func TestNewWriter_CreatesDir(t *testing.T) {
	w := newTestWriter(t)
	info, err := os.Stat(w.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = NewWriter("", nil)
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	w := newTestWriter(t)

	path, err := w.WriteCSV(sampleMeta(), sampleSummary())
	require.NoError(t, err)
	assert.Equal(t, "region_users_report_20240301_123045.csv", filepath.Base(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{
		"1", "Leanne Graham", "Bret", "-37.3159", "81.1496",
		"3", "2", "66.67", "true", "2024-03-01T12:30:45Z",
	}, rows[1])
	assert.Equal(t, "50.00", rows[2][7])
	assert.Equal(t, "false", rows[2][8])
}

func TestWriteCSV_EmptySummaryHasHeaderOnly(t *testing.T) {
	w := newTestWriter(t)

	path, err := w.WriteCSV(sampleMeta(), domain.NewSummary(nil))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(csvHeader, ",")+"\n", string(data))
}

func TestWriteJSON(t *testing.T) {
	w := newTestWriter(t)

	path, err := w.WriteJSON(sampleMeta(), sampleSummary())
	require.NoError(t, err)
	assert.Equal(t, "test_summary_20240301_123045.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		TestExecution map[string]string `json:"test_execution"`
		Criteria      struct {
			LatitudeRange       []float64 `json:"latitude_range"`
			LongitudeRange      []float64 `json:"longitude_range"`
			CompletionThreshold float64   `json:"completion_threshold"`
		} `json:"criteria"`
		Results domain.Summary `json:"results"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "run-1", doc.TestExecution["run_id"])
	assert.Equal(t, "http://jsonplaceholder.typicode.com", doc.TestExecution["api_endpoint"])
	assert.Equal(t, "2024-03-01T12:30:45Z", doc.TestExecution["timestamp"])
	assert.Equal(t, []float64{-40, 5}, doc.Criteria.LatitudeRange)
	assert.Equal(t, []float64{5, 100}, doc.Criteria.LongitudeRange)
	assert.Equal(t, 50.0, doc.Criteria.CompletionThreshold)
	assert.Equal(t, 2, doc.Results.TotalUsers)
	assert.Equal(t, 1, doc.Results.PassedUsers)
	assert.False(t, doc.Results.OverallResult)
	require.Len(t, doc.Results.UserResults, 2)
	assert.Equal(t, "Kamren", doc.Results.UserResults[1].Username)
}

func TestWriteHTML(t *testing.T) {
	w := newTestWriter(t)

	summary := sampleSummary()
	summary.UserResults[0].UserName = "<script>alert(1)</script>"
	path, err := w.WriteHTML(sampleMeta(), summary)
	require.NoError(t, err)
	assert.Equal(t, ".html", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	page := string(data)
	assert.Contains(t, page, "run-1")
	assert.Contains(t, page, "66.67")
	assert.Contains(t, page, "Kamren")
	assert.NotContains(t, page, "<script>alert(1)</script>")
	assert.Contains(t, page, "&lt;script&gt;")
}

func TestWriteHTML_EmptyRegion(t *testing.T) {
	w := newTestWriter(t)

	path, err := w.WriteHTML(sampleMeta(), nil)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "No users in region")
	assert.Contains(t, string(data), "FAIL")
}

func TestWriteAll_SelectedFormats(t *testing.T) {
	w := newTestWriter(t)

	paths, err := w.WriteAll(sampleMeta(), sampleSummary(), Formats{CSV: true, HTML: true})
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, ".csv", filepath.Ext(paths[0]))
	assert.Equal(t, ".html", filepath.Ext(paths[1]))

	paths, err = w.WriteAll(sampleMeta(), sampleSummary(), Formats{})
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestWriteAll_StopsOnFailure(t *testing.T) {
	w := newTestWriter(t)
	require.NoError(t, os.RemoveAll(w.Dir()))

	paths, err := w.WriteAll(sampleMeta(), sampleSummary(), Formats{CSV: true, JSON: true})
	require.Error(t, err)
	assert.Empty(t, paths)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestCleanup_RemovesOnlyExpiredFiles(t *testing.T) {
	w := newTestWriter(t)
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	old := filepath.Join(w.Dir(), "old.csv")
	fresh := filepath.Join(w.Dir(), "fresh.csv")
	sub := filepath.Join(w.Dir(), "archive")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(fresh, []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.Chtimes(old, now.Add(-8*24*time.Hour), now.Add(-8*24*time.Hour)))
	require.NoError(t, os.Chtimes(fresh, now.Add(-6*24*time.Hour), now.Add(-6*24*time.Hour)))
	require.NoError(t, os.Chtimes(sub, now.Add(-30*24*time.Hour), now.Add(-30*24*time.Hour)))

	removed, err := w.Cleanup(7 * 24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
	assert.DirExists(t, sub)
}

func TestCleanup_NonPositiveRetentionKeepsEverything(t *testing.T) {
	w := newTestWriter(t)
	path := filepath.Join(w.Dir(), "old.csv")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(path, time.Unix(0, 0), time.Unix(0, 0)))

	removed, err := w.Cleanup(0)
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.FileExists(t, path)
}

func TestCleanup_MissingDir(t *testing.T) {
	w := newTestWriter(t)
	require.NoError(t, os.RemoveAll(w.Dir()))

	removed, err := w.Cleanup(time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, sampleSummary()))

	out := buf.String()
	assert.Contains(t, out, "[PASS] #1 Leanne Graham (Bret) lat=-37.3159 lng=81.1496 2/3 completed (66.67%)")
	assert.Contains(t, out, "[FAIL] #5 Chelsey Dietrich (Kamren)")
	assert.Contains(t, out, "Total: 2  Passed: 1  Failed: 1  Overall: FAIL")
}

func TestRenderText_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, nil))
	assert.Contains(t, buf.String(), "No users found in region")
	assert.Contains(t, buf.String(), "Overall: FAIL")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestRenderText_PropagatesWriteError(t *testing.T) {
	assert.EqualError(t, RenderText(failingWriter{}, sampleSummary()), "closed")
}

func TestNewRunMeta(t *testing.T) {
	a := NewRunMeta("http://example.test", domain.DefaultCriteria())
	b := NewRunMeta("http://example.test", domain.DefaultCriteria())
	assert.NotEmpty(t, a.RunID)
	assert.NotEqual(t, a.RunID, b.RunID)
	assert.False(t, a.Timestamp.IsZero())
}
