package report

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/fastygo/regioncheck/domain"
)

var csvHeader = []string{
	"user_id", "user_name", "username", "latitude", "longitude",
	"total_todos", "completed_todos", "completion_percentage",
	"passed", "test_timestamp",
}

// WriteCSV writes one row per user result to region_users_report_<ts>.csv.
func (w *Writer) WriteCSV(meta RunMeta, summary *domain.Summary) (string, error) {
	stamp := meta.Timestamp
	if stamp.IsZero() {
		stamp = w.now()
	}
	path := w.path("region_users_report", "csv", meta)

	return w.create(path, func(f *os.File) error {
		cw := csv.NewWriter(f)
		if err := cw.Write(csvHeader); err != nil {
			return err
		}
		for _, r := range summaryResults(summary) {
			if err := cw.Write(csvRow(r, stamp)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

func csvRow(r domain.UserResult, stamp time.Time) []string {
	return []string{
		strconv.Itoa(r.UserID),
		r.UserName,
		r.Username,
		strconv.FormatFloat(r.Coordinates.Lat, 'f', -1, 64),
		strconv.FormatFloat(r.Coordinates.Lng, 'f', -1, 64),
		strconv.Itoa(r.TotalTodos),
		strconv.Itoa(r.CompletedTodos),
		strconv.FormatFloat(r.CompletionPercentage, 'f', 2, 64),
		strconv.FormatBool(r.Passed),
		stamp.Format(time.RFC3339),
	}
}
