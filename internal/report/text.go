package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fastygo/regioncheck/domain"
)

// RenderText prints a console report: one PASS/FAIL line per user followed by totals.
func RenderText(w io.Writer, summary *domain.Summary) error {
	if summary == nil {
		summary = domain.NewSummary(nil)
	}
	ew := &errWriter{w: w}

	ew.printf("Region validation results\n")
	ew.printf("=========================\n")
	if len(summary.UserResults) == 0 {
		ew.printf("No users found in region\n")
	}
	for _, r := range summary.UserResults {
		verdict := "FAIL"
		if r.Passed {
			verdict = "PASS"
		}
		ew.printf("[%s] #%d %s (%s) lat=%s lng=%s %d/%d completed (%s%%)\n",
			verdict, r.UserID, r.UserName, r.Username,
			strconv.FormatFloat(r.Coordinates.Lat, 'f', -1, 64),
			strconv.FormatFloat(r.Coordinates.Lng, 'f', -1, 64),
			r.CompletedTodos, r.TotalTodos, formatPercent(r.CompletionPercentage))
	}
	overall := "FAIL"
	if summary.OverallResult {
		overall = "PASS"
	}
	ew.printf("-------------------------\n")
	ew.printf("Total: %d  Passed: %d  Failed: %d  Overall: %s\n",
		summary.TotalUsers, summary.PassedUsers, summary.FailedUsers, overall)
	return ew.err
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// errWriter keeps the first write error so the render body stays linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
