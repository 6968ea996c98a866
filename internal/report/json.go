package report

import (
	"encoding/json"
	"os"
	"time"

	"github.com/fastygo/regioncheck/domain"
)

type jsonSummary struct {
	TestExecution testExecution   `json:"test_execution"`
	Criteria      criteriaSection `json:"criteria"`
	Results       *domain.Summary `json:"results"`
}

type testExecution struct {
	Timestamp   string `json:"timestamp"`
	RunID       string `json:"run_id"`
	APIEndpoint string `json:"api_endpoint"`
}

type criteriaSection struct {
	LatitudeRange       [2]float64 `json:"latitude_range"`
	LongitudeRange      [2]float64 `json:"longitude_range"`
	CompletionThreshold float64    `json:"completion_threshold"`
}

// WriteJSON writes the run metadata, criteria and summary to test_summary_<ts>.json.
func (w *Writer) WriteJSON(meta RunMeta, summary *domain.Summary) (string, error) {
	if summary == nil {
		summary = domain.NewSummary(nil)
	}
	stamp := meta.Timestamp
	if stamp.IsZero() {
		stamp = w.now()
	}
	region := meta.Criteria.Region
	doc := jsonSummary{
		TestExecution: testExecution{
			Timestamp:   stamp.Format(time.RFC3339),
			RunID:       meta.RunID,
			APIEndpoint: meta.Endpoint,
		},
		Criteria: criteriaSection{
			LatitudeRange:       [2]float64{region.LatMin, region.LatMax},
			LongitudeRange:      [2]float64{region.LngMin, region.LngMax},
			CompletionThreshold: meta.Criteria.Threshold,
		},
		Results: summary,
	}

	return w.create(w.path("test_summary", "json", meta), func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	})
}
