package domain

// UserResult is the verdict for a single in-region user.
type UserResult struct {
	UserID               int         `json:"user_id"`
	UserName             string      `json:"user_name"`
	Username             string      `json:"username"`
	Coordinates          Coordinates `json:"coordinates"`
	TotalTodos           int         `json:"total_todos"`
	CompletedTodos       int         `json:"completed_todos"`
	CompletionPercentage float64     `json:"completion_percentage"`
	Passed               bool        `json:"passed"`
}

// Summary aggregates the per-user results of one validation run.
type Summary struct {
	TotalUsers    int          `json:"total_users"`
	PassedUsers   int          `json:"passed_users"`
	FailedUsers   int          `json:"failed_users"`
	OverallResult bool         `json:"overall_result"`
	UserResults   []UserResult `json:"user_results"`
}

// NewSummary tallies the ordered results. With no results the run is a
// failure: an empty region never counts as a pass.
func NewSummary(results []UserResult) *Summary {
	if results == nil {
		results = []UserResult{}
	}
	passed := 0
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}
	return &Summary{
		TotalUsers:    len(results),
		PassedUsers:   passed,
		FailedUsers:   len(results) - passed,
		OverallResult: len(results) > 0 && passed == len(results),
		UserResults:   results,
	}
}

// FailedResults returns the results that did not pass, in order.
func (s *Summary) FailedResults() []UserResult {
	if s == nil {
		return nil
	}
	var failed []UserResult
	for _, r := range s.UserResults {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
