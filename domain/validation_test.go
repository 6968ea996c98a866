package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSummary_Mixed(t *testing.T) {
	t.Parallel()
	results := []UserResult{
		{UserID: 1, CompletionPercentage: 75, Passed: true},
		{UserID: 2, CompletionPercentage: 25, Passed: false},
	}

	s := NewSummary(results)

	assert.Equal(t, 2, s.TotalUsers)
	assert.Equal(t, 1, s.PassedUsers)
	assert.Equal(t, 1, s.FailedUsers)
	assert.False(t, s.OverallResult)
	require.Len(t, s.FailedResults(), 1)
	assert.Equal(t, 2, s.FailedResults()[0].UserID)
}

func TestNewSummary_AllPassed(t *testing.T) {
	t.Parallel()
	s := NewSummary([]UserResult{{UserID: 1, Passed: true}, {UserID: 2, Passed: true}})

	assert.True(t, s.OverallResult)
	assert.Equal(t, 0, s.FailedUsers)
	assert.Empty(t, s.FailedResults())
}

func TestNewSummary_EmptyIsFailure(t *testing.T) {
	t.Parallel()
	s := NewSummary(nil)

	assert.Equal(t, 0, s.TotalUsers)
	assert.Equal(t, 0, s.PassedUsers)
	assert.Equal(t, 0, s.FailedUsers)
	assert.False(t, s.OverallResult, "no eligible users is a failing run")
	assert.NotNil(t, s.UserResults)
}

func TestNewSummary_Invariants(t *testing.T) {
	t.Parallel()
	for n := 0; n < 6; n++ {
		for passed := 0; passed <= n; passed++ {
			results := make([]UserResult, n)
			for i := 0; i < passed; i++ {
				results[i].Passed = true
			}
			s := NewSummary(results)
			assert.Equal(t, s.TotalUsers, s.PassedUsers+s.FailedUsers)
			if n > 0 {
				assert.Equal(t, s.FailedUsers == 0, s.OverallResult)
			}
		}
	}
}

func TestSummaryJSONShape(t *testing.T) {
	t.Parallel()
	s := NewSummary([]UserResult{{
		UserID:               5,
		UserName:             "Chelsey Dietrich",
		Username:             "Kamren",
		Coordinates:          Coordinates{Lat: -31.8129, Lng: 62.5342},
		TotalTodos:           20,
		CompletedTodos:       12,
		CompletionPercentage: 60,
		Passed:               true,
	}})

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"total_users": 1,
		"passed_users": 1,
		"failed_users": 0,
		"overall_result": true,
		"user_results": [{
			"user_id": 5,
			"user_name": "Chelsey Dietrich",
			"username": "Kamren",
			"coordinates": {"lat": -31.8129, "lng": 62.5342},
			"total_todos": 20,
			"completed_todos": 12,
			"completion_percentage": 60,
			"passed": true
		}]
	}`, string(raw))
}

func TestSummaryJSONShape_EmptyResultsIsArray(t *testing.T) {
	t.Parallel()
	raw, err := json.Marshal(NewSummary(nil))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"user_results":[]`)
}
