package monitor

import "time"

// Status is the last observed state of the upstream data source.
type Status struct {
	Upstream  bool          `json:"upstream"`
	LastError string        `json:"last_error,omitempty"`
	Latency   time.Duration `json:"latency_ns"`
	LastCheck time.Time     `json:"last_check"`
}

// PerformanceSummary describes fetch timings between Start and Stop.
// Durations are reported in seconds.
type PerformanceSummary struct {
	TotalExecutionTime  float64 `json:"total_execution_time"`
	TotalAPICalls       int     `json:"total_api_calls"`
	AverageResponseTime float64 `json:"average_response_time"`
	MinResponseTime     float64 `json:"min_response_time"`
	MaxResponseTime     float64 `json:"max_response_time"`
	APICallsPerSecond   float64 `json:"api_calls_per_second"`
}
