package reporting

import "time"

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// CallsSummaryRequest requests aggregated metrics over the archived calls
// whose creation time falls inside Range.
type CallsSummaryRequest struct {
	Range TimeRange `json:"range"`
}

type CallsSummary struct {
	Range TimeRange `json:"range"`

	TotalCalls     int `json:"total_calls"`
	CompletedCalls int `json:"completed_calls"`
	AnsweredCalls  int `json:"answered_calls"`

	TotalDurationSeconds   float64 `json:"total_duration_seconds"`
	AverageDurationSeconds float64 `json:"average_duration_seconds"`

	TotalTalkTimeSeconds float64 `json:"total_talk_time_seconds"`
	TotalInterruptions   int     `json:"total_interruptions"`

	AverageSentiment float64 `json:"average_sentiment"`
}
