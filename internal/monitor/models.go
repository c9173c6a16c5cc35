package monitor

import (
	"strings"
	"time"
)

// CallStatus is the tracked lifecycle state of a call.
//
// Status is monotonic: initializing -> in_progress -> completed. Delayed or
// duplicated event delivery must never move a record backwards.
type CallStatus string

const (
	StatusInitializing CallStatus = "initializing"
	StatusInProgress   CallStatus = "in_progress"
	StatusCompleted    CallStatus = "completed"
)

var statusRank = map[CallStatus]int{
	StatusInitializing: 0,
	StatusInProgress:   1,
	StatusCompleted:    2,
}

// StatusFromPlatform maps a platform-reported status string onto the tracked
// lifecycle. Pre-answer states collapse into initializing.
func StatusFromPlatform(s string) (CallStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "initializing", "queued", "ringing":
		return StatusInitializing, true
	case "in_progress", "in-progress":
		return StatusInProgress, true
	case "completed", "ended":
		return StatusCompleted, true
	default:
		return "", false
	}
}

// Well-known event types. Anything else is appended to the event log without
// status side effects.
const (
	EventTypeAnswered      = "answered"
	EventTypeEnded         = "ended"
	EventTypeTranscription = "transcription"
	EventTypeSentiment     = "sentiment"
)

// CallEvent is one remote-reported occurrence, immutable once ingested.
// ID is unique within a call and is the deduplication key: a redelivered
// event is ignored.
type CallEvent struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// SentimentScore is one sentiment sample reported for a call.
type SentimentScore struct {
	Score     float64   `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// CallAnalytics aggregates coarse behavioral signals derived from events.
// The talk-time and interruption numbers are heuristic approximations, not
// exact telemetry; see analytics.go.
type CallAnalytics struct {
	TalkTimeSeconds        float64          `json:"talk_time_seconds"`
	SilenceDurationSeconds float64          `json:"silence_duration_seconds"`
	Interruptions          int              `json:"interruptions"`
	SentimentScores        []SentimentScore `json:"sentiment_scores,omitempty"`
}

// CallRecord is the registry's view of one actively tracked call.
//
// Invariants:
// - a completed record has a non-nil EndedAt;
// - an in_progress or completed record has a non-nil AnsweredAt, unless the
//   platform reported completion without an intervening answer.
type CallRecord struct {
	ID       string            `json:"id"`
	Metadata map[string]string `json:"metadata,omitempty"`

	Status CallStatus  `json:"status"`
	Events []CallEvent `json:"events"`

	Analytics  CallAnalytics `json:"analytics"`
	Transcript string        `json:"transcript,omitempty"`

	CreatedAt     time.Time  `json:"created_at"`
	LastUpdatedAt time.Time  `json:"last_updated_at"`
	AnsweredAt    *time.Time `json:"answered_at,omitempty"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`

	// DurationSeconds is computed once EndedAt is set, as EndedAt - CreatedAt.
	DurationSeconds float64 `json:"duration_seconds,omitempty"`

	// seen holds ingested event ids for O(1) dedup. Owned by the registry;
	// clones carry a nil map.
	seen map[string]struct{}
}

// StatusChange describes one lifecycle transition.
type StatusChange struct {
	CallID    string     `json:"call_id"`
	From      CallStatus `json:"from"`
	To        CallStatus `json:"to"`
	Timestamp time.Time  `json:"timestamp"`
}

// advanceTo moves the record's status forward, never backwards. Timestamps
// implied by the new status are filled in if absent, so a completion reported
// without an intervening answer still yields a consistent record.
func (r *CallRecord) advanceTo(to CallStatus, at time.Time) bool {
	if statusRank[to] <= statusRank[r.Status] {
		return false
	}
	r.Status = to
	switch to {
	case StatusInProgress:
		if r.AnsweredAt == nil {
			t := at
			r.AnsweredAt = &t
		}
	case StatusCompleted:
		if r.EndedAt == nil {
			t := at
			r.EndedAt = &t
		}
		r.DurationSeconds = r.EndedAt.Sub(r.CreatedAt).Seconds()
	}
	return true
}

// clone returns a detached copy safe to hand to callers and subscribers.
func (r *CallRecord) clone() CallRecord {
	out := *r
	out.seen = nil
	if r.Metadata != nil {
		out.Metadata = make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			out.Metadata[k] = v
		}
	}
	if r.Events != nil {
		out.Events = append([]CallEvent(nil), r.Events...)
	}
	if r.Analytics.SentimentScores != nil {
		out.Analytics.SentimentScores = append([]SentimentScore(nil), r.Analytics.SentimentScores...)
	}
	if r.AnsweredAt != nil {
		t := *r.AnsweredAt
		out.AnsweredAt = &t
	}
	if r.EndedAt != nil {
		t := *r.EndedAt
		out.EndedAt = &t
	}
	return out
}
