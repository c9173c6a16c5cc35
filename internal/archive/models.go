package archive

import (
	"time"

	"voicewatch/internal/monitor"
)

// ArchivedCall is the durable record of a finished call. Rows are
// append-only; a call is archived at most once.
type ArchivedCall struct {
	CallID          string     `json:"call_id" db:"call_id"`
	Status          string     `json:"status" db:"status"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	AnsweredAt      *time.Time `json:"answered_at,omitempty" db:"answered_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty" db:"ended_at"`
	DurationSeconds float64    `json:"duration_seconds" db:"duration_seconds"`
	Transcript      string     `json:"transcript,omitempty" db:"transcript"`
	TalkTimeSeconds float64    `json:"talk_time_seconds" db:"talk_time_seconds"`
	Interruptions   int        `json:"interruptions" db:"interruptions"`
	ArchivedAt      time.Time  `json:"archived_at" db:"archived_at"`

	Sentiments []SentimentEntry `json:"sentiments,omitempty" db:"-"`
}

// SentimentEntry is one sentiment sample attached to an archived call.
type SentimentEntry struct {
	CallID     string    `json:"call_id" db:"call_id"`
	Score      float64   `json:"score" db:"score"`
	RecordedAt time.Time `json:"recorded_at" db:"recorded_at"`
}

// FromRecord flattens a finished monitor record into its archive shape.
func FromRecord(rec monitor.CallRecord, archivedAt time.Time) ArchivedCall {
	a := ArchivedCall{
		CallID:          rec.ID,
		Status:          string(rec.Status),
		CreatedAt:       rec.CreatedAt,
		AnsweredAt:      rec.AnsweredAt,
		EndedAt:         rec.EndedAt,
		DurationSeconds: rec.DurationSeconds,
		Transcript:      rec.Transcript,
		TalkTimeSeconds: rec.Analytics.TalkTimeSeconds,
		Interruptions:   rec.Analytics.Interruptions,
		ArchivedAt:      archivedAt,
	}
	for _, s := range rec.Analytics.SentimentScores {
		a.Sentiments = append(a.Sentiments, SentimentEntry{
			CallID:     rec.ID,
			Score:      s.Score,
			RecordedAt: s.Timestamp,
		})
	}
	return a
}
