package monitor

import (
	"errors"
	"time"
)

// ErrNotWatched reports ingestion for a call the registry does not track.
var ErrNotWatched = errors.New("monitor: call not watched")

// Ingest applies a batch of events to a tracked call. Events already seen
// (by id) are ignored; malformed events (missing id or type) are dropped.
// Events are applied in the order given.
//
// After the batch the record's LastUpdatedAt is refreshed and a call:updated
// notification carries the full record; if the batch moved the status, a
// call:status_changed notification follows. Each applied event additionally
// fans out on its call:<type> topic.
//
// Ingest is the only mutation path for tracked records, whether driven by a
// poll sweep or by validated webhook delivery.
func (m *Monitor) Ingest(callID string, events []CallEvent) error {
	now := m.clock().UTC()

	var (
		applied []CallEvent
		change  *StatusChange
		updated CallRecord
	)

	ok := m.registry.Update(callID, func(rec *CallRecord) {
		before := rec.Status
		for _, ev := range events {
			if ev.ID == "" || ev.Type == "" {
				m.log.Debug("dropping malformed event", "call_id", callID, "event_type", ev.Type)
				continue
			}
			if _, dup := rec.seen[ev.ID]; dup {
				continue
			}
			m.applyEvent(rec, ev, now)
			applied = append(applied, ev)
		}
		rec.LastUpdatedAt = now
		if rec.Status != before {
			change = &StatusChange{CallID: callID, From: before, To: rec.Status, Timestamp: now}
		}
		updated = rec.clone()
	})
	if !ok {
		return ErrNotWatched
	}

	for i := range applied {
		if m.met != nil {
			m.met.EventsProcessed.WithLabelValues(applied[i].Type).Inc()
		}
		m.emit(Notification{
			Topic:     EventTopic(applied[i].Type),
			CallID:    callID,
			Timestamp: now,
			Event:     &applied[i],
		})
	}

	m.emit(Notification{Topic: TopicCallUpdated, CallID: callID, Timestamp: now, Record: &updated})

	if change != nil {
		m.emit(Notification{Topic: TopicStatusChanged, CallID: callID, Timestamp: now, Change: change})
		if change.To == StatusCompleted {
			m.scheduleEviction(callID)
		}
	}
	return nil
}

// applyEvent mutates rec for one deduplicated event. Runs under the registry
// lock.
func (m *Monitor) applyEvent(rec *CallRecord, ev CallEvent, now time.Time) {
	at := ev.Timestamp
	if at.IsZero() {
		at = now
	}

	switch ev.Type {
	case EventTypeAnswered:
		rec.advanceTo(StatusInProgress, at)

	case EventTypeEnded:
		if !rec.advanceTo(StatusCompleted, at) && rec.EndedAt == nil {
			// Already completed via a polled status but missing the source
			// timestamp; the event carries it.
			t := at
			rec.EndedAt = &t
			rec.DurationSeconds = rec.EndedAt.Sub(rec.CreatedAt).Seconds()
		}

	case EventTypeTranscription:
		text := dataString(ev.Data, "text")
		rec.Transcript = text
		analyzeTranscription(&rec.Analytics, text, dataString(ev.Data, "speaker"))

	case EventTypeSentiment:
		rec.Analytics.SentimentScores = append(rec.Analytics.SentimentScores, SentimentScore{
			Score:     dataFloat(ev.Data, "score"),
			Timestamp: at,
		})

	default:
		// Unknown types land in the event log only.
	}

	rec.Events = append(rec.Events, ev)
	rec.seen[ev.ID] = struct{}{}
}

func dataString(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	s, _ := data[key].(string)
	return s
}

func dataFloat(data map[string]any, key string) float64 {
	if data == nil {
		return 0
	}
	switch v := data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}
