package archive

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"voicewatch/pkg/utils"
)

var ErrNotFound = errors.New("archived call not found")

// NOTE: This store assumes the following tables exist:
//
// CREATE TABLE call_archive (
//     call_id           TEXT PRIMARY KEY,
//     status            TEXT NOT NULL,
//     created_at        TIMESTAMPTZ NOT NULL,
//     answered_at       TIMESTAMPTZ,
//     ended_at          TIMESTAMPTZ,
//     duration_seconds  DOUBLE PRECISION NOT NULL DEFAULT 0,
//     transcript        TEXT NOT NULL DEFAULT '',
//     talk_time_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
//     interruptions     INTEGER NOT NULL DEFAULT 0,
//     archived_at       TIMESTAMPTZ NOT NULL
// );
//
// CREATE TABLE call_sentiment (
//     id          BIGSERIAL PRIMARY KEY,
//     call_id     TEXT NOT NULL REFERENCES call_archive(call_id),
//     score       DOUBLE PRECISION NOT NULL,
//     recorded_at TIMESTAMPTZ NOT NULL
// );

// Store persists finished calls for later reporting.
type Store interface {
	Save(ctx context.Context, call ArchivedCall) error
	Get(ctx context.Context, callID string) (ArchivedCall, error)
	ListRange(ctx context.Context, from, to time.Time) ([]ArchivedCall, error)
}

// PostgresStore is the production Store backed by the call_archive tables.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Save writes the call and its sentiment samples in one transaction.
// Re-archiving the same call id is a no-op.
func (s *PostgresStore) Save(ctx context.Context, call ArchivedCall) error {
	return utils.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		const q = `
INSERT INTO call_archive
    (call_id, status, created_at, answered_at, ended_at, duration_seconds,
     transcript, talk_time_seconds, interruptions, archived_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (call_id) DO NOTHING
`
		res, err := tx.ExecContext(ctx, q,
			call.CallID,
			call.Status,
			call.CreatedAt,
			call.AnsweredAt,
			call.EndedAt,
			call.DurationSeconds,
			call.Transcript,
			call.TalkTimeSeconds,
			call.Interruptions,
			call.ArchivedAt,
		)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return nil
		}

		const qs = `
INSERT INTO call_sentiment (call_id, score, recorded_at)
VALUES ($1, $2, $3)
`
		for _, e := range call.Sentiments {
			if _, err := tx.ExecContext(ctx, qs, call.CallID, e.Score, e.RecordedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *PostgresStore) Get(ctx context.Context, callID string) (ArchivedCall, error) {
	const q = `
SELECT call_id, status, created_at, answered_at, ended_at, duration_seconds,
       transcript, talk_time_seconds, interruptions, archived_at
FROM call_archive
WHERE call_id = $1
`
	var a ArchivedCall
	if err := s.db.QueryRowContext(ctx, q, callID).Scan(
		&a.CallID,
		&a.Status,
		&a.CreatedAt,
		&a.AnsweredAt,
		&a.EndedAt,
		&a.DurationSeconds,
		&a.Transcript,
		&a.TalkTimeSeconds,
		&a.Interruptions,
		&a.ArchivedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ArchivedCall{}, ErrNotFound
		}
		return ArchivedCall{}, err
	}

	const qs = `
SELECT call_id, score, recorded_at
FROM call_sentiment
WHERE call_id = $1
ORDER BY recorded_at
`
	rows, err := s.db.QueryContext(ctx, qs, callID)
	if err != nil {
		return ArchivedCall{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var e SentimentEntry
		if err := rows.Scan(&e.CallID, &e.Score, &e.RecordedAt); err != nil {
			return ArchivedCall{}, err
		}
		a.Sentiments = append(a.Sentiments, e)
	}
	if err := rows.Err(); err != nil {
		return ArchivedCall{}, err
	}
	return a, nil
}

// ListRange returns calls whose creation time falls in [from, to), ordered
// by creation time, with sentiment samples attached.
func (s *PostgresStore) ListRange(ctx context.Context, from, to time.Time) ([]ArchivedCall, error) {
	const q = `
SELECT call_id, status, created_at, answered_at, ended_at, duration_seconds,
       transcript, talk_time_seconds, interruptions, archived_at
FROM call_archive
WHERE created_at >= $1 AND created_at < $2
ORDER BY created_at
`
	rows, err := s.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ArchivedCall
	for rows.Next() {
		var a ArchivedCall
		if err := rows.Scan(
			&a.CallID,
			&a.Status,
			&a.CreatedAt,
			&a.AnsweredAt,
			&a.EndedAt,
			&a.DurationSeconds,
			&a.Transcript,
			&a.TalkTimeSeconds,
			&a.Interruptions,
			&a.ArchivedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}

	const qs = `
SELECT s.call_id, s.score, s.recorded_at
FROM call_sentiment s
JOIN call_archive a ON a.call_id = s.call_id
WHERE a.created_at >= $1 AND a.created_at < $2
ORDER BY s.recorded_at
`
	srows, err := s.db.QueryContext(ctx, qs, from, to)
	if err != nil {
		return nil, err
	}
	defer srows.Close()

	byID := make(map[string]int, len(out))
	for i, a := range out {
		byID[a.CallID] = i
	}
	for srows.Next() {
		var e SentimentEntry
		if err := srows.Scan(&e.CallID, &e.Score, &e.RecordedAt); err != nil {
			return nil, err
		}
		if i, ok := byID[e.CallID]; ok {
			out[i].Sentiments = append(out[i].Sentiments, e)
		}
	}
	return out, srows.Err()
}
