package reporting

import (
	"context"
	"errors"

	"voicewatch/internal/archive"
	"voicewatch/internal/monitor"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

type Service struct {
	store archive.Store
}

func NewService(store archive.Store) *Service { return &Service{store: store} }

func (s *Service) CallsSummary(ctx context.Context, req CallsSummaryRequest) (CallsSummary, error) {
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return CallsSummary{}, ErrInvalidRequest
	}
	if s.store == nil {
		return CallsSummary{}, errors.New("reporting: store not configured")
	}

	rows, err := s.store.ListRange(ctx, req.Range.From, req.Range.To)
	if err != nil {
		return CallsSummary{}, err
	}

	out := CallsSummary{Range: req.Range}
	var sentimentSum float64
	var sentimentN int
	for _, c := range rows {
		out.TotalCalls++
		out.TotalDurationSeconds += c.DurationSeconds
		out.TotalTalkTimeSeconds += c.TalkTimeSeconds
		out.TotalInterruptions += c.Interruptions
		if c.Status == string(monitor.StatusCompleted) {
			out.CompletedCalls++
		}
		if c.AnsweredAt != nil {
			out.AnsweredCalls++
		}
		for _, e := range c.Sentiments {
			sentimentSum += e.Score
			sentimentN++
		}
	}
	if out.TotalCalls > 0 {
		out.AverageDurationSeconds = out.TotalDurationSeconds / float64(out.TotalCalls)
	}
	if sentimentN > 0 {
		out.AverageSentiment = sentimentSum / float64(sentimentN)
	}
	return out, nil
}
