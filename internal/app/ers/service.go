package ers

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/PabloGalante/paceful/internal/domain"
	"github.com/PabloGalante/paceful/internal/observability"
)

const defaultHistoryLimit = 30

// Service computes and persists ERS scores through the storage ports.
type Service struct {
	analyses domain.AnalysisStore
	moods    domain.MoodStore
	scores   domain.ScoreStore
	now      func() time.Time

	// one in-flight computation per user
	group singleflight.Group
	// incremented per request; a computation records the value it started at
	requests atomic.Uint64
}

type computation struct {
	score   *domain.ERSScore
	started uint64
}

func NewService(analyses domain.AnalysisStore, moods domain.MoodStore, scores domain.ScoreStore) *Service {
	return &Service{
		analyses: analyses,
		moods:    moods,
		scores:   scores,
		now:      time.Now,
	}
}

// WithClock overrides the clock used for ComputedAt.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CalculateAndStoreERSScore recomputes the user's score and appends it to the series.
// Concurrent calls for the same user share one computation and one stored row.
// A call that joins a computation started before it arrived waits for that one
// and then runs a follow-up, so writes made before the call are always scored.
func (s *Service) CalculateAndStoreERSScore(ctx context.Context, userID domain.UserID) (*domain.ERSScore, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}

	want := s.requests.Add(1)
	for {
		v, err, shared := s.group.Do(string(userID), func() (any, error) {
			started := s.requests.Load()
			score, err := s.compute(ctx, userID)
			if err != nil {
				return nil, err
			}
			return computation{score: score, started: started}, nil
		})
		if err != nil {
			return nil, err
		}
		c := v.(computation)
		if c.started >= want {
			if shared {
				observability.LoggerFromContext(ctx).Debugw("ers computation shared", "user_id", userID)
			}
			return c.score, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		observability.LoggerFromContext(ctx).Debugw("ers computation predates request, recomputing", "user_id", userID)
	}
}

func (s *Service) compute(ctx context.Context, userID domain.UserID) (*domain.ERSScore, error) {
	ctx, span := observability.StartSpan(ctx, "ers.compute", attribute.String("user_id", string(userID)))
	defer span.End()

	log := observability.LoggerFromContext(ctx).With("user_id", userID)

	analyses, err := s.analyses.ListAnalysesByUser(ctx, userID, time.Time{}, MaxJournalAnalyses)
	if err != nil {
		log.Errorw("failed to load analyses", "error", err)
		span.RecordError(err)
		return nil, err
	}
	moods, err := s.moods.ListMoodEntriesByUser(ctx, userID, time.Time{}, time.Time{}, MaxMoodEntries)
	if err != nil {
		log.Errorw("failed to load mood entries", "error", err)
		span.RecordError(err)
		return nil, err
	}

	var previous *float64
	prev, err := s.scores.LatestScore(ctx, userID)
	switch {
	case err == nil:
		p := prev.Overall
		previous = &p
	case errors.Is(err, domain.ErrNotFound):
	default:
		log.Errorw("failed to load previous score", "error", err)
		span.RecordError(err)
		return nil, err
	}

	res := Calculate(Input{Analyses: analyses, Moods: moods})

	score := &domain.ERSScore{
		ID:              domain.ScoreID(uuid.NewString()),
		UserID:          userID,
		ComputedAt:      s.now().UTC(),
		AsOf:            res.AsOf,
		Overall:         res.Overall,
		Components:      res.Components,
		Trend:           ClassifyTrend(previous, res.Overall),
		PreviousOverall: previous,
		Baseline:        res.Baseline,
		JournalCount:    res.JournalCount,
		MoodCount:       res.MoodCount,
		FormulaVersion:  FormulaVersion,
	}

	if err := s.scores.AppendScore(ctx, score); err != nil {
		log.Errorw("failed to append ers score", "error", err)
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Float64("ers.overall", score.Overall),
		attribute.String("ers.trend", string(score.Trend)),
	)
	log.Infow("ers score stored",
		"score_id", score.ID,
		"overall", score.Overall,
		"trend", score.Trend,
		"baseline", score.Baseline,
		"journal_count", score.JournalCount,
		"mood_count", score.MoodCount,
	)
	return score, nil
}

// Latest returns the newest stored score, computing a first one when none exists
// so every user has a displayable value.
func (s *Service) Latest(ctx context.Context, userID domain.UserID) (*domain.ERSScore, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	score, err := s.scores.LatestScore(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return s.CalculateAndStoreERSScore(ctx, userID)
	}
	return score, err
}

// History returns the last `limit` scores, oldest first.
func (s *Service) History(ctx context.Context, userID domain.UserID, limit int) ([]*domain.ERSScore, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.scores.ListScores(ctx, userID, limit)
}
