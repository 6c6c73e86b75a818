package mood

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/paceful/internal/domain"
	"github.com/PabloGalante/paceful/internal/observability"
)

const (
	defaultListLimit = 500
	maxNoteLength    = 2000
)

// Service logs mood check-ins and serves the calculator over stored entries.
type Service struct {
	store    domain.MoodStore
	analyzer domain.TextAnalyzer
	trigger  domain.RecomputeTrigger
	now      func() time.Time
}

// NewService creates a mood service. analyzer derives daily themes from notes;
// analyzer and trigger may be nil.
func NewService(store domain.MoodStore, analyzer domain.TextAnalyzer, trigger domain.RecomputeTrigger) *Service {
	return &Service{
		store:    store,
		analyzer: analyzer,
		trigger:  trigger,
		now:      time.Now,
	}
}

type LogMoodInput struct {
	UserID   domain.UserID
	Value    int
	Note     string
	LoggedAt time.Time // zero means now
}

func (s *Service) LogMood(ctx context.Context, in LogMoodInput) (*domain.MoodEntry, error) {
	log := observability.LoggerFromContext(ctx).With("user_id", in.UserID, "value", in.Value)

	if in.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if err := ValidateValue(in.Value); err != nil {
		return nil, err
	}
	note := strings.TrimSpace(in.Note)
	if len(note) > maxNoteLength {
		return nil, fmt.Errorf("%w: note longer than %d bytes", domain.ErrInvalidInput, maxNoteLength)
	}

	loggedAt := in.LoggedAt
	if loggedAt.IsZero() {
		loggedAt = s.now()
	}

	entry := &domain.MoodEntry{
		ID:       domain.MoodEntryID(uuid.NewString()),
		UserID:   in.UserID,
		Value:    in.Value,
		Note:     note,
		LoggedAt: loggedAt.UTC(),
	}
	if err := s.store.AppendMoodEntry(ctx, entry); err != nil {
		log.Errorw("failed to append mood entry", "error", err)
		return nil, err
	}

	if s.trigger != nil {
		if err := s.trigger.Trigger(ctx, in.UserID); err != nil {
			log.Warnw("ers recompute trigger failed", "error", err)
		}
	}

	log.Infow("mood logged", "mood_id", entry.ID)
	return entry, nil
}

// ListMoods returns entries in [from, to), oldest first.
func (s *Service) ListMoods(ctx context.Context, userID domain.UserID, from, to time.Time, limit int) ([]*domain.MoodEntry, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.store.ListMoodEntriesByUser(ctx, userID, from, to, limit)
}

// rangeEntries reads every entry in [from, to). Aggregates must not see a truncated range.
func (s *Service) rangeEntries(ctx context.Context, userID domain.UserID, from, to time.Time) ([]*domain.MoodEntry, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	return s.store.ListMoodEntriesByUser(ctx, userID, from, to, 0)
}

func (s *Service) Stats(ctx context.Context, userID domain.UserID, from, to time.Time) (domain.MoodStats, error) {
	entries, err := s.rangeEntries(ctx, userID, from, to)
	if err != nil {
		return domain.MoodStats{}, err
	}
	return CalculateMoodStats(entries, from, to)
}

func (s *Service) DailySummaries(ctx context.Context, userID domain.UserID, from, to time.Time, loc *time.Location) ([]domain.DailySummary, error) {
	entries, err := s.rangeEntries(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	var themes ThemeExtractor
	if s.analyzer != nil {
		themes = AnalyzerThemes(ctx, s.analyzer)
	}
	return CalculateDailySummaries(entries, from, to, loc, themes)
}

func (s *Service) EntriesForDate(ctx context.Context, userID domain.UserID, date time.Time, loc *time.Location) ([]*domain.MoodEntry, error) {
	start, end := DayBounds(date, loc)
	entries, err := s.rangeEntries(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	return GetEntriesForDate(entries, date, loc), nil
}
