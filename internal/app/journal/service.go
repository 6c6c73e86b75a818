// Package journal writes journal entries and keeps their analyses current.
package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/PabloGalante/paceful/internal/domain"
	"github.com/PabloGalante/paceful/internal/observability"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

// Service holds the logic of writing and reading journal entries.
type Service struct {
	entries  domain.JournalStore
	analyses domain.AnalysisStore
	analyzer domain.TextAnalyzer
	trigger  domain.RecomputeTrigger
	now      func() time.Time
}

// NewService creates a journal service. trigger may be nil.
func NewService(
	entries domain.JournalStore,
	analyses domain.AnalysisStore,
	analyzer domain.TextAnalyzer,
	trigger domain.RecomputeTrigger,
) *Service {
	return &Service{
		entries:  entries,
		analyses: analyses,
		analyzer: analyzer,
		trigger:  trigger,
		now:      time.Now,
	}
}

// EntryWithAnalysis pairs an entry with its stored analysis. Analysis is nil
// when the entry has not been analyzed.
type EntryWithAnalysis struct {
	Entry    *domain.JournalEntry   `json:"entry"`
	Analysis *domain.AnalysisResult `json:"analysis,omitempty"`
}

// Analyze runs the configured analyzer without persisting anything.
func (s *Service) Analyze(ctx context.Context, text string) (*domain.AnalysisResult, error) {
	return s.analyzer.Analyze(ctx, text)
}

// CreateEntry stores the entry, analyzes it and notifies the ERS trigger.
func (s *Service) CreateEntry(ctx context.Context, userID domain.UserID, text string) (*EntryWithAnalysis, error) {
	ctx, span := observability.StartSpan(ctx, "journal.create_entry", attribute.String("user_id", string(userID)))
	defer span.End()

	log := observability.LoggerFromContext(ctx).With("user_id", userID)

	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: journal text is empty", domain.ErrInvalidInput)
	}
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: journal text is not valid utf-8", domain.ErrInvalidInput)
	}

	now := s.now().UTC()
	entry := &domain.JournalEntry{
		ID:        domain.JournalEntryID(uuid.NewString()),
		UserID:    userID,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.entries.AppendJournalEntry(ctx, entry); err != nil {
		log.Errorw("failed to append journal entry", "error", err)
		span.RecordError(err)
		return nil, err
	}

	analysis, err := s.analyzeAndSave(ctx, entry)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.notify(ctx, userID)

	log.Infow("journal entry created",
		"entry_id", entry.ID,
		"sentiment", analysis.Sentiment,
		"markers", len(analysis.Markers),
	)
	return &EntryWithAnalysis{Entry: entry, Analysis: analysis}, nil
}

func (s *Service) GetEntry(ctx context.Context, userID domain.UserID, id domain.JournalEntryID) (*EntryWithAnalysis, error) {
	entry, err := s.entries.GetJournalEntry(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	analysis, err := s.analyses.GetAnalysisByEntry(ctx, userID, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return &EntryWithAnalysis{Entry: entry, Analysis: analysis}, nil
}

// ListEntries returns the last `limit` entries, oldest first, with their analyses.
// If limit <= 0, a reasonable default value is used.
func (s *Service) ListEntries(ctx context.Context, userID domain.UserID, limit int) ([]*EntryWithAnalysis, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	entries, err := s.entries.ListJournalEntriesByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []*EntryWithAnalysis{}, nil
	}

	// one range read instead of a lookup per entry
	analyses, err := s.analyses.ListAnalysesByUser(ctx, userID, entries[0].CreatedAt, 0)
	if err != nil {
		return nil, err
	}
	byEntry := make(map[domain.JournalEntryID]*domain.AnalysisResult, len(analyses))
	for _, a := range analyses {
		byEntry[a.EntryID] = a
	}

	out := make([]*EntryWithAnalysis, 0, len(entries))
	for _, e := range entries {
		out = append(out, &EntryWithAnalysis{Entry: e, Analysis: byEntry[e.ID]})
	}
	return out, nil
}

// Reanalyze replaces the stored analysis of an entry, e.g. after a lexicon update.
func (s *Service) Reanalyze(ctx context.Context, userID domain.UserID, id domain.JournalEntryID) (*EntryWithAnalysis, error) {
	entry, err := s.entries.GetJournalEntry(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	analysis, err := s.analyzeAndSave(ctx, entry)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, userID)
	return &EntryWithAnalysis{Entry: entry, Analysis: analysis}, nil
}

func (s *Service) analyzeAndSave(ctx context.Context, entry *domain.JournalEntry) (*domain.AnalysisResult, error) {
	log := observability.LoggerFromContext(ctx).With("user_id", entry.UserID, "entry_id", entry.ID)

	analysis, err := s.analyzer.Analyze(ctx, entry.Text)
	if err != nil {
		log.Errorw("journal analysis failed", "analyzer", s.analyzer.Name(), "error", err)
		return nil, err
	}
	analysis.EntryID = entry.ID
	analysis.UserID = entry.UserID
	analysis.EntryCreatedAt = entry.CreatedAt
	analysis.AnalyzedAt = s.now().UTC()

	if err := s.analyses.SaveAnalysis(ctx, analysis); err != nil {
		log.Errorw("failed to save analysis", "error", err)
		return nil, err
	}
	return analysis, nil
}

func (s *Service) notify(ctx context.Context, userID domain.UserID) {
	if s.trigger == nil {
		return
	}
	if err := s.trigger.Trigger(ctx, userID); err != nil {
		observability.LoggerFromContext(ctx).Warnw("ers recompute trigger failed", "user_id", userID, "error", err)
	}
}
