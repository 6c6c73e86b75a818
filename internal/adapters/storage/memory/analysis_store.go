package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/PabloGalante/paceful/internal/domain"
)

// AnalysisStore keeps the latest AnalysisResult per journal entry.
type AnalysisStore struct {
	mu      sync.RWMutex
	byEntry map[domain.JournalEntryID]*domain.AnalysisResult
}

func NewAnalysisStore() *AnalysisStore {
	return &AnalysisStore{
		byEntry: make(map[domain.JournalEntryID]*domain.AnalysisResult),
	}
}

// SaveAnalysis replaces any previous result for the same entry.
func (s *AnalysisStore) SaveAnalysis(_ context.Context, result *domain.AnalysisResult) error {
	if result == nil || result.EntryID == "" || result.UserID == "" {
		return fmt.Errorf("%w: analysis needs entry and user ids", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.byEntry[result.EntryID] = cloneAnalysis(result)
	return nil
}

func (s *AnalysisStore) GetAnalysisByEntry(_ context.Context, userID domain.UserID, entryID domain.JournalEntryID) (*domain.AnalysisResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.byEntry[entryID]
	if !ok || r.UserID != userID {
		return nil, fmt.Errorf("analysis for entry %s: %w", entryID, domain.ErrNotFound)
	}
	return cloneAnalysis(r), nil
}

func (s *AnalysisStore) ListAnalysesByUser(_ context.Context, userID domain.UserID, since time.Time, limit int) ([]*domain.AnalysisResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.AnalysisResult, 0)
	for _, r := range s.byEntry {
		if r.UserID != userID {
			continue
		}
		if !since.IsZero() && r.EntryCreatedAt.Before(since) {
			continue
		}
		out = append(out, cloneAnalysis(r))
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].EntryCreatedAt.Equal(out[j].EntryCreatedAt) {
			return out[i].EntryCreatedAt.Before(out[j].EntryCreatedAt)
		}
		return out[i].EntryID < out[j].EntryID
	})

	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func cloneAnalysis(r *domain.AnalysisResult) *domain.AnalysisResult {
	cp := *r
	cp.Emotions = append([]domain.EmotionTag(nil), r.Emotions...)
	cp.Markers = append([]domain.InsightMarker(nil), r.Markers...)
	cp.NotablePhrases = append([]domain.NotablePhrase(nil), r.NotablePhrases...)
	return &cp
}
