package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/PabloGalante/paceful/internal/domain"
)

// ScoreStore is an append-only ERS time series per user.
type ScoreStore struct {
	mu     sync.RWMutex
	scores map[domain.UserID][]*domain.ERSScore
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{
		scores: make(map[domain.UserID][]*domain.ERSScore),
	}
}

func (s *ScoreStore) AppendScore(_ context.Context, score *domain.ERSScore) error {
	if score == nil || score.UserID == "" {
		return fmt.Errorf("%w: score needs a user id", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if score.ID == "" {
		score.ID = domain.ScoreID(uuid.NewString())
	}
	s.scores[score.UserID] = append(s.scores[score.UserID], cloneScore(score))
	return nil
}

func (s *ScoreStore) LatestScore(_ context.Context, userID domain.UserID) (*domain.ERSScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.scores[userID]
	if len(list) == 0 {
		return nil, fmt.Errorf("ers score for %s: %w", userID, domain.ErrNotFound)
	}
	return cloneScore(list[len(list)-1]), nil
}

func (s *ScoreStore) ListScores(_ context.Context, userID domain.UserID, limit int) ([]*domain.ERSScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.scores[userID]
	if limit > 0 && len(list) > limit {
		list = list[len(list)-limit:]
	}
	out := make([]*domain.ERSScore, 0, len(list))
	for _, sc := range list {
		out = append(out, cloneScore(sc))
	}
	return out, nil
}

func cloneScore(s *domain.ERSScore) *domain.ERSScore {
	cp := *s
	cp.Components = make(map[domain.ERSComponent]float64, len(s.Components))
	for k, v := range s.Components {
		cp.Components[k] = v
	}
	if s.PreviousOverall != nil {
		v := *s.PreviousOverall
		cp.PreviousOverall = &v
	}
	return &cp
}
