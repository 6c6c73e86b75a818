package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/paceful/internal/domain"
)

type MoodStore struct {
	mu      sync.RWMutex
	entries map[domain.UserID][]*domain.MoodEntry
}

func NewMoodStore() *MoodStore {
	return &MoodStore{
		entries: make(map[domain.UserID][]*domain.MoodEntry),
	}
}

func (s *MoodStore) AppendMoodEntry(_ context.Context, entry *domain.MoodEntry) error {
	if entry == nil || entry.UserID == "" {
		return fmt.Errorf("%w: mood entry needs a user id", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = domain.MoodEntryID(uuid.NewString())
	}
	cp := *entry
	list := append(s.entries[entry.UserID], &cp)
	// keep LoggedAt order even for backdated check-ins
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].LoggedAt.Before(list[j].LoggedAt)
	})
	s.entries[entry.UserID] = list
	return nil
}

func (s *MoodStore) ListMoodEntriesByUser(_ context.Context, userID domain.UserID, from, to time.Time, limit int) ([]*domain.MoodEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.MoodEntry, 0)
	for _, e := range s.entries[userID] {
		if !from.IsZero() && e.LoggedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !e.LoggedAt.Before(to) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}
