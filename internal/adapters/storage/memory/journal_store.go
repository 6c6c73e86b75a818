package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/PabloGalante/paceful/internal/domain"
)

// JournalStore is an in-memory domain.JournalStore.
// It is NOT persistent and is only suitable for development / local mode.
type JournalStore struct {
	mu     sync.RWMutex
	byID   map[domain.JournalEntryID]*domain.JournalEntry
	byUser map[domain.UserID][]*domain.JournalEntry // CreatedAt order
}

func NewJournalStore() *JournalStore {
	return &JournalStore{
		byID:   make(map[domain.JournalEntryID]*domain.JournalEntry),
		byUser: make(map[domain.UserID][]*domain.JournalEntry),
	}
}

func (s *JournalStore) AppendJournalEntry(_ context.Context, entry *domain.JournalEntry) error {
	if entry == nil || entry.UserID == "" {
		return fmt.Errorf("%w: journal entry needs a user id", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = domain.JournalEntryID(uuid.NewString())
	}
	if _, exists := s.byID[entry.ID]; exists {
		return fmt.Errorf("%w: journal entry %s already exists", domain.ErrInvalidInput, entry.ID)
	}

	cp := *entry
	s.byID[cp.ID] = &cp
	list := append(s.byUser[cp.UserID], &cp)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	s.byUser[cp.UserID] = list
	return nil
}

func (s *JournalStore) GetJournalEntry(_ context.Context, userID domain.UserID, id domain.JournalEntryID) (*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byID[id]
	if !ok || e.UserID != userID {
		return nil, fmt.Errorf("journal entry %s: %w", id, domain.ErrNotFound)
	}
	cp := *e
	return &cp, nil
}

// ListJournalEntriesByUser returns the newest `limit` entries, oldest first.
// If limit <= 0, returns all.
func (s *JournalStore) ListJournalEntriesByUser(_ context.Context, userID domain.UserID, limit int) ([]*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.byUser[userID]
	if limit > 0 && len(list) > limit {
		list = list[len(list)-limit:]
	}
	out := make([]*domain.JournalEntry, 0, len(list))
	for _, e := range list {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}
