package ers

import (
	"context"
	"errors"
	"time"

	"github.com/PabloGalante/paceful/internal/domain"
	"github.com/PabloGalante/paceful/internal/observability"
)

// SyncTrigger recomputes immediately on every trigger.
type SyncTrigger struct {
	svc *Service
}

func NewSyncTrigger(svc *Service) *SyncTrigger {
	return &SyncTrigger{svc: svc}
}

func (t *SyncTrigger) Trigger(ctx context.Context, userID domain.UserID) error {
	_, err := t.svc.CalculateAndStoreERSScore(ctx, userID)
	return err
}

// Debouncer collects users whose inputs changed until the scheduler drains them.
// Marking the same user twice before a drain yields one recomputation.
type Debouncer interface {
	Mark(ctx context.Context, userID domain.UserID) error
	Drain(ctx context.Context, max int) ([]domain.UserID, error)
}

// DebouncedTrigger only marks the user dirty.
type DebouncedTrigger struct {
	debouncer Debouncer
}

func NewDebouncedTrigger(d Debouncer) *DebouncedTrigger {
	return &DebouncedTrigger{debouncer: d}
}

func (t *DebouncedTrigger) Trigger(ctx context.Context, userID domain.UserID) error {
	return t.debouncer.Mark(ctx, userID)
}

const defaultBatchSize = 100

// Scheduler periodically drains the debouncer and recomputes each user.
type Scheduler struct {
	svc       *Service
	debouncer Debouncer
	interval  time.Duration
	batchSize int
}

func NewScheduler(svc *Service, d Debouncer, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Scheduler{
		svc:       svc,
		debouncer: d,
		interval:  interval,
		batchSize: defaultBatchSize,
	}
}

// Run flushes on every tick until ctx is cancelled, then flushes once more.
func (s *Scheduler) Run(ctx context.Context) error {
	log := observability.Logger().With("component", "ers_scheduler", "interval", s.interval)
	log.Infow("ers scheduler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// drain what is pending with a fresh context so shutdown does not lose marks
			flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if _, err := s.Flush(flushCtx); err != nil {
				log.Warnw("final ers flush failed", "error", err)
			}
			cancel()
			log.Infow("ers scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Flush(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Warnw("ers flush failed", "error", err)
			}
		}
	}
}

// Flush recomputes every pending user and returns how many scores were stored.
// A failing user is logged and skipped; the drain error, if any, is returned.
func (s *Scheduler) Flush(ctx context.Context) (int, error) {
	log := observability.LoggerFromContext(ctx).With("component", "ers_scheduler")

	stored := 0
	for {
		users, err := s.debouncer.Drain(ctx, s.batchSize)
		if err != nil {
			return stored, err
		}
		for _, u := range users {
			if _, err := s.svc.CalculateAndStoreERSScore(ctx, u); err != nil {
				log.Errorw("ers recompute failed", "user_id", u, "error", err)
				continue
			}
			stored++
		}
		if len(users) < s.batchSize {
			return stored, nil
		}
	}
}
