package debounce

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/PabloGalante/paceful/internal/domain"
)

const defaultKey = "paceful:ers:dirty"

// Redis keeps the dirty set in a Redis SET so several API instances share
// one scheduler queue.
type Redis struct {
	rdb *goredis.Client
	key string
}

// NewRedis connects to addr and verifies the connection with a PING.
func NewRedis(ctx context.Context, addr, key string) (*Redis, error) {
	if addr == "" {
		return nil, fmt.Errorf("%w: missing redis address", domain.ErrInvalidInput)
	}
	if key == "" {
		key = defaultKey
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%w: redis ping: %v", domain.ErrStorageUnavailable, err)
	}

	return &Redis{rdb: rdb, key: key}, nil
}

func (r *Redis) Mark(ctx context.Context, userID domain.UserID) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if err := r.rdb.SAdd(ctx, r.key, string(userID)).Err(); err != nil {
		return fmt.Errorf("%w: redis sadd: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// Drain pops up to max members. SPOP is atomic, so concurrent schedulers
// never recompute the same mark twice.
func (r *Redis) Drain(ctx context.Context, max int) ([]domain.UserID, error) {
	if max <= 0 {
		max = 100
	}
	members, err := r.rdb.SPopN(ctx, r.key, int64(max)).Result()
	if err != nil && err != goredis.Nil {
		return nil, fmt.Errorf("%w: redis spop: %v", domain.ErrStorageUnavailable, err)
	}
	out := make([]domain.UserID, 0, len(members))
	for _, m := range members {
		out = append(out, domain.UserID(m))
	}
	return out, nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
