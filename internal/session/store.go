package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pk049/Email-agent/internal/config"
)

// Store errors.
var (
	// ErrNotFound reports a session id with no stored snapshot.
	ErrNotFound = errors.New("session: not found")
)

// Store persists session snapshots keyed by session identity. Save replaces
// any prior record whole (upsert, never a merge); Load returns the last
// snapshot verbatim.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context, id string) (*Session, error)
	Close() error
}

// NewStore builds the store selected by configuration: "memory", "sqlite"
// or "redis".
func NewStore(cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(), nil

	case "sqlite":
		return NewSQLiteStore(cfg.Path)

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return NewRedisStore(client, cfg.Redis.TTL), nil

	default:
		return nil, fmt.Errorf("session: unknown store driver %q", cfg.Driver)
	}
}
