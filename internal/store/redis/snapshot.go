package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/caddyboard/internal/domain"
)

// Store keeps the service snapshot in Redis, so several caddyboard
// instances can share one extraction result.
type Store struct {
	client *redis.Client
	now    func() time.Time
}

// SnapshotMeta describes the last snapshot write.
type SnapshotMeta struct {
	UpdatedAt time.Time
	Count     int
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		now:    time.Now,
	}
}

// Save replaces the snapshot and its metadata in a single transaction.
func (s *Store) Save(ctx context.Context, services []domain.Service) error {
	if services == nil {
		services = []domain.Service{}
	}
	data, err := json.Marshal(services)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, SnapshotKey(), data, 0)
	pipe.HSet(ctx, SnapshotMetaKey(),
		"updated_at", s.now().UTC().Format(time.RFC3339),
		"count", len(services))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load returns the snapshot, or domain.ErrSnapshotUnavailable when none was saved.
func (s *Store) Load(ctx context.Context) ([]domain.Service, error) {
	data, err := s.client.Get(ctx, SnapshotKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSnapshotUnavailable
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var services []domain.Service
	if err := json.Unmarshal(data, &services); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	if services == nil {
		services = []domain.Service{}
	}
	return services, nil
}

// Meta returns metadata about the last write. ok is false when no snapshot exists.
func (s *Store) Meta(ctx context.Context) (meta SnapshotMeta, ok bool, err error) {
	fields, err := s.client.HGetAll(ctx, SnapshotMetaKey()).Result()
	if err != nil {
		return SnapshotMeta{}, false, fmt.Errorf("failed to get snapshot meta: %w", err)
	}
	if len(fields) == 0 {
		return SnapshotMeta{}, false, nil
	}

	if ts, perr := time.Parse(time.RFC3339, fields["updated_at"]); perr == nil {
		meta.UpdatedAt = ts
	}
	if n, perr := strconv.Atoi(fields["count"]); perr == nil {
		meta.Count = n
	}
	return meta, true, nil
}

// Ping reports whether Redis answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
