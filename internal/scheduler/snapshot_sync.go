package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/MrSnakeDoc/caddyboard/internal/domain"
	"github.com/MrSnakeDoc/caddyboard/internal/logger"
)

// SnapshotLoader reads the persisted snapshot.
type SnapshotLoader interface {
	Load(ctx context.Context) ([]domain.Service, error)
}

// IndexUpdater receives the synced services.
type IndexUpdater interface {
	Update(services []domain.Service)
}

// SnapshotSyncer warms the in-memory index from the persisted snapshot, so
// lookups work before the first extraction completes. Run keeps the index in
// step with writes made by other processes (another instance sharing the
// redis backend, or `caddyboard extract --save`).
type SnapshotSyncer struct {
	store  SnapshotLoader
	index  IndexUpdater
	logger logger.Logger
	done   chan struct{}
}

// NewSnapshotSyncer creates a new snapshot syncer
func NewSnapshotSyncer(
	store SnapshotLoader,
	idx IndexUpdater,
	log logger.Logger,
) *SnapshotSyncer {
	return &SnapshotSyncer{
		store:  store,
		index:  idx,
		logger: log,
		done:   make(chan struct{}),
	}
}

// Sync loads the snapshot and updates the memory index. A missing snapshot
// is not an error.
func (ss *SnapshotSyncer) Sync(ctx context.Context) error {
	ss.logger.Info("syncing snapshot to memory index")

	count, found, err := ss.sync(ctx)
	if err != nil {
		return err
	}
	if !found {
		ss.logger.Info("no snapshot found")
		return nil
	}

	ss.logger.Info("synced snapshot",
		logger.Int("count", count))

	return nil
}

// Run re-syncs the index every interval until ctx is done. A non-positive
// interval returns at once. Done is closed when Run returns.
func (ss *SnapshotSyncer) Run(ctx context.Context, interval time.Duration) {
	defer close(ss.done)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ss.logger.Info("snapshot syncer stopped")
			return
		case <-ticker.C:
			count, found, err := ss.sync(ctx)
			if err != nil {
				ss.logger.Warn("periodic snapshot sync failed", logger.Error(err))
				continue
			}
			if found {
				ss.logger.Debug("resynced snapshot", logger.Int("count", count))
			}
		}
	}
}

// Done is closed once Run has returned.
func (ss *SnapshotSyncer) Done() <-chan struct{} {
	return ss.done
}

func (ss *SnapshotSyncer) sync(ctx context.Context) (count int, found bool, err error) {
	services, err := ss.store.Load(ctx)
	if errors.Is(err, domain.ErrSnapshotUnavailable) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	ss.index.Update(services)
	return len(services), true, nil
}
