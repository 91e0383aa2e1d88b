// Package catalog is the query surface over the service snapshot: it reads
// the current list, re-extracts it from the Caddyfile on demand and probes
// the upstreams it names.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/caddyboard/internal/domain"
	"github.com/MrSnakeDoc/caddyboard/internal/logger"
)

// Source produces a fresh service list from the authoring config.
type Source interface {
	Load() ([]domain.Service, error)
	Path() string
}

// SnapshotStore persists the last extracted service list.
type SnapshotStore interface {
	Load(ctx context.Context) ([]domain.Service, error)
	Save(ctx context.Context, services []domain.Service) error
}

// Prober checks upstream reachability.
type Prober interface {
	Probe(ctx context.Context, services []domain.Service) []domain.PingResult
}

// Index is the in-memory read model refreshed after every extraction.
type Index interface {
	Update(services []domain.Service)
}

// Recorder receives extraction outcomes.
type Recorder interface {
	ObserveExtraction(count int, err error)
}

// Catalog ties the Caddyfile source, the snapshot store and the prober.
type Catalog struct {
	source   Source
	store    SnapshotStore
	prober   Prober
	index    Index
	recorder Recorder
	logger   logger.Logger

	// refreshMu keeps a single extraction writing the snapshot at a time.
	refreshMu sync.Mutex
}

// New creates a Catalog. index and recorder may be nil.
func New(
	source Source,
	store SnapshotStore,
	prober Prober,
	idx Index,
	recorder Recorder,
	log logger.Logger,
) *Catalog {
	return &Catalog{
		source:   source,
		store:    store,
		prober:   prober,
		index:    idx,
		recorder: recorder,
		logger:   log,
	}
}

// GetCurrentServices returns the snapshot, extracting it first when none
// exists yet.
func (c *Catalog) GetCurrentServices(ctx context.Context) ([]domain.Service, error) {
	services, err := c.store.Load(ctx)
	if err == nil {
		return services, nil
	}
	if !errors.Is(err, domain.ErrSnapshotUnavailable) {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	c.logger.Info("no snapshot yet, extracting from caddyfile",
		logger.String("path", c.source.Path()))
	return c.Refresh(ctx)
}

// Refresh re-extracts the full service list from the Caddyfile and replaces
// the snapshot with it. Source errors leave the previous snapshot untouched.
func (c *Catalog) Refresh(ctx context.Context) ([]domain.Service, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	start := time.Now()
	services, err := c.source.Load()
	if err != nil {
		c.record(0, err)
		return nil, fmt.Errorf("extract services: %w", err)
	}

	if err := c.store.Save(ctx, services); err != nil {
		c.record(0, err)
		return nil, fmt.Errorf("save snapshot: %w", err)
	}

	if c.index != nil {
		c.index.Update(services)
	}
	c.record(len(services), nil)

	c.logger.Info("services extracted",
		logger.String("path", c.source.Path()),
		logger.Int("count", len(services)),
		logger.Duration("took", time.Since(start)))

	return services, nil
}

// Ping probes every service of the current snapshot. It never extracts:
// without a snapshot it returns domain.ErrSnapshotUnavailable.
func (c *Catalog) Ping(ctx context.Context) ([]domain.PingResult, error) {
	services, err := c.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return c.Probe(ctx, services), nil
}

// Probe checks the given services. The snapshot is not touched.
func (c *Catalog) Probe(ctx context.Context, services []domain.Service) []domain.PingResult {
	results := c.prober.Probe(ctx, domain.CloneServices(services))
	if results == nil {
		results = []domain.PingResult{}
	}

	online := 0
	for _, r := range results {
		if r.Online() {
			online++
		}
	}
	c.logger.Debug("probe finished",
		logger.Int("services", len(results)),
		logger.Int("online", online))

	return results
}

func (c *Catalog) record(count int, err error) {
	if c.recorder != nil {
		c.recorder.ObserveExtraction(count, err)
	}
}
