package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/MrSnakeDoc/caddyboard/internal/catalog"
	"github.com/MrSnakeDoc/caddyboard/internal/config"
	"github.com/MrSnakeDoc/caddyboard/internal/httpserver"
	"github.com/MrSnakeDoc/caddyboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/caddyboard/internal/index"
	"github.com/MrSnakeDoc/caddyboard/internal/logger"
	"github.com/MrSnakeDoc/caddyboard/internal/metrics"
	"github.com/MrSnakeDoc/caddyboard/internal/probe"
	"github.com/MrSnakeDoc/caddyboard/internal/scheduler"
	"github.com/MrSnakeDoc/caddyboard/internal/sources/caddyfile"
	"github.com/MrSnakeDoc/caddyboard/internal/version"
)

type App struct {
	cfg      *config.Config
	logger   logger.Logger
	server   *httpserver.Server
	backend  *Backend
	memIndex *index.MemoryIndex
	catalog  *catalog.Catalog
	reloader *scheduler.ConfigReloader
	syncer   *scheduler.SnapshotSyncer
}

// NewCatalog wires the Caddyfile source, the snapshot store and the prober.
// idx and m may be nil.
func NewCatalog(cfg *config.Config, store catalog.SnapshotStore, idx *index.MemoryIndex, m *metrics.Metrics, log logger.Logger) *catalog.Catalog {
	prober := probe.New(log,
		probe.WithTimeout(cfg.ProbeTimeout),
		probe.WithObserver(m))

	var ix catalog.Index
	if idx != nil {
		ix = idx
	}
	return catalog.New(caddyfile.NewLoader(cfg.CaddyfilePath), store, prober, ix, m, log)
}

func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	backend, err := OpenBackend(ctx, cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	memIndex := index.NewMemoryIndex()

	// Serve the last known snapshot while the first extraction runs.
	syncer := scheduler.NewSnapshotSyncer(backend.Store, memIndex, loggerClient)
	if err := syncer.Sync(ctx); err != nil {
		loggerClient.Warn("failed to sync snapshot on startup, will extract from caddyfile",
			logger.Error(err))
	}

	cat := NewCatalog(cfg, backend.Store, memIndex, m, loggerClient)

	// Create manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)

	reloader := scheduler.NewConfigReloader(
		cat,
		loggerClient,
		cfg.ReloadInterval,
		reloadTrigger,
	)

	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		PingRateBurst:   cfg.PingRateBurst,
		PingRatePerMin:  cfg.PingRatePerMin,
		CaddyfilePath:   cfg.CaddyfilePath,
		SnapshotBackend: cfg.SnapshotBackend,
		Catalog:         cat,
		SnapshotMeta:    snapshotMeta(backend),
		MemoryIndex:     memIndex,
		RedisClient:     backend.Redis,
		Gatherer:        registry,
		ReloadTrigger:   reloadTrigger,
	}

	server := httpserver.New(cfg.ListenPort, cfg.ProbeTimeout, loggerClient, d)

	return &App{
		cfg:      cfg,
		logger:   loggerClient,
		server:   server,
		backend:  backend,
		memIndex: memIndex,
		catalog:  cat,
		reloader: reloader,
		syncer:   syncer,
	}, nil
}

// snapshotMeta avoids storing a typed nil in the interface.
func snapshotMeta(b *Backend) deps.SnapshotMetaReader {
	if b.Meta == nil {
		return nil
	}
	return b.Meta
}

// Run extracts the services, starts the reloader and serves HTTP until
// SIGINT or SIGTERM.
func (a *App) Run(parent context.Context) error {
	a.logger.Infof("🚀 Starting caddyboard %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("caddyboard %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initial extraction, then periodic and manual reloads
	a.reloader.Start(ctx)
	a.logger.Info("config reloader started",
		logger.String("caddyfile", a.cfg.CaddyfilePath),
		logger.Duration("interval", a.cfg.ReloadInterval))

	// Pick up snapshot writes made outside this process
	syncCtx, stopSync := context.WithCancel(ctx)
	defer stopSync()
	go a.syncer.Run(syncCtx, a.cfg.SyncInterval)

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	a.reloader.Stop()
	stopSync()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	select {
	case <-a.reloader.Done():
	case <-shutdownCtx.Done():
		a.logger.Warn("reload still running at shutdown")
	}
	select {
	case <-a.syncer.Done():
	case <-shutdownCtx.Done():
		a.logger.Warn("snapshot sync still running at shutdown")
	}

	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	a.backend.Close(a.logger)

	if runErr != nil {
		return runErr
	}
	a.logger.Info("✅ caddyboard stopped cleanly")
	return nil
}
