package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/caddyboard/internal/domain"
	"github.com/MrSnakeDoc/caddyboard/internal/logger"
)

// Refresher re-extracts the service list from the Caddyfile.
type Refresher interface {
	Refresh(ctx context.Context) ([]domain.Service, error)
}

// ConfigReloader runs extractions on startup, on a ticker and on demand.
// Extractions never overlap: they all run on the reloader goroutine.
type ConfigReloader struct {
	refresher     Refresher
	logger        logger.Logger
	interval      time.Duration
	manualTrigger <-chan struct{}
	stopCh        chan struct{}
	stopOnce      sync.Once
	done          chan struct{}
}

// NewConfigReloader creates a reloader. An interval of zero disables the
// periodic reload; manualTrigger may be nil.
func NewConfigReloader(
	refresher Refresher,
	log logger.Logger,
	interval time.Duration,
	manualTrigger <-chan struct{},
) *ConfigReloader {
	return &ConfigReloader{
		refresher:     refresher,
		logger:        log,
		interval:      interval,
		manualTrigger: manualTrigger,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start loads the services once, then keeps reloading in the background.
// A failed initial load is logged and does not prevent startup: the snapshot
// is extracted lazily on first read instead.
func (cr *ConfigReloader) Start(ctx context.Context) {
	if _, err := cr.refresher.Refresh(ctx); err != nil {
		cr.logger.Warn("initial caddyfile extraction failed",
			logger.Error(err))
	}

	var tick <-chan time.Time
	var ticker *time.Ticker
	if cr.interval > 0 {
		ticker = time.NewTicker(cr.interval)
		tick = ticker.C
	}

	go func() {
		defer close(cr.done)
		if ticker != nil {
			defer ticker.Stop()
		}
		for {
			select {
			case <-tick:
				cr.reload(ctx, "periodic")
			case <-cr.manualTrigger:
				cr.logger.Info("manual reload triggered")
				cr.reload(ctx, "manual")
			case <-cr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop signals the background loop to exit. It is safe to call more than
// once. Wait on Done to know when an in-flight reload has finished.
func (cr *ConfigReloader) Stop() {
	cr.stopOnce.Do(func() { close(cr.stopCh) })
}

// Done is closed once the background loop has exited.
func (cr *ConfigReloader) Done() <-chan struct{} {
	return cr.done
}

func (cr *ConfigReloader) reload(ctx context.Context, reason string) {
	services, err := cr.refresher.Refresh(ctx)
	if err != nil {
		cr.logger.Error("failed to reload services",
			logger.String("reason", reason),
			logger.Error(err))
		return
	}
	cr.logger.Debug("reload complete",
		logger.String("reason", reason),
		logger.Int("count", len(services)))
}
