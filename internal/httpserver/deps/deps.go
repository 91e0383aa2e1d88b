package deps

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/caddyboard/internal/domain"
	"github.com/MrSnakeDoc/caddyboard/internal/index"
	"github.com/MrSnakeDoc/caddyboard/internal/logger"
	redisstore "github.com/MrSnakeDoc/caddyboard/internal/store/redis"
)

// Catalog is the service query surface used by the API handlers.
type Catalog interface {
	GetCurrentServices(ctx context.Context) ([]domain.Service, error)
	Refresh(ctx context.Context) ([]domain.Service, error)
	Ping(ctx context.Context) ([]domain.PingResult, error)
}

// SnapshotMetaReader reports the last snapshot write recorded by a shared
// backend, whichever instance made it.
type SnapshotMetaReader interface {
	Meta(ctx context.Context) (meta redisstore.SnapshotMeta, ok bool, err error)
}

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	AllowedHosts    []string            // Host headers allowed to access the server
	AllowedCIDRS    []string            // IPs allowed to access the admin endpoints
	TrustProxy      bool                // true if running behind a trusted reverse proxy
	PingRateBurst   int                 // burst of /api/ping requests per client
	PingRatePerMin  int                 // sustained /api/ping requests per minute per client
	CaddyfilePath   string              // Path to the Caddyfile being extracted
	SnapshotBackend string              // "file" or "redis"
	Catalog         Catalog             // Snapshot reads, refreshes and probes
	SnapshotMeta    SnapshotMetaReader  // Last-write metadata (nil with the file backend)
	MemoryIndex     *index.MemoryIndex  // In-memory copy of the current snapshot
	RedisClient     *redis.Client       // Redis client (nil with the file backend)
	Gatherer        prometheus.Gatherer // Metrics exposed on /metrics (nil disables it)
	ReloadTrigger   chan struct{}       // Channel to trigger a background re-extraction
}
