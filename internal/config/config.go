package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Snapshot backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

type Config struct {
	ListenPort      string        // ex: ":3000"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	CaddyfilePath   string        // path to the Caddyfile to extract services from
	SnapshotBackend string        // "file" | "redis"
	DBFile          string        // path to the JSON snapshot (file backend)
	ReloadInterval  time.Duration // periodic re-extraction (0 = startup and manual only)
	SyncInterval    time.Duration // periodic index refresh from the snapshot store (0 = off)
	ProbeTimeout    time.Duration // per-upstream TCP connect timeout

	PingRateBurst  int // burst of /api/ping requests per client
	PingRatePerMin int // sustained /api/ping requests per minute per client

	// Redis (backend = redis)
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IP (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. behind caddy itself)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("CADDYBOARD_LISTEN_PORT", ":3000"),
		ShutdownTimeout: mustDuration("CADDYBOARD_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("CADDYBOARD_LOG_LEVEL", "info"),
		PrettyLog: mustBool("CADDYBOARD_PRETTY_LOG", true),

		// Extraction and probing
		CaddyfilePath:   getenv("CADDYFILE_PATH", "./Caddyfile"),
		SnapshotBackend: strings.ToLower(getenv("CADDYBOARD_SNAPSHOT_BACKEND", BackendFile)),
		DBFile:          getenv("CADDYBOARD_DB_FILE", "./database.json"),
		ReloadInterval:  mustDuration("CADDYBOARD_RELOAD_INTERVAL", 0),
		SyncInterval:    mustDuration("CADDYBOARD_SYNC_INTERVAL", 30*time.Second),
		ProbeTimeout:    mustDuration("CADDYBOARD_PROBE_TIMEOUT", 5*time.Second),
		PingRateBurst:   getenvInt("CADDYBOARD_PING_RATE_BURST", 10),
		PingRatePerMin:  getenvInt("CADDYBOARD_PING_RATE_PER_MIN", 30),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("CADDYBOARD_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("CADDYBOARD_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("CADDYBOARD_TRUST_PROXY", false),
	}

	switch cfg.SnapshotBackend {
	case BackendFile:
	case BackendRedis:
		loadRedis(cfg)
	default:
		panic(fmt.Sprintf("❌ FATAL: CADDYBOARD_SNAPSHOT_BACKEND must be %q or %q, got %q",
			BackendFile, BackendRedis, cfg.SnapshotBackend))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfgCopy.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// loadRedis reads the redis settings, only needed by the redis backend.
func loadRedis(cfg *Config) {
	cfg.RedisAddr = requireEnv("CADDYBOARD_REDIS_ADDR")
	cfg.RedisUser = getenv("CADDYBOARD_REDIS_USERNAME", "")
	cfg.RedisPasswordRequired = mustBool("CADDYBOARD_REDIS_PASSWORD_REQUIRED", false)
	cfg.RedisPassword = getenv("CADDYBOARD_REDIS_PASSWORD", "")
	cfg.RedisDB = getenvInt("CADDYBOARD_REDIS_DB", 0)
	cfg.RedisDT = mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
	cfg.RedisRT = mustDuration("REDIS_READ_TIMEOUT", 3*time.Second)
	cfg.RedisWT = mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
	cfg.RedisMaxWait = mustDuration("REDIS_MAX_WAIT", 10*time.Second)
	cfg.RedisPingTimeout = mustDuration("REDIS_PING_TIMEOUT", 5*time.Second)
	cfg.RedisPoolSize = getenvInt("REDIS_POOL_SIZE", 10)
	cfg.RedisConnectTimeout = mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second)
	cfg.RedisRetryInterval = mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second)
	cfg.RedisWarnThreshold = getenvInt("REDIS_WARN_THRESHOLD", 3)

	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: CADDYBOARD_REDIS_PASSWORD is required when CADDYBOARD_REDIS_PASSWORD_REQUIRED=true")
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
