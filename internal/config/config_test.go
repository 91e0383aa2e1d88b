package config

import (
	"testing"
	"time"
)

// clearEnv blanks every variable Load reads, so the host environment does
// not leak into the defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CADDYBOARD_LISTEN_PORT", "CADDYBOARD_SHUTDOWN_TIMEOUT",
		"CADDYBOARD_LOG_LEVEL", "CADDYBOARD_PRETTY_LOG",
		"CADDYFILE_PATH", "CADDYBOARD_SNAPSHOT_BACKEND", "CADDYBOARD_DB_FILE",
		"CADDYBOARD_RELOAD_INTERVAL", "CADDYBOARD_SYNC_INTERVAL", "CADDYBOARD_PROBE_TIMEOUT",
		"CADDYBOARD_PING_RATE_BURST", "CADDYBOARD_PING_RATE_PER_MIN",
		"CADDYBOARD_ALLOWED_HOSTS", "CADDYBOARD_ALLOWED_CIDRS", "CADDYBOARD_TRUST_PROXY",
		"CADDYBOARD_REDIS_ADDR", "CADDYBOARD_REDIS_USERNAME", "CADDYBOARD_REDIS_PASSWORD",
		"CADDYBOARD_REDIS_PASSWORD_REQUIRED", "CADDYBOARD_REDIS_DB",
		"REDIS_DIAL_TIMEOUT", "REDIS_READ_TIMEOUT", "REDIS_WRITE_TIMEOUT",
		"REDIS_MAX_WAIT", "REDIS_PING_TIMEOUT", "REDIS_POOL_SIZE",
		"REDIS_CONNECT_TIMEOUT", "REDIS_RETRY_INTERVAL", "REDIS_WARN_THRESHOLD",
	} {
		t.Setenv(key, "")
	}
}

func expectPanic(t *testing.T, name string) {
	t.Helper()
	if r := recover(); r == nil {
		t.Errorf("%s should have panicked", name)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.ListenPort != ":3000" {
		t.Errorf("ListenPort = %q, want :3000", cfg.ListenPort)
	}
	if cfg.CaddyfilePath != "./Caddyfile" {
		t.Errorf("CaddyfilePath = %q, want ./Caddyfile", cfg.CaddyfilePath)
	}
	if cfg.SnapshotBackend != BackendFile {
		t.Errorf("SnapshotBackend = %q, want %q", cfg.SnapshotBackend, BackendFile)
	}
	if cfg.DBFile != "./database.json" {
		t.Errorf("DBFile = %q, want ./database.json", cfg.DBFile)
	}
	if cfg.ReloadInterval != 0 {
		t.Errorf("ReloadInterval = %v, want 0", cfg.ReloadInterval)
	}
	if cfg.SyncInterval != 30*time.Second {
		t.Errorf("SyncInterval = %v, want 30s", cfg.SyncInterval)
	}
	if cfg.ProbeTimeout != 5*time.Second {
		t.Errorf("ProbeTimeout = %v, want 5s", cfg.ProbeTimeout)
	}
	if cfg.PingRateBurst != 10 || cfg.PingRatePerMin != 30 {
		t.Errorf("ping rate = %d/%d, want 10/30", cfg.PingRateBurst, cfg.PingRatePerMin)
	}
	if cfg.TrustProxy {
		t.Error("TrustProxy should default to false")
	}
	if cfg.AllowedHosts != nil || cfg.AllowedCIDRS != nil {
		t.Error("access restrictions should be empty by default")
	}
	if cfg.RedisAddr != "" {
		t.Error("redis settings should not be read for the file backend")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CADDYFILE_PATH", "/etc/caddy/Caddyfile")
	t.Setenv("CADDYBOARD_RELOAD_INTERVAL", "1m")
	t.Setenv("CADDYBOARD_SYNC_INTERVAL", "0")
	t.Setenv("CADDYBOARD_PROBE_TIMEOUT", "750ms")
	t.Setenv("CADDYBOARD_ALLOWED_HOSTS", "board.lan, 10.0.0.2:3000")
	t.Setenv("CADDYBOARD_ALLOWED_CIDRS", "10.0.0.0/8")

	cfg := Load()

	if cfg.CaddyfilePath != "/etc/caddy/Caddyfile" {
		t.Errorf("CaddyfilePath = %q", cfg.CaddyfilePath)
	}
	if cfg.ReloadInterval != time.Minute {
		t.Errorf("ReloadInterval = %v, want 1m", cfg.ReloadInterval)
	}
	if cfg.SyncInterval != 0 {
		t.Errorf("SyncInterval = %v, want 0", cfg.SyncInterval)
	}
	if cfg.ProbeTimeout != 750*time.Millisecond {
		t.Errorf("ProbeTimeout = %v, want 750ms", cfg.ProbeTimeout)
	}
	if len(cfg.AllowedHosts) != 2 || cfg.AllowedHosts[1] != "10.0.0.2:3000" {
		t.Errorf("AllowedHosts = %v", cfg.AllowedHosts)
	}
	if len(cfg.AllowedCIDRS) != 1 || cfg.AllowedCIDRS[0] != "10.0.0.0/8" {
		t.Errorf("AllowedCIDRS = %v", cfg.AllowedCIDRS)
	}
}

func TestLoadRedisBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("CADDYBOARD_SNAPSHOT_BACKEND", "Redis")
	t.Setenv("CADDYBOARD_REDIS_ADDR", "localhost:6379")
	t.Setenv("CADDYBOARD_REDIS_DB", "2")

	cfg := Load()

	if cfg.SnapshotBackend != BackendRedis {
		t.Errorf("SnapshotBackend = %q, want %q", cfg.SnapshotBackend, BackendRedis)
	}
	if cfg.RedisAddr != "localhost:6379" || cfg.RedisDB != 2 {
		t.Errorf("redis = %s/%d", cfg.RedisAddr, cfg.RedisDB)
	}
	if cfg.RedisConnectTimeout != 30*time.Second || cfg.RedisPoolSize != 10 {
		t.Errorf("redis defaults not applied: %+v", cfg)
	}
}

func TestLoadRedisBackendRequiresAddr(t *testing.T) {
	clearEnv(t)
	t.Setenv("CADDYBOARD_SNAPSHOT_BACKEND", "redis")

	defer expectPanic(t, "Load()")
	Load()
}

func TestLoadRedisPasswordRequired(t *testing.T) {
	clearEnv(t)
	t.Setenv("CADDYBOARD_SNAPSHOT_BACKEND", "redis")
	t.Setenv("CADDYBOARD_REDIS_ADDR", "localhost:6379")
	t.Setenv("CADDYBOARD_REDIS_PASSWORD_REQUIRED", "true")

	defer expectPanic(t, "Load()")
	Load()
}

func TestLoadUnknownBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("CADDYBOARD_SNAPSHOT_BACKEND", "sqlite")

	defer expectPanic(t, "Load()")
	Load()
}

func TestRequireEnv(t *testing.T) {
	t.Run("variable set", func(t *testing.T) {
		t.Setenv("TEST_VAR", "test_value")
		if got := requireEnv("TEST_VAR"); got != "test_value" {
			t.Errorf("requireEnv() = %v, want test_value", got)
		}
	})

	t.Run("variable not set", func(t *testing.T) {
		t.Setenv("TEST_VAR_MISSING", "")
		defer expectPanic(t, "requireEnv()")
		requireEnv("TEST_VAR_MISSING")
	})
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected []string
	}{
		{name: "empty", value: "", expected: nil},
		{name: "single value", value: "value1", expected: []string{"value1"}},
		{name: "multiple values", value: "value1, value2 ,value3", expected: []string{"value1", "value2", "value3"}},
		{name: "quotes and blanks", value: `"a.lan", ,'b.lan'`, expected: []string{"a.lan", "b.lan"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitAndTrim(tt.value)
			if len(result) != len(tt.expected) {
				t.Fatalf("splitAndTrim() = %v, want %v", result, tt.expected)
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("splitAndTrim()[%d] = %v, want %v", i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "TEST_DURATION",
			value:    "5s",
			def:      1 * time.Second,
			expected: 5 * time.Second,
		},
		{
			name:     "invalid duration uses default",
			key:      "TEST_DURATION_INVALID",
			value:    "invalid",
			def:      10 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_DURATION_MISSING",
			value:    "",
			def:      15 * time.Second,
			expected: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			result := mustDuration(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      bool
		expected bool
	}{
		{name: "true value", key: "TEST_BOOL", value: "true", def: false, expected: true},
		{name: "false value", key: "TEST_BOOL_FALSE", value: "false", def: true, expected: false},
		{name: "invalid value uses default", key: "TEST_BOOL_INVALID", value: "invalid", def: true, expected: true},
		{name: "missing variable uses default", key: "TEST_BOOL_MISSING", value: "", def: false, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			result := mustBool(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestGetenvInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_INT_INVALID", "nope")

	if got := getenvInt("TEST_INT", 1); got != 42 {
		t.Errorf("getenvInt() = %d, want 42", got)
	}
	if got := getenvInt("TEST_INT_INVALID", 7); got != 7 {
		t.Errorf("getenvInt() = %d, want default 7", got)
	}
}
