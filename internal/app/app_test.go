package app

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/caddyboard/internal/config"
	"github.com/MrSnakeDoc/caddyboard/internal/domain"
	"github.com/MrSnakeDoc/caddyboard/internal/index"
	"github.com/MrSnakeDoc/caddyboard/internal/logger"
)

func redisConfig(addr string) *config.Config {
	return &config.Config{
		SnapshotBackend:     config.BackendRedis,
		RedisAddr:           addr,
		RedisDT:             time.Second,
		RedisRT:             time.Second,
		RedisWT:             time.Second,
		RedisPoolSize:       2,
		RedisConnectTimeout: 2 * time.Second,
		RedisRetryInterval:  50 * time.Millisecond,
		RedisMaxWait:        200 * time.Millisecond,
		RedisPingTimeout:    500 * time.Millisecond,
		RedisWarnThreshold:  1,
	}
}

func TestOpenBackend_File(t *testing.T) {
	cfg := &config.Config{SnapshotBackend: config.BackendFile, DBFile: filepath.Join(t.TempDir(), "database.json")}

	b, err := OpenBackend(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	defer b.Close(logger.Nop())

	assert.Nil(t, b.Redis)
	assert.Nil(t, b.Meta)
	assert.Nil(t, snapshotMeta(b))
	_, err = b.Store.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrSnapshotUnavailable)
}

func TestOpenBackend_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	b, err := OpenBackend(context.Background(), redisConfig(mr.Addr()), logger.Nop())
	require.NoError(t, err)
	defer b.Close(logger.Nop())

	require.NotNil(t, b.Redis)
	services := []domain.Service{{Name: "A", Domains: []string{"a.lan"}, Target: "a:1"}}
	require.NoError(t, b.Store.Save(context.Background(), services))

	got, err := b.Store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, services, got)

	require.NotNil(t, snapshotMeta(b))
	meta, ok, err := snapshotMeta(b).Meta(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, meta.Count)
}

func TestOpenBackend_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := OpenBackend(context.Background(), redisConfig(addr), logger.Nop())
	require.Error(t, err)
}

func TestOpenBackend_Unknown(t *testing.T) {
	_, err := OpenBackend(context.Background(), &config.Config{SnapshotBackend: "sqlite"}, logger.Nop())
	require.Error(t, err)
}

func TestNewCatalog_ExtractAndPing(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()

	dir := t.TempDir()
	caddyfilePath := filepath.Join(dir, "Caddyfile")
	content := "# Local\nlocal.lan {\n    reverse_proxy " + ln.Addr().String() + "\n}\n\nempty.lan {\n    respond 200\n}\n"
	require.NoError(t, os.WriteFile(caddyfilePath, []byte(content), 0o644))

	cfg := &config.Config{
		CaddyfilePath:   caddyfilePath,
		SnapshotBackend: config.BackendFile,
		DBFile:          filepath.Join(dir, "database.json"),
		ProbeTimeout:    time.Second,
	}
	b, err := OpenBackend(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)

	idx := index.NewMemoryIndex()
	cat := NewCatalog(cfg, b.Store, idx, nil, logger.Nop())

	_, err = cat.Ping(context.Background())
	require.ErrorIs(t, err, domain.ErrSnapshotUnavailable)

	services, err := cat.GetCurrentServices(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "Local", services[0].Name)
	assert.True(t, idx.Loaded())

	results, err := cat.Ping(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, domain.StatusOnline, results[0].Status)
	require.NotNil(t, results[0].LatencyMs)
}
