package probe

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/caddyboard/internal/domain"
	"github.com/MrSnakeDoc/caddyboard/internal/logger"
)

// fakeDialer answers per address after an optional delay.
type fakeDialer struct {
	mu     sync.Mutex
	delays map[string]time.Duration
	errs   map[string]error
	calls  atomic.Int32
	seen   []string
}

func (f *fakeDialer) DialContext(ctx context.Context, _, address string) (net.Conn, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.seen = append(f.seen, address)
	delay := f.delays[address]
	err := f.errs[address]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	client, server := net.Pipe()
	_ = server.Close()
	return client, nil
}

type countingObserver struct {
	mu     sync.Mutex
	counts map[domain.Status]int
}

func (o *countingObserver) ObserveProbe(status domain.Status, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counts == nil {
		o.counts = map[domain.Status]int{}
	}
	o.counts[status]++
}

func listen(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()
	return ln
}

func TestProbeOne_Online(t *testing.T) {
	ln := listen(t)
	p := New(logger.Nop())

	res := p.ProbeOne(context.Background(), domain.Service{Name: "Local", Target: ln.Addr().String()})

	assert.Equal(t, domain.StatusOnline, res.Status)
	require.NotNil(t, res.LatencyMs)
	assert.GreaterOrEqual(t, *res.LatencyMs, int64(0))
	assert.Equal(t, ln.Addr().String(), res.Target)
	assert.Empty(t, res.Error)
}

func TestProbeOne_Offline(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	p := New(logger.Nop(), WithTimeout(time.Second))
	res := p.ProbeOne(context.Background(), domain.Service{Name: "Closed", Target: addr})

	assert.Equal(t, domain.StatusOffline, res.Status)
	assert.Nil(t, res.LatencyMs)
	assert.NotEmpty(t, res.Error)
}

func TestProbeOne_Timeout(t *testing.T) {
	dialer := &fakeDialer{delays: map[string]time.Duration{"slow.lan:80": time.Minute}}
	p := New(logger.Nop(), WithDialer(dialer), WithTimeout(50*time.Millisecond))

	start := time.Now()
	res := p.ProbeOne(context.Background(), domain.Service{Name: "Slow", Target: "slow.lan"})

	assert.Equal(t, domain.StatusTimeout, res.Status)
	assert.Nil(t, res.LatencyMs)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestProbeOne_SkippedWithoutTarget(t *testing.T) {
	dialer := &fakeDialer{}
	p := New(logger.Nop(), WithDialer(dialer))

	res := p.ProbeOne(context.Background(), domain.Service{Name: "Empty", Target: ""})

	assert.Equal(t, domain.StatusSkipped, res.Status)
	assert.Equal(t, domain.NoTarget, res.Target)
	assert.Nil(t, res.LatencyMs)
	assert.Zero(t, dialer.calls.Load(), "no network call for skipped probes")
}

func TestProbeOne_UnreachableIsNeverOnline(t *testing.T) {
	p := New(logger.Nop(), WithTimeout(2*time.Second))

	start := time.Now()
	res := p.ProbeOne(context.Background(), domain.Service{Name: "Nowhere", Target: "https://unreachable.invalid"})

	assert.Contains(t, []domain.Status{domain.StatusOffline, domain.StatusTimeout}, res.Status)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestProbeOne_DialsInferredPort(t *testing.T) {
	dialer := &fakeDialer{}
	p := New(logger.Nop(), WithDialer(dialer))

	p.ProbeOne(context.Background(), domain.Service{Name: "Tls", Target: "https://vault.lan"})
	p.ProbeOne(context.Background(), domain.Service{Name: "Plain", Target: "http://wiki.lan"})

	assert.Equal(t, []string{"vault.lan:443", "wiki.lan:80"}, dialer.seen)
}

func TestProbeOne_NonNumericPortIsOffline(t *testing.T) {
	targets := []string{"backend:{$APP_PORT}", "backend:abc", "https://vault.lan:{env.PORT}"}

	for _, target := range targets {
		t.Run(target, func(t *testing.T) {
			dialer := &fakeDialer{}
			obs := &countingObserver{}
			p := New(logger.Nop(), WithDialer(dialer), WithObserver(obs))

			res := p.ProbeOne(context.Background(), domain.Service{Name: "Placeholder", Target: target})

			assert.Equal(t, domain.StatusOffline, res.Status)
			assert.Nil(t, res.LatencyMs)
			assert.Contains(t, res.Error, "invalid port")
			assert.Equal(t, int32(0), dialer.calls.Load())
			assert.Equal(t, 1, obs.counts[domain.StatusOffline])
		})
	}
}

func TestProbe_PreservesInputOrder(t *testing.T) {
	dialer := &fakeDialer{
		delays: map[string]time.Duration{
			"a.lan:80": 80 * time.Millisecond,
			"b.lan:80": 10 * time.Millisecond,
			"c.lan:80": 40 * time.Millisecond,
		},
		errs: map[string]error{"c.lan:80": errors.New("connection refused")},
	}
	p := New(logger.Nop(), WithDialer(dialer))

	services := []domain.Service{
		{Name: "A", Target: "a.lan"},
		{Name: "B", Target: "b.lan"},
		{Name: "Skip", Target: ""},
		{Name: "C", Target: "c.lan"},
	}
	results := p.Probe(context.Background(), services)

	require.Len(t, results, len(services))
	for i, svc := range services {
		assert.Equal(t, svc.Name, results[i].Name)
	}
	assert.Equal(t, domain.StatusOnline, results[0].Status)
	assert.Equal(t, domain.StatusOnline, results[1].Status)
	assert.Equal(t, domain.StatusSkipped, results[2].Status)
	assert.Equal(t, domain.StatusOffline, results[3].Status)
}

func TestProbe_RunsConcurrently(t *testing.T) {
	delays := map[string]time.Duration{}
	var services []domain.Service
	for _, h := range []string{"a", "b", "c", "d", "e", "f"} {
		delays[h+".lan:80"] = 150 * time.Millisecond
		services = append(services, domain.Service{Name: h, Target: h + ".lan"})
	}
	p := New(logger.Nop(), WithDialer(&fakeDialer{delays: delays}))

	start := time.Now()
	results := p.Probe(context.Background(), services)
	elapsed := time.Since(start)

	require.Len(t, results, 6)
	assert.Less(t, elapsed, 600*time.Millisecond, "total time is bounded by the slowest probe, not the sum")
}

func TestProbe_CallerCancellationDoesNotAbortProbes(t *testing.T) {
	dialer := &fakeDialer{delays: map[string]time.Duration{"a.lan:80": 50 * time.Millisecond}}
	p := New(logger.Nop(), WithDialer(dialer))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := p.Probe(ctx, []domain.Service{{Name: "A", Target: "a.lan"}})
	require.Len(t, results, 1)
	assert.Equal(t, domain.StatusOnline, results[0].Status)
}

func TestProbe_EmptyInput(t *testing.T) {
	p := New(logger.Nop())
	results := p.Probe(context.Background(), nil)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestProbe_ReportsToObserver(t *testing.T) {
	obs := &countingObserver{}
	dialer := &fakeDialer{errs: map[string]error{"down.lan:80": errors.New("refused")}}
	p := New(logger.Nop(), WithDialer(dialer), WithObserver(obs))

	p.Probe(context.Background(), []domain.Service{
		{Name: "Up", Target: "up.lan"},
		{Name: "Down", Target: "down.lan"},
		{Name: "None"},
	})

	assert.Equal(t, 1, obs.counts[domain.StatusOnline])
	assert.Equal(t, 1, obs.counts[domain.StatusOffline])
	assert.Equal(t, 1, obs.counts[domain.StatusSkipped])
}

func TestNew_Defaults(t *testing.T) {
	p := New(logger.Nop(), WithTimeout(0))
	assert.Equal(t, DefaultTimeout, p.Timeout())
}
