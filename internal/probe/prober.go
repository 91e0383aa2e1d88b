// Package probe checks whether service upstreams accept TCP connections.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/caddyboard/internal/domain"
	"github.com/MrSnakeDoc/caddyboard/internal/logger"
	"github.com/MrSnakeDoc/caddyboard/internal/utils"
)

// DefaultTimeout bounds every single connection attempt.
const DefaultTimeout = 5 * time.Second

// ErrInvalidPort marks a target whose port is not numeric, such as an
// unexpanded placeholder. Such targets are reported offline without dialing.
var ErrInvalidPort = errors.New("invalid port")

// Dialer opens TCP connections. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Observer receives the outcome of each probe.
type Observer interface {
	ObserveProbe(status domain.Status, latency time.Duration)
}

// Prober runs one TCP handshake per service, all in parallel.
type Prober struct {
	timeout  time.Duration
	dialer   Dialer
	observer Observer
	logger   logger.Logger
}

// Option customizes a Prober.
type Option func(*Prober)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithDialer replaces the network dialer.
func WithDialer(d Dialer) Option {
	return func(p *Prober) { p.dialer = d }
}

// WithObserver reports every probe outcome to o.
func WithObserver(o Observer) Option {
	return func(p *Prober) { p.observer = o }
}

// New creates a Prober.
func New(log logger.Logger, opts ...Option) *Prober {
	p := &Prober{
		timeout: DefaultTimeout,
		dialer:  &net.Dialer{},
		logger:  log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Timeout returns the per-probe timeout.
func (p *Prober) Timeout() time.Duration {
	return p.timeout
}

// Probe checks every service concurrently and returns one result per
// service, in input order. It returns once every probe has settled.
//
// In-flight probes are not cancelled by ctx; each is bounded by the
// per-probe timeout only. Callers that need a shorter overall bound must
// wrap the call themselves.
func (p *Prober) Probe(ctx context.Context, services []domain.Service) []domain.PingResult {
	results := make([]domain.PingResult, len(services))

	var g errgroup.Group
	for i, svc := range services {
		g.Go(func() error {
			results[i] = p.ProbeOne(ctx, svc)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// ProbeOne checks a single service.
func (p *Prober) ProbeOne(ctx context.Context, svc domain.Service) domain.PingResult {
	if svc.Target == "" {
		p.observe(domain.StatusSkipped, 0)
		return domain.PingResult{
			Name:   svc.Name,
			Target: domain.NoTarget,
			Status: domain.StatusSkipped,
		}
	}

	result := domain.PingResult{Name: svc.Name, Target: svc.Target}

	host, port := ParseTarget(svc.Target)
	addr := net.JoinHostPort(host, port)
	p.logger.Debug("pinging upstream",
		logger.String("service", svc.Name),
		logger.String("addr", addr),
		logger.String("raw", svc.Target))

	var (
		latency time.Duration
		err     error
	)
	if validPort(port) {
		latency, err = p.dial(ctx, addr)
	} else {
		err = fmt.Errorf("%w %q", ErrInvalidPort, port)
	}
	switch {
	case err == nil:
		ms := latency.Milliseconds()
		result.Status = domain.StatusOnline
		result.LatencyMs = &ms
		p.logger.Debug("upstream online",
			logger.String("addr", addr),
			logger.Int64("latency_ms", ms))
	case isTimeout(err):
		result.Status = domain.StatusTimeout
		p.logger.Debug("upstream timeout", logger.String("addr", addr))
	default:
		result.Status = domain.StatusOffline
		result.Error = err.Error()
		p.logger.Debug("upstream offline",
			logger.String("addr", addr),
			logger.Error(err))
	}

	p.observe(result.Status, latency)
	return result
}

// dial opens and immediately closes a connection, returning the time the
// handshake took.
func (p *Prober) dial(ctx context.Context, addr string) (time.Duration, error) {
	dialCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	start := time.Now()
	conn, err := p.dialer.DialContext(dialCtx, "tcp", addr)
	elapsed := time.Since(start)
	if err != nil {
		return 0, err
	}
	utils.Close(conn)
	return elapsed, nil
}

func (p *Prober) observe(status domain.Status, latency time.Duration) {
	if p.observer != nil {
		p.observer.ObserveProbe(status, latency)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
