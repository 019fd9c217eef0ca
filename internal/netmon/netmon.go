// Package netmon tracks whether the storefront API is reachable so that
// requests can fail fast while the network is down.
package netmon

import (
	"context"
	"errors"
	"net"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pomerium/storefront/internal/log"
)

// A Monitor reports network connectivity.
type Monitor interface {
	IsConnected() bool
}

// Static is a Monitor with a fixed answer.
type Static bool

// IsConnected returns s.
func (s Static) IsConnected() bool {
	return bool(s)
}

// Defaults for a Prober.
const (
	DefaultInterval    = 15 * time.Second
	DefaultDialTimeout = 3 * time.Second
)

var errOffline = errors.New("netmon: offline")

// A Dialer opens network connections.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// A Prober checks connectivity by opening a TCP connection to an address.
// It starts out connected. While connected it probes every interval; while
// disconnected it probes with an exponential backoff capped at the interval.
type Prober struct {
	addr        string
	interval    time.Duration
	dialTimeout time.Duration
	dialer      Dialer

	connected atomic.Bool

	mu        sync.Mutex
	listeners []func(connected bool)
	cancel    context.CancelFunc
	done      chan struct{}
}

// A ProberOption customizes a Prober.
type ProberOption func(*Prober)

// WithInterval sets how often a connected prober checks the address.
func WithInterval(interval time.Duration) ProberOption {
	return func(p *Prober) {
		p.interval = interval
	}
}

// WithDialTimeout bounds each probe.
func WithDialTimeout(timeout time.Duration) ProberOption {
	return func(p *Prober) {
		p.dialTimeout = timeout
	}
}

// WithDialer sets the dialer used to probe.
func WithDialer(dialer Dialer) ProberOption {
	return func(p *Prober) {
		p.dialer = dialer
	}
}

// NewProber creates a new Prober for the host:port addr.
func NewProber(addr string, options ...ProberOption) *Prober {
	p := &Prober{
		addr:        addr,
		interval:    DefaultInterval,
		dialTimeout: DefaultDialTimeout,
		dialer:      &net.Dialer{},
	}
	for _, option := range options {
		option(p)
	}
	p.connected.Store(true)
	return p
}

// IsConnected reports the result of the last probe.
func (p *Prober) IsConnected() bool {
	return p.connected.Load()
}

// OnStatusChange registers fn to be called whenever connectivity changes.
func (p *Prober) OnStatusChange(fn func(connected bool)) {
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	p.mu.Unlock()
}

// Check probes the address once and records the result.
func (p *Prober) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.dialTimeout)
	defer cancel()

	conn, err := p.dialer.DialContext(ctx, "tcp", p.addr)
	connected := err == nil
	if connected {
		_ = conn.Close()
	}

	if p.connected.Swap(connected) != connected {
		log.Info(ctx).Str("addr", p.addr).Bool("connected", connected).Msg("netmon: connectivity changed")
		p.mu.Lock()
		listeners := slices.Clone(p.listeners)
		p.mu.Unlock()
		for _, fn := range listeners {
			fn(connected)
		}
	}
	return connected
}

// Start probes in the background until Stop is called or ctx is done.
func (p *Prober) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	go p.run(ctx, p.done)
}

// Stop stops background probing and waits for it to finish.
func (p *Prober) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (p *Prober) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = min(time.Second, p.interval)
	b.MaxInterval = p.interval
	b.MaxElapsedTime = 0

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		err := backoff.RetryNotify(func() error {
			if p.Check(ctx) {
				return nil
			}
			return errOffline
		}, backoff.WithContext(b, ctx), func(_ error, next time.Duration) {
			log.Debug(ctx).Str("addr", p.addr).Dur("next", next).Msg("netmon: offline, probing again")
		})
		if err != nil {
			return
		}
		b.Reset()
		timer.Reset(p.interval)
	}
}
