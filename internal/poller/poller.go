package poller

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/drewdunne/mrboard/internal/dashboard"
	"github.com/drewdunne/mrboard/internal/logging"
	"github.com/drewdunne/mrboard/internal/metrics"
	"github.com/drewdunne/mrboard/internal/provider"
)

// DefaultInterval is the delay between refreshes.
const DefaultInterval = 30 * time.Second

// Refresher produces the ranked entries for a viewer.
type Refresher interface {
	Refresh(ctx context.Context, viewer provider.User) ([]dashboard.Entry, error)
}

// Renderer draws one frame of entries.
type Renderer interface {
	Render(entries []dashboard.Entry, viewer provider.User) error
}

// Status describes the outcome of the most recent tick.
type Status struct {
	TickID      string    `json:"tick_id"`
	LastError   string    `json:"last_error,omitempty"`
	LastSuccess time.Time `json:"last_success"`
	Entries     int       `json:"entries"`
}

// Healthy reports whether the last tick succeeded.
func (s Status) Healthy() bool {
	return s.TickID != "" && s.LastError == ""
}

// Poller refreshes and redraws the dashboard on a fixed interval.
type Poller struct {
	refresher   Refresher
	renderer    Renderer
	viewer      provider.User
	interval    time.Duration
	exitOnError bool
	logger      *log.Logger

	mu     sync.Mutex
	status Status
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval sets the delay between ticks.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithExitOnError makes Run return on the first failed tick.
func WithExitOnError(exit bool) Option {
	return func(p *Poller) {
		p.exitOnError = exit
	}
}

// WithLogger sets the logger used for tick lines.
func WithLogger(l *log.Logger) Option {
	return func(p *Poller) {
		p.logger = l
	}
}

// New creates a Poller for viewer.
func New(refresher Refresher, renderer Renderer, viewer provider.User, opts ...Option) *Poller {
	p := &Poller{
		refresher: refresher,
		renderer:  renderer,
		viewer:    viewer,
		interval:  DefaultInterval,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run ticks immediately and then once per interval until ctx is done.
// A failed tick is logged and the previous frame stays on screen, unless
// exit-on-error is set, in which case the error is returned.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Printf("[Poller] Starting with %v poll interval for %s", p.interval, p.viewer.Username)

	if err := p.tick(ctx); err != nil && p.exitOnError && ctx.Err() == nil {
		return err
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Printf("[Poller] Stopped")
			return nil
		case <-ticker.C:
			if err := p.tick(ctx); err != nil && p.exitOnError && ctx.Err() == nil {
				return err
			}
		}
	}
}

// RunOnce performs a single tick and returns its error.
func (p *Poller) RunOnce(ctx context.Context) error {
	return p.tick(ctx)
}

// Status returns the outcome of the most recent tick.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Poller) tick(ctx context.Context) error {
	id := uuid.NewString()
	ctx = logging.WithTickID(ctx, id)
	start := time.Now()
	metrics.TickStarted()

	entries, err := p.refresher.Refresh(ctx, p.viewer)
	if err == nil {
		err = p.renderer.Render(entries, p.viewer)
	}
	if err != nil {
		metrics.TickFailed()
		p.setStatus(func(s *Status) {
			s.TickID = id
			s.LastError = err.Error()
		})
		p.logger.Printf("[Poller] Tick %s failed after %v: %v", id, time.Since(start).Round(time.Millisecond), err)
		return fmt.Errorf("tick %s: %w", id, err)
	}

	took := time.Since(start)
	metrics.TickCompleted(len(entries), took)
	p.setStatus(func(s *Status) {
		s.TickID = id
		s.LastError = ""
		s.LastSuccess = time.Now()
		s.Entries = len(entries)
	})
	p.logger.Printf("[Poller] Tick %s rendered %d merge requests in %v", id, len(entries), took.Round(time.Millisecond))
	return nil
}

func (p *Poller) setStatus(update func(*Status)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	update(&p.status)
}
