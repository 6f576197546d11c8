package poller

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"geotrack-console/internal/observability/metrics"
)

// Callback is one refresh cycle for a subscribed view. The context is the
// subscription's: once Stop has been called it is cancelled, and the callback
// must not commit results after observing cancellation.
type Callback func(ctx context.Context) error

// Poller drives recurring view refreshes. Each subscription owns its own
// timer, so a slow fetch on one resource never delays another.
type Poller struct {
	logger *log.Logger
}

// New constructs a poller.
func New(logger *log.Logger) *Poller {
	return &Poller{logger: logger}
}

// Subscription is one recurring refresh. Invocations are strictly
// sequential: a tick that fires while the previous callback is still running
// is skipped, never run concurrently.
type Subscription struct {
	id       string
	name     string
	interval time.Duration
	callback Callback
	logger   *log.Logger

	inFlight atomic.Bool
	ctx      context.Context
	cancel   context.CancelFunc
}

// Subscribe starts a recurring refresh. The callback runs once immediately,
// so views show data without waiting a full interval, then on every tick.
// Callback errors are logged and swallowed; a transient failure must not end
// the refresh cycle.
func (p *Poller) Subscribe(name string, interval time.Duration, callback Callback) *Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Subscription{
		id:       uuid.NewString(),
		name:     name,
		interval: interval,
		callback: callback,
		logger:   p.logger,
		ctx:      ctx,
		cancel:   cancel,
	}
	go s.run()
	return s
}

// ID returns the subscription handle id.
func (s *Subscription) ID() string {
	return s.id
}

// Stop cancels the subscription. An in-flight callback is allowed to finish;
// its context is cancelled so its result is discarded.
func (s *Subscription) Stop() {
	s.cancel()
}

// Done reports subscription cancellation, for callers that discard stale
// results themselves.
func (s *Subscription) Done() <-chan struct{} {
	return s.ctx.Done()
}

func (s *Subscription) run() {
	s.invoke()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.invoke()
		}
	}
}

// invoke runs the callback unless one is already in flight for this
// subscription.
func (s *Subscription) invoke() {
	if !s.inFlight.CompareAndSwap(false, true) {
		metrics.IncPollSkipped(s.name)
		if s.logger != nil {
			s.logger.Printf("poll %s [%s]: tick skipped, previous run still in flight", s.name, s.id)
		}
		return
	}
	go func() {
		defer s.inFlight.Store(false)
		if err := s.callback(s.ctx); err != nil {
			metrics.IncPollRun(s.name, metrics.ResultError)
			if s.logger != nil && s.ctx.Err() == nil {
				s.logger.Printf("poll %s [%s] error: %v", s.name, s.id, err)
			}
			return
		}
		metrics.IncPollRun(s.name, metrics.ResultSuccess)
	}()
}
