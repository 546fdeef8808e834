package paywall

import (
	"context"
	"sync"
	"time"

	"github.com/julianstephens/sleepr/internal/constants"
	"github.com/julianstephens/sleepr/internal/logger"
)

// Gate answers "is the user subscribed" with a bounded wait. Anything other than a timely
// active status counts as not subscribed.
type Gate struct {
	svc     Service
	timeout time.Duration

	initMu      sync.Mutex
	initialized bool
}

func NewGate(svc Service, timeout time.Duration) *Gate {
	if timeout <= 0 {
		timeout = constants.DefaultPaywallTimeout
	}
	return &Gate{svc: svc, timeout: timeout}
}

type statusResult struct {
	status Status
	err    error
}

// IsSubscribed never blocks longer than the gate's timeout.
func (g *Gate) IsSubscribed(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	ch := make(chan statusResult, 1)
	go func() {
		if err := g.initialize(ctx); err != nil {
			ch <- statusResult{err: err}
			return
		}
		st, err := g.svc.SubscriptionStatus(ctx)
		ch <- statusResult{status: st, err: err}
	}()

	select {
	case <-ctx.Done():
		logger.Warn("Subscription check timed out", "timeout", g.timeout)
		return false
	case r := <-ch:
		if r.err != nil {
			logger.Warn("Subscription check failed", "error", r.err)
			return false
		}
		return r.status == StatusActive
	}
}

// Present shows the paywall for trigger.
func (g *Gate) Present(ctx context.Context, trigger string) error {
	if err := g.initialize(ctx); err != nil {
		return err
	}
	return g.svc.PresentPaywall(ctx, trigger)
}

// initialize runs Initialize until it succeeds once. A failure is retried on the next call.
func (g *Gate) initialize(ctx context.Context) error {
	g.initMu.Lock()
	defer g.initMu.Unlock()

	if g.initialized {
		return nil
	}
	if err := g.svc.Initialize(ctx); err != nil {
		return err
	}
	g.initialized = true
	return nil
}
