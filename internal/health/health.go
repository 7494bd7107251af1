// Package health tracks dependency health with periodic probes and exposes
// a cached, non-blocking service-level flag.
package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Checker is implemented by component-level checkers.
type Checker interface {
	Name() string
	IsHealthy() bool
	Start(ctx context.Context, interval time.Duration)
}

// ServiceHealthChecker aggregates component checkers into a single flag.
type ServiceHealthChecker struct {
	healthy atomic.Int32
	deps    []Checker
	log     zerolog.Logger
}

// NewServiceHealthChecker aggregates deps into one service-wide flag.
func NewServiceHealthChecker(log zerolog.Logger, deps ...Checker) *ServiceHealthChecker {
	return &ServiceHealthChecker{deps: deps, log: log}
}

// IsHealthy returns cached service health.
func (h *ServiceHealthChecker) IsHealthy() bool { return h.healthy.Load() == 1 }

// Unhealthy lists the names of dependencies currently failing.
func (h *ServiceHealthChecker) Unhealthy() []string {
	var out []string
	for _, c := range h.deps {
		if !c.IsHealthy() {
			out = append(out, c.Name())
		}
	}
	return out
}

// Start re-evaluates dependency health every interval until ctx is done and
// logs transitions.
func (h *ServiceHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := int32(-1)
	eval := func() {
		var cur int32
		down := h.Unhealthy()
		if len(down) == 0 {
			cur = 1
		}
		h.healthy.Store(cur)
		if cur != prev {
			if cur == 1 {
				h.log.Info().Msg("service health: UP")
			} else {
				h.log.Error().Strs("unhealthy", down).Msg("service health: DOWN")
			}
			prev = cur
		}
	}

	eval()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			eval()
		}
	}
}

// WaitUntilHealthy polls h until it reports healthy, ctx ends, or timeout passes.
func WaitUntilHealthy(ctx context.Context, h interface{ IsHealthy() bool }, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		if h.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrStartupTimeout{Timeout: timeout}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ErrStartupTimeout is returned when dependencies stay unhealthy for the whole startup window.
type ErrStartupTimeout struct{ Timeout time.Duration }

func (e ErrStartupTimeout) Error() string {
	return "startup aborted: dependencies not healthy within " + e.Timeout.String()
}
