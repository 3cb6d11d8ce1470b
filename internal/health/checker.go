// Package health runs readiness probes against the service's external
// collaborators: the database and the map tile provider.
package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ProbeFunc checks one dependency.
type ProbeFunc func(ctx context.Context) error

// Result is one probe's outcome.
type Result struct {
	Name     string        `json:"name"`
	Healthy  bool          `json:"healthy"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// MetricsRecordFunc is an optional callback for recording probe results.
type MetricsRecordFunc func(success bool)

// Checker runs its registered probes concurrently with a shared timeout.
type Checker struct {
	timeout   time.Duration
	logger    *zap.Logger
	onMetrics MetricsRecordFunc

	mu     sync.Mutex
	probes []struct {
		name string
		fn   ProbeFunc
	}
}

// New creates a Checker. timeout bounds each probe (default 5s).
func New(timeout time.Duration, logger *zap.Logger) *Checker {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Checker{timeout: timeout, logger: logger}
}

// SetMetricsRecord configures the probe-result metrics callback.
func (c *Checker) SetMetricsRecord(fn MetricsRecordFunc) { c.onMetrics = fn }

// Register adds a named probe.
func (c *Checker) Register(name string, fn ProbeFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probes = append(c.probes, struct {
		name string
		fn   ProbeFunc
	}{name, fn})
}

// Run executes all probes and returns their results.
func (c *Checker) Run(ctx context.Context) []Result {
	c.mu.Lock()
	probes := make([]struct {
		name string
		fn   ProbeFunc
	}, len(c.probes))
	copy(probes, c.probes)
	c.mu.Unlock()

	results := make([]Result, len(probes))
	var wg sync.WaitGroup
	for i, p := range probes {
		i, p := i, p
		wg.Add(1)
		go func() {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			start := time.Now()
			err := p.fn(pctx)
			res := Result{Name: p.name, Healthy: err == nil, Duration: time.Since(start)}
			if err != nil {
				res.Error = err.Error()
				c.logger.Warn("health probe failed", zap.String("probe", p.name), zap.Error(err))
			}
			if c.onMetrics != nil {
				c.onMetrics(err == nil)
			}
			results[i] = res
		}()
	}
	wg.Wait()
	return results
}

// Healthy reports whether every probe passed.
func (c *Checker) Healthy(ctx context.Context) bool {
	for _, r := range c.Run(ctx) {
		if !r.Healthy {
			return false
		}
	}
	return true
}
