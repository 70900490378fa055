// Package health runs liveness and readiness checks for the development server.
package health

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/abirbhav/Dining-Concierge-Chatbot/pkg/logger"
)

// Check is a single named probe. Check returns nil when healthy.
type Check interface {
	Name() string
	Check(ctx context.Context) error
}

type checkFunc struct {
	name string
	fn   func(context.Context) error
}

func (c checkFunc) Name() string                    { return c.name }
func (c checkFunc) Check(ctx context.Context) error { return c.fn(ctx) }

// CheckFunc adapts fn into a Check.
func CheckFunc(name string, fn func(context.Context) error) Check {
	return checkFunc{name: name, fn: fn}
}

// CheckResult is the outcome of one check.
type CheckResult struct {
	Name    string
	Healthy bool
	Error   string
	Latency time.Duration
}

// Status aggregates the results of a probe.
type Status struct {
	Healthy bool
	Checks  []CheckResult
}

// Checker holds the registered checks.
type Checker struct {
	mu        sync.RWMutex
	liveness  []Check
	readiness []Check
	timeout   time.Duration
	logger    logger.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithTimeout bounds each check. Default is 5 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger logs failing checks.
func WithLogger(l logger.Logger) Option {
	return func(c *Checker) {
		c.logger = l
	}
}

// New returns a Checker with no checks registered.
func New(opts ...Option) *Checker {
	c := &Checker{timeout: 5 * time.Second}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddLivenessCheck registers a check deciding whether the process should be restarted.
func (c *Checker) AddLivenessCheck(check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.liveness = append(c.liveness, check)
}

// AddReadinessCheck registers a check deciding whether the process can serve traffic.
func (c *Checker) AddReadinessCheck(check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readiness = append(c.readiness, check)
}

// Liveness runs the liveness checks.
func (c *Checker) Liveness(ctx context.Context) (Status, error) {
	c.mu.RLock()
	checks := c.liveness
	c.mu.RUnlock()
	return c.run(ctx, checks)
}

// Readiness runs the readiness checks.
func (c *Checker) Readiness(ctx context.Context) (Status, error) {
	c.mu.RLock()
	checks := c.readiness
	c.mu.RUnlock()
	return c.run(ctx, checks)
}

// run executes checks concurrently. No checks means healthy.
func (c *Checker) run(ctx context.Context, checks []Check) (Status, error) {
	results := make([]CheckResult, len(checks))
	var wg sync.WaitGroup
	for i, check := range checks {
		wg.Add(1)
		go func(idx int, chk Check) {
			defer wg.Done()
			results[idx] = c.runOne(ctx, chk)
		}(i, check)
	}
	wg.Wait()

	status := Status{Healthy: true, Checks: results}
	var failed []string
	for _, r := range results {
		if !r.Healthy {
			status.Healthy = false
			failed = append(failed, r.Name)
		}
	}
	if !status.Healthy {
		sort.Strings(failed)
		return status, fmt.Errorf("health checks failed: %v", failed)
	}
	return status, nil
}

func (c *Checker) runOne(parent context.Context, check Check) CheckResult {
	ctx, cancel := context.WithTimeout(parent, c.timeout)
	defer cancel()

	start := time.Now()
	err := check.Check(ctx)
	result := CheckResult{Name: check.Name(), Healthy: err == nil, Latency: time.Since(start)}
	if err != nil {
		result.Error = err.Error()
		if c.logger != nil {
			c.logger.Warn("Health check failed",
				logger.StringField("check", result.Name),
				logger.ErrorField(err),
				logger.DurationField("latency", result.Latency),
			)
		}
	}
	return result
}
