// Package health runs periodic checks against the daemon's dependencies
// and exposes the latest results to the API.
package health

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sleepsheep/sheep/internal/infra/metrics"
	"github.com/sleepsheep/sheep/internal/logging"
)

// DefaultInterval is how often Run re-checks.
const DefaultInterval = 60 * time.Second

// Check defines a single health check with optional recovery action.
type Check struct {
	Name      string
	CheckFn   func(ctx context.Context) error
	RecoverFn func(ctx context.Context) error
}

// Status represents the result of a health check.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Pinger is anything whose connectivity can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker runs periodic health checks.
type Checker struct {
	mu       sync.RWMutex
	checks   []Check
	statuses []Status
	interval time.Duration
	log      logging.Logger
}

// NewChecker creates a checker running checks every interval.
func NewChecker(log logging.Logger, interval time.Duration, checks ...Check) *Checker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Checker{checks: checks, interval: interval, log: log}
}

// StorageCheck probes the state store.
func StorageCheck(name string, p Pinger) Check {
	return Check{
		Name: name,
		CheckFn: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return p.Ping(ctx)
		},
	}
}

// DirCheck verifies that dir, if it exists, is a writable directory.
func DirCheck(name, dir string) Check {
	return Check{
		Name:    name,
		CheckFn: func(ctx context.Context) error { return checkDir(dir) },
		RecoverFn: func(ctx context.Context) error {
			return os.MkdirAll(dir, 0o755)
		},
	}
}

// Run starts the health check loop. Call in a goroutine.
func (c *Checker) Run(ctx context.Context) {
	c.runAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.runAll(ctx)
		}
	}
}

// RunOnce runs every check a single time.
func (c *Checker) RunOnce(ctx context.Context) {
	c.runAll(ctx)
}

func (c *Checker) runAll(ctx context.Context) {
	statuses := make([]Status, len(c.checks))
	for i, check := range c.checks {
		s := Status{Name: check.Name, CheckedAt: time.Now(), Healthy: true}
		if err := check.CheckFn(ctx); err != nil {
			s.Healthy = false
			s.Error = err.Error()
			if c.log != nil {
				c.log.Warnf("health check %s failed: %v", check.Name, err)
			}
			if check.RecoverFn != nil {
				if rerr := check.RecoverFn(ctx); rerr != nil && c.log != nil {
					c.log.Errorf("health check %s recovery failed: %v", check.Name, rerr)
				}
			}
		}
		gauge := 0.0
		if s.Healthy {
			gauge = 1
		}
		metrics.HealthCheckStatus.WithLabelValues(check.Name).Set(gauge)
		statuses[i] = s
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

// Statuses returns the latest health check results.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Status, len(c.statuses))
	copy(result, c.statuses)
	return result
}

// IsHealthy returns true if all checks pass.
func (c *Checker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}

func checkDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // created on first write
		}
		return fmt.Errorf("check dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}
