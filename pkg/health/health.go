// Package health aggregates readiness checks for a service built around the
// HTTP client: its audit database, and the saturation of its own
// interceptor pipeline. It exposes the aggregate over the same gRPC health
// protocol connectrpc.com/grpchealth serves, so an embedding service can
// mount it next to its own handlers.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"connectrpc.com/connect"
	"connectrpc.com/grpchealth"

	"github.com/deepworx/go-httpclient/pkg/postgres"
)

// Checker reports the readiness of one dependency.
type Checker interface {
	// Check returns true if the dependency is ready. ctx carries the
	// configured per-check timeout.
	Check(ctx context.Context) bool
}

// CheckerFunc adapts a plain function to Checker.
type CheckerFunc func(ctx context.Context) bool

// Check implements Checker.
func (f CheckerFunc) Check(ctx context.Context) bool { return f(ctx) }

// Config holds configuration for the health aggregator.
type Config struct {
	// Interval between health check cycles.
	Interval time.Duration `koanf:"interval"`

	// Timeout for each individual health check.
	Timeout time.Duration `koanf:"timeout"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{Interval: 10 * time.Second, Timeout: 5 * time.Second}
}

// Aggregator probes registered checkers in parallel and keeps a gRPC health
// status current. Unlike a server's health endpoint, this one describes
// whether the client's own dependencies (audit database, token source,
// saturation) are in good enough shape to keep sending requests.
type Aggregator struct {
	cfg     Config
	checker *grpchealth.StaticChecker

	mu       sync.RWMutex
	services map[string]Checker
	serving  bool
}

// NewAggregator creates a new health aggregator. It starts in NotServing
// state until the first check cycle completes.
func NewAggregator(cfg Config) *Aggregator {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	checker := grpchealth.NewStaticChecker()
	checker.SetStatus("", grpchealth.StatusNotServing)

	return &Aggregator{cfg: cfg, checker: checker, services: make(map[string]Checker)}
}

// Register adds a checker under name. Returns the Aggregator for chaining.
// Panics if name is empty or already registered.
func (a *Aggregator) Register(name string, checker Checker) *Aggregator {
	if name == "" {
		panic("health: name cannot be empty")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.services[name]; exists {
		panic("health: checker already registered: " + name)
	}
	a.services[name] = checker
	return a
}

// Handler returns the HTTP handler for the gRPC health endpoint, for
// mounting on an embedding service's mux.
func (a *Aggregator) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	return grpchealth.NewHandler(a.checker, opts...)
}

// Run starts the health check loop and blocks until ctx is cancelled.
func (a *Aggregator) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.cfg.Interval)
	defer ticker.Stop()

	a.runChecks(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			a.runChecks(ctx)
		}
	}
}

// IsServing returns the current aggregate health status.
func (a *Aggregator) IsServing() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.serving
}

func (a *Aggregator) runChecks(ctx context.Context) {
	a.mu.RLock()
	services := make(map[string]Checker, len(a.services))
	for name, checker := range a.services {
		services[name] = checker
	}
	a.mu.RUnlock()

	if len(services) == 0 {
		a.updateStatus(true, nil)
		return
	}

	results := make(map[string]bool, len(services))
	var resultsMu sync.Mutex
	var wg sync.WaitGroup

	for name, checker := range services {
		wg.Add(1)
		go func(name string, checker Checker) {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
			defer cancel()
			healthy := a.safeCheck(checkCtx, name, checker)
			resultsMu.Lock()
			results[name] = healthy
			resultsMu.Unlock()
		}(name, checker)
	}
	wg.Wait()

	allHealthy := true
	for _, healthy := range results {
		if !healthy {
			allHealthy = false
			break
		}
	}
	a.updateStatus(allHealthy, results)
}

func (a *Aggregator) safeCheck(ctx context.Context, name string, checker Checker) (healthy bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("health check panicked", "service", name, "panic", r)
			healthy = false
		}
	}()
	return checker.Check(ctx)
}

func (a *Aggregator) updateStatus(serving bool, results map[string]bool) {
	a.mu.Lock()
	changed := a.serving != serving
	a.serving = serving
	a.mu.Unlock()

	if serving {
		a.checker.SetStatus("", grpchealth.StatusServing)
	} else {
		a.checker.SetStatus("", grpchealth.StatusNotServing)
	}

	if changed {
		attrs := []any{"serving", serving}
		if results != nil {
			attrs = append(attrs, "checks", results)
		}
		slog.Info("client health status changed", attrs...)
	}
}

// NewSaturationChecker builds a Checker that fails once inFlight() reaches
// or exceeds max, for watching a queued interceptor or connection pool that
// is falling behind.
func NewSaturationChecker(inFlight func() int, max int) Checker {
	return CheckerFunc(func(context.Context) bool {
		return inFlight() < max
	})
}

// postgres.HealthChecker already exposes Check(ctx context.Context) bool,
// so it satisfies Checker without an adapter: Register("audit_db",
// postgres.NewHealthChecker(pool)) works directly.
var _ Checker = (*postgres.HealthChecker)(nil)
