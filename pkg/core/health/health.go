// Package health aggregates readiness probes of the nic services into a
// single report served over HTTP.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status of a probe or of the whole service
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// severity orders statuses, unknown values count as degraded
func (s Status) severity() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusUnhealthy:
		return 2
	default:
		return 1
	}
}

// Result is the outcome of one probe
type Result struct {
	Name    string         `json:"name"`
	Status  Status         `json:"status"`
	Message string         `json:"message,omitempty"`
	Latency time.Duration  `json:"latency"`
	Details map[string]any `json:"details,omitempty"`
}

// Probe inspects one dependency
type Probe func(ctx context.Context) Result

// Check is a named probe
type Check struct {
	Name  string
	Probe Probe
}

// Report is the aggregated service health
type Report struct {
	Service string        `json:"service"`
	Version string        `json:"version"`
	Status  Status        `json:"status"`
	Uptime  time.Duration `json:"uptime"`
	Checked time.Time     `json:"checked"`
	Checks  []Result      `json:"checks"`
}

// Registry holds the probes of one service
type Registry struct {
	service string
	version string
	started time.Time

	mu     sync.RWMutex
	checks []Check
}

// NewRegistry creates an empty registry
func NewRegistry(service, version string) *Registry {
	return &Registry{service: service, version: version, started: time.Now()}
}

// Register adds a check, replacing one with the same name
func (r *Registry) Register(c Check) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.checks {
		if r.checks[i].Name == c.Name {
			r.checks[i] = c
			return
		}
	}
	r.checks = append(r.checks, c)
}

// RegisterFunc adds a probe under name
func (r *Registry) RegisterFunc(name string, probe Probe) {
	r.Register(Check{Name: name, Probe: probe})
}

// Run executes all probes concurrently. Results are sorted by name and the
// worst probe status becomes the report status.
func (r *Registry) Run(ctx context.Context) *Report {
	r.mu.RLock()
	checks := slices.Clone(r.checks)
	r.mu.RUnlock()

	results := make([]Result, len(checks))
	var g errgroup.Group
	for i, c := range checks {
		g.Go(func() error {
			start := time.Now()
			res := c.Probe(ctx)
			res.Name = c.Name
			res.Latency = time.Since(start)
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	slices.SortFunc(results, func(a, b Result) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})

	status := StatusHealthy
	for _, res := range results {
		if res.Status.severity() > status.severity() {
			status = res.Status
			if status != StatusUnhealthy {
				status = StatusDegraded
			}
		}
	}

	return &Report{
		Service: r.service,
		Version: r.version,
		Status:  status,
		Uptime:  time.Since(r.started),
		Checked: time.Now(),
		Checks:  results,
	}
}

// Handler serves the report as JSON, answering 503 while unhealthy
func (r *Registry) Handler(timeout time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), timeout)
		defer cancel()

		report := r.Run(ctx)

		w.Header().Set("Content-Type", "application/json")
		if report.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(report)
	})
}

// Pinger is implemented by stores that can verify their connection
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingCheck is unhealthy while the pinger fails
func PingCheck(name string, p Pinger) Check {
	return Check{Name: name, Probe: func(ctx context.Context) Result {
		if err := p.PingContext(ctx); err != nil {
			return Result{Status: StatusUnhealthy, Message: err.Error()}
		}
		return Result{Status: StatusHealthy}
	}}
}

// FileCheck is degraded while path cannot be stat'ed
func FileCheck(name, path string) Check {
	return Check{Name: name, Probe: func(ctx context.Context) Result {
		info, err := os.Stat(path)
		if err != nil {
			return Result{Status: StatusDegraded, Message: err.Error(), Details: map[string]any{"path": path}}
		}
		return Result{
			Status:  StatusHealthy,
			Details: map[string]any{"path": path, "modified": info.ModTime()},
		}
	}}
}

// CountCheck is degraded while count returns less than least
func CountCheck(name string, least int, count func() int) Check {
	return Check{Name: name, Probe: func(ctx context.Context) Result {
		n := count()
		res := Result{Status: StatusHealthy, Details: map[string]any{"count": n}}
		if n < least {
			res.Status = StatusDegraded
			res.Message = fmt.Sprintf("%d registered, want at least %d", n, least)
		}
		return res
	}}
}
