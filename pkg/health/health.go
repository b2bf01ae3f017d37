// Package health serves liveness and readiness probes.
//
// Readiness runs every named check concurrently under one deadline and
// reports each result, so an operator sees which dependency is down.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"

	defaultTimeout = 5 * time.Second
)

// CheckFunc probes one dependency.
type CheckFunc func(ctx context.Context) error

// Checks maps a dependency name to its probe.
type Checks map[string]CheckFunc

// Report is the readiness body.
type Report struct {
	Checks map[string]Result `json:"checks,omitempty"`
	Status string            `json:"status"`
}

type Result struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Healthy reports whether every check passed.
func (r Report) Healthy() bool { return r.Status == StatusHealthy }

// Failed lists failing check names in sorted order.
func (r Report) Failed() []string {
	var names []string
	for name, res := range r.Checks {
		if res.Status != StatusHealthy {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

type Option func(*prober)

func WithTimeout(d time.Duration) Option {
	return func(p *prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(p *prober) {
		if l != nil {
			p.log = l
		}
	}
}

type prober struct {
	log     *slog.Logger
	checks  Checks
	timeout time.Duration
}

func newProber(checks Checks, opts ...Option) *prober {
	p := &prober{checks: checks, timeout: defaultTimeout, log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes checks concurrently. A failing check does not cancel the others.
func Run(ctx context.Context, checks Checks, opts ...Option) Report {
	return newProber(checks, opts...).run(ctx)
}

func (p *prober) run(ctx context.Context) Report {
	report := Report{Status: StatusHealthy, Checks: make(map[string]Result, len(p.checks))}
	if len(p.checks) == 0 {
		return report
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	for name, check := range p.checks {
		g.Go(func() error {
			res := Result{Status: StatusHealthy}
			if err := check(ctx); err != nil {
				res = Result{Status: StatusUnhealthy, Error: err.Error()}
				p.log.WarnContext(ctx, "health check failed", slog.String("check", name), slog.Any("error", err))
			}
			mu.Lock()
			report.Checks[name] = res
			if res.Status != StatusHealthy {
				report.Status = StatusUnhealthy
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return report
}

// LivenessHandler always answers 200.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, r, http.StatusOK, Report{Status: StatusHealthy})
	}
}

// ReadinessHandler answers 200 when every check passes and 503 otherwise.
func ReadinessHandler(checks Checks, opts ...Option) http.HandlerFunc {
	p := newProber(checks, opts...)
	return func(w http.ResponseWriter, r *http.Request) {
		report := p.run(r.Context())
		status := http.StatusOK
		if !report.Healthy() {
			status = http.StatusServiceUnavailable
		}
		respond(w, r, status, report)
	}
}

func respond(w http.ResponseWriter, r *http.Request, status int, report Report) {
	if r.URL.Query().Get("format") == "json" || strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(report)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if report.Healthy() {
		_, _ = w.Write([]byte("OK"))
		return
	}
	_, _ = w.Write([]byte("Service Unavailable: " + strings.Join(report.Failed(), ", ")))
}
