// Package health serves liveness, readiness and status probes.
package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"vcproof/pkg/platform/httputil"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

// Version is set at build time via ldflags.
var Version = "dev"

const (
	defaultCheckTimeout = 2 * time.Second
	defaultCacheTTL     = 5 * time.Second
)

// CheckFunc reports whether a dependency is usable. It returns nil if healthy.
type CheckFunc func(ctx context.Context) error

// Option configures a Handler.
type Option func(*Handler)

// WithCheckTimeout bounds a single readiness evaluation.
func WithCheckTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.checkTimeout = d
		}
	}
}

// WithCacheTTL sets how long a readiness result is reused. Zero disables caching.
func WithCacheTTL(d time.Duration) Option {
	return func(h *Handler) {
		if d >= 0 {
			h.cacheTTL = d
		}
	}
}

// Handler serves the probe endpoints. Readiness checks run concurrently and
// their combined result is cached for a short time, since the verifier
// self-check signs and verifies a credential on every run.
type Handler struct {
	startTime    time.Time
	environment  string
	checkTimeout time.Duration
	cacheTTL     time.Duration
	now          func() time.Time

	mu       sync.Mutex
	checks   map[string]CheckFunc
	cached   *ReadinessResponse
	cachedAt time.Time
}

func New(environment string, opts ...Option) *Handler {
	h := &Handler{
		environment:  environment,
		checkTimeout: defaultCheckTimeout,
		cacheTTL:     defaultCacheTTL,
		now:          time.Now,
		checks:       make(map[string]CheckFunc),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.startTime = h.now()
	return h
}

// RegisterCheck adds a named readiness check and drops any cached result.
func (h *Handler) RegisterCheck(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
	h.cached = nil
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleStatus)
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}

type LivenessResponse struct {
	Status string `json:"status"`
}

// HandleLiveness always returns 200 OK while the process is serving.
func (h *Handler) HandleLiveness(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, LivenessResponse{Status: "alive"})
}

// CheckResult is the outcome of one readiness check.
type CheckResult struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

type ReadinessResponse struct {
	Status    string                 `json:"status"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	CheckedAt string                 `json:"checked_at"`
}

// Ready reports whether every check passed.
func (r *ReadinessResponse) Ready() bool { return r.Status == "ready" }

// HandleReadiness returns 503 when any registered check fails.
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	resp := h.Readiness(r.Context())
	status := http.StatusOK
	if !resp.Ready() {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, resp)
}

// Readiness evaluates the registered checks, or returns the cached result
// when it is still fresh.
func (h *Handler) Readiness(ctx context.Context) *ReadinessResponse {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cached != nil && h.now().Sub(h.cachedAt) < h.cacheTTL {
		return h.cached
	}

	ctx, cancel := context.WithTimeout(ctx, h.checkTimeout)
	defer cancel()

	var (
		resultsMu sync.Mutex
		results   = make(map[string]CheckResult, len(h.checks))
	)
	g, gctx := errgroup.WithContext(ctx)
	for name, check := range h.checks {
		g.Go(func() error {
			start := h.now()
			err := check(gctx)
			res := CheckResult{Status: "up", LatencyMS: h.now().Sub(start).Milliseconds()}
			if err != nil {
				res.Status = "down"
				res.Error = err.Error()
			}
			resultsMu.Lock()
			results[name] = res
			resultsMu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	resp := &ReadinessResponse{Status: "ready", Checks: results, CheckedAt: h.now().UTC().Format(time.RFC3339)}
	for _, res := range results {
		if res.Status != "up" {
			resp.Status = "not_ready"
			break
		}
	}
	h.cached = resp
	h.cachedAt = h.now()
	return resp
}

type StatusResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Environment   string `json:"environment"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Timestamp     string `json:"timestamp"`
}

// HandleStatus returns version and uptime information.
func (h *Handler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	now := h.now()
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{
		Status:        "healthy",
		Version:       Version,
		Environment:   h.environment,
		UptimeSeconds: int64(now.Sub(h.startTime).Seconds()),
		Timestamp:     now.UTC().Format(time.RFC3339),
	})
}
