package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vcproof/internal/platform/health"
	"vcproof/internal/proof/handler"
	"vcproof/pkg/platform/middleware/request"
	"vcproof/pkg/platform/validation"
)

// Deps carries what the router needs besides the feature handlers.
type Deps struct {
	Logger         *slog.Logger
	HTTPMetrics    *request.Metrics
	MetricsHandler http.Handler
	RequestTimeout time.Duration
}

// NewRouter wires all public endpoints with middleware. The proof API gets
// the body limit, JSON content type and request timeout; probes and
// /metrics only get the shared stack.
func NewRouter(proofs *handler.Handler, probes *health.Handler, deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(deps.Logger))
	r.Use(request.RequestID)
	r.Use(request.Logger(deps.Logger))
	r.Use(request.Instrument(deps.HTTPMetrics))

	probes.Register(r)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(deps.RequestTimeout))
		r.Use(request.BodyLimit(validation.MaxBodySize))
		r.Use(request.ContentTypeJSON)
		proofs.Register(r)
	})

	return r
}
