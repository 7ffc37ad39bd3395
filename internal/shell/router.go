package shell

import (
	"context"
	"maps"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"foodreel/internal/guard"
	"foodreel/internal/navigation"
	"foodreel/internal/platform/middleware"
	"foodreel/internal/session"
	"foodreel/pkg/platform/httputil"
	"foodreel/pkg/platform/middleware/requestid"
	"foodreel/pkg/platform/middleware/requesttime"
	"foodreel/pkg/requestcontext"
)

const healthCheckTimeout = 2 * time.Second

// Router builds the client route table. Public and protected views share the
// session provider; only the protected group sits behind the guard. Unknown
// paths redirect to the root.
func (s *Shell) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Recovery(s.logger))
	r.Use(middleware.Logger(s.logger))

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", promhttp.Handler())
	}

	var recorder guard.RedirectRecorder
	if s.metrics != nil {
		recorder = s.metrics
	}

	r.Group(func(r chi.Router) {
		r.Use(session.Provide(s.holder))
		r.Use(Ready(s.holder))
		r.Use(navigation.Middleware)

		r.Group(s.pages.RegisterPublic)
		r.Group(func(r chi.Router) {
			r.Use(guard.Require(s.policy, s.logger, recorder))
			s.pages.RegisterProtected(r)
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/", http.StatusFound)
	})
	return r
}

type healthView struct {
	Status  string            `json:"status"`
	Session string            `json:"session"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// handleHealth reports 503 when any registered dependency probe fails.
func (s *Shell) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	view := healthView{Status: "ok", Session: s.holder.Read().Flag.String()}
	status := http.StatusOK

	s.checksMu.Lock()
	checks := maps.Clone(s.checks)
	s.checksMu.Unlock()

	for name, check := range checks {
		if view.Checks == nil {
			view.Checks = make(map[string]string, len(checks))
		}
		if err := check(ctx); err != nil {
			s.logger.WarnContext(ctx, "health check failed",
				"check", name,
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			view.Checks[name] = "unavailable"
			view.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		view.Checks[name] = "ok"
	}
	httputil.WriteJSON(w, status, view)
}
