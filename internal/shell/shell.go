// Package shell is the composition root of the client: it boots the session,
// connects the gateway's invalidation signal to navigation and serves the route
// table.
package shell

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"foodreel/internal/backend"
	"foodreel/internal/gateway"
	"foodreel/internal/guard"
	"foodreel/internal/navigation"
	"foodreel/internal/pages"
	"foodreel/internal/platform/metrics"
	"foodreel/internal/session"
	"foodreel/pkg/platform/httputil"
	"foodreel/pkg/requestcontext"
)

// OperatorLogin is where unauthenticated restaurant operators are sent.
const OperatorLogin = "/restaurant/login"

// Shell owns the process-wide session and everything wired to it.
type Shell struct {
	holder   *session.Holder
	client   *gateway.Client
	profiles *ProfileCache
	pages    *pages.Handler
	policy   guard.Policy
	logger   *slog.Logger
	metrics  *metrics.Metrics

	startOnce   sync.Once
	unsubscribe func()

	checksMu sync.Mutex
	checks   map[string]HealthCheck
}

// HealthCheck probes a dependency for /healthz.
type HealthCheck func(ctx context.Context) error

// New wires the shell. m may be nil, which disables metrics and the /metrics
// route.
func New(holder *session.Holder, client *gateway.Client, logger *slog.Logger, m *metrics.Metrics) *Shell {
	policy := guard.DefaultPolicy().WithRoleEntryPoint(session.RoleRestaurant, OperatorLogin)
	api := backend.New(client)
	profiles := NewProfileCache(api)
	return &Shell{
		holder:   holder,
		client:   client,
		profiles: profiles,
		pages:    pages.New(api, holder, profiles, policy, logger),
		policy:   policy,
		logger:   logger,
		metrics:  m,
	}
}

// Start resolves the session flag and subscribes to invalidation signals. It
// must run before the router serves traffic; until then every view renders
// the loading state.
func (s *Shell) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.unsubscribe = s.client.Subscribe(s.onSessionInvalidated)
		s.holder.Initialize(ctx)
	})
}

// Close detaches the shell from the gateway.
func (s *Shell) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// CheckHealth adds a dependency probe reported by /healthz under name.
func (s *Shell) CheckHealth(name string, check HealthCheck) {
	s.checksMu.Lock()
	defer s.checksMu.Unlock()
	if s.checks == nil {
		s.checks = make(map[string]HealthCheck)
	}
	s.checks[name] = check
}

// Policy is the guard policy the shell routes with.
func (s *Shell) Policy() guard.Policy {
	return s.policy
}

// Profiles exposes the operator profile cache.
func (s *Shell) Profiles() *ProfileCache {
	return s.profiles
}

// onSessionInvalidated runs on the goroutine of the failing call, after the
// holder has cleared the credential. Cached profile data goes with the
// session; the view that made the call then performs a hard navigation to
// the login entry point.
func (s *Shell) onSessionInvalidated(ctx context.Context, ev gateway.SessionInvalidated) {
	s.profiles.Forget()
	target := s.policy.Target(s.holder.Read().Role)
	requested := navigation.Request(ctx, target, navigation.ModeHard, "session_invalidated")

	s.logger.InfoContext(ctx, "session invalidated, navigating to login",
		"target", target,
		"path", ev.Path,
		"in_request", requested,
		"request_id", requestcontext.RequestID(ctx),
	)
}

// Ready renders the loading view while the flag is unknown, so no view and
// no guard ever observes FlagUnknown.
func Ready(r session.Reader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if r.Read().Flag == session.FlagUnknown {
				w.Header().Set("Retry-After", "1")
				httputil.WriteJSON(w, http.StatusServiceUnavailable, pages.View{
					Name:    "loading",
					Session: pages.SessionView{Flag: session.FlagUnknown.String()},
				})
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}
