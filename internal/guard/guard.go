// Package guard gates protected views on the session flag.
package guard

import (
	"log/slog"
	"net/http"

	"foodreel/internal/session"
	"foodreel/pkg/requestcontext"
)

// DefaultEntryPoint is the login route every unauthenticated visitor lands on.
const DefaultEntryPoint = "/login"

// Outcome is what the guard does with a protected view.
type Outcome int

const (
	OutcomeRender Outcome = iota
	OutcomeRedirect
)

func (o Outcome) String() string {
	if o == OutcomeRender {
		return "render"
	}
	return "redirect"
}

// Decision is the result of evaluating a session state. Target is set only for
// OutcomeRedirect.
type Decision struct {
	Outcome Outcome
	Target  string
}

// Policy picks the redirect target. It is fixed at the composition root.
type Policy struct {
	EntryPoint      string
	RoleEntryPoints map[session.Role]string
}

// DefaultPolicy redirects everyone to DefaultEntryPoint.
func DefaultPolicy() Policy {
	return Policy{EntryPoint: DefaultEntryPoint}
}

// WithRoleEntryPoint returns a copy of p that sends role to path instead.
func (p Policy) WithRoleEntryPoint(role session.Role, path string) Policy {
	entries := make(map[session.Role]string, len(p.RoleEntryPoints)+1)
	for k, v := range p.RoleEntryPoints {
		entries[k] = v
	}
	entries[role] = path
	p.RoleEntryPoints = entries
	return p
}

// Target is the entry point for a visitor carrying role.
func (p Policy) Target(role session.Role) string {
	if path, ok := p.RoleEntryPoints[role]; ok && path != "" {
		return path
	}
	if p.EntryPoint == "" {
		return DefaultEntryPoint
	}
	return p.EntryPoint
}

// Decide is total over the three flags: only FlagAuthenticated renders.
// FlagUnknown redirects here; the shell keeps unknown from ever reaching a guard.
func (p Policy) Decide(state session.State) Decision {
	if state.Flag == session.FlagAuthenticated {
		return Decision{Outcome: OutcomeRender}
	}
	return Decision{Outcome: OutcomeRedirect, Target: p.Target(state.Role)}
}

// RedirectRecorder is notified of every redirect the guard issues.
type RedirectRecorder interface {
	IncGuardRedirect(target string)
}

// Require wraps protected views. A redirect never invokes the wrapped handler,
// so no part of the protected view is written.
func Require(p Policy, logger *slog.Logger, recorder RedirectRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			state := session.Current(ctx)
			decision := p.Decide(state)
			if decision.Outcome == OutcomeRender {
				next.ServeHTTP(w, r)
				return
			}

			logger.InfoContext(ctx, "protected view redirected",
				"path", r.URL.Path,
				"flag", state.Flag.String(),
				"target", decision.Target,
				"request_id", requestcontext.RequestID(ctx),
			)
			if recorder != nil {
				recorder.IncGuardRedirect(decision.Target)
			}
			http.Redirect(w, r, decision.Target, redirectStatus(r))
		})
	}
}

func redirectStatus(r *http.Request) int {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return http.StatusFound
	}
	return http.StatusSeeOther
}
