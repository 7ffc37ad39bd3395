package testutil

import (
	"net/http"

	"foodreel/internal/session"
)

// StaticSession is a session.Reader pinned to one state.
type StaticSession session.State

// Read implements session.Reader.
func (s StaticSession) Read() session.State { return session.State(s) }

// WithSession adds a fixed session state to the request context.
// This simulates what session.Provide does at the router root.
func WithSession(req *http.Request, state session.State) *http.Request {
	ctx := session.WithReader(req.Context(), StaticSession(state))
	return req.WithContext(ctx)
}
