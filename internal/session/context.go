package session

import (
	"context"
	"net/http"
)

// Reader is the consumer side of the holder: views and the guard only read.
type Reader interface {
	Read() State
}

type readerKey struct{}

// WithReader injects r into ctx for consumers outside an HTTP request.
func WithReader(ctx context.Context, r Reader) context.Context {
	return context.WithValue(ctx, readerKey{}, r)
}

// FromContext returns the injected reader, if any.
func FromContext(ctx context.Context) (Reader, bool) {
	r, ok := ctx.Value(readerKey{}).(Reader)
	return r, ok && r != nil
}

// Current reads the session state from ctx. Without a provider the state is
// FlagUnknown, which no guard ever renders.
func Current(ctx context.Context) State {
	if r, ok := FromContext(ctx); ok {
		return r.Read()
	}
	return State{Flag: FlagUnknown}
}

// Provide is the provider half: mounted once at the root of the router so every
// route below it can consume the session through its request context.
func Provide(r Reader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(WithReader(req.Context(), r)))
		})
	}
}
