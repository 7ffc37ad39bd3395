package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"foodreel/pkg/requestcontext"
)

// Header carries the request id in and out of the shell. The gateway forwards the
// same value to the backend so both sides log a shared identifier.
const Header = "X-Request-ID"

// Middleware reuses an inbound X-Request-ID or mints a new one.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		ctx := requestcontext.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
