// Package navigation carries navigation intents from deep inside a request (the
// gateway's invalidation signal, a page handler) out to the code that writes the
// response.
package navigation

import (
	"context"
	"net/http"
	"sync"
)

// Mode distinguishes a plain redirect from a full reload that drops cached state.
type Mode int

const (
	ModeSoft Mode = iota
	ModeHard
)

func (m Mode) String() string {
	if m == ModeHard {
		return "hard"
	}
	return "soft"
}

// Intent is a requested navigation.
type Intent struct {
	Target string
	Mode   Mode
	Reason string
}

type slot struct {
	mu     sync.Mutex
	intent *Intent
}

type slotKey struct{}

// Middleware gives every request a slot for one pending intent.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), slotKey{}, &slot{})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Request records an intent on the request carried by ctx. A hard intent
// replaces a soft one; otherwise the first intent wins. It reports false when
// ctx belongs to no request.
func Request(ctx context.Context, target string, mode Mode, reason string) bool {
	s, ok := ctx.Value(slotKey{}).(*slot)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.intent == nil || (mode == ModeHard && s.intent.Mode == ModeSoft) {
		s.intent = &Intent{Target: target, Mode: mode, Reason: reason}
	}
	return true
}

// Pending returns the recorded intent, if any.
func Pending(ctx context.Context) (Intent, bool) {
	s, ok := ctx.Value(slotKey{}).(*slot)
	if !ok {
		return Intent{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.intent == nil {
		return Intent{}, false
	}
	return *s.intent, true
}

// Apply performs the pending intent as the response and reports whether it did.
// A hard navigation also tells the client to drop its cache.
func Apply(w http.ResponseWriter, r *http.Request) bool {
	intent, ok := Pending(r.Context())
	if !ok {
		return false
	}
	if intent.Mode == ModeHard {
		w.Header().Set("Clear-Site-Data", `"cache"`)
		w.Header().Set("Cache-Control", "no-store")
	}
	status := http.StatusFound
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		status = http.StatusSeeOther
	}
	http.Redirect(w, r, intent.Target, status)
	return true
}
