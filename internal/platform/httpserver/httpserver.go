package httpserver

import (
	"net/http"
	"time"
)

// New builds the shell's HTTP server. WriteTimeout leaves headroom above the
// gateway's request ceiling so a slow backend call can still be rendered.
func New(addr string, handler http.Handler, gatewayTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      gatewayTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
