package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodreel/internal/platform/logger"
	"foodreel/pkg/requestcontext"
)

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	h := Recovery(logger.NewWithWriter(&buf, "debug", "json"))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal_error"}`, rec.Body.String())
	assert.Contains(t, buf.String(), "panic in view")
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	h := Logger(logger.NewWithWriter(&buf, "info", "json"))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	req = req.WithContext(requestcontext.WithRequestID(req.Context(), "req-7"))
	h.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "request", line["msg"])
	assert.Equal(t, float64(http.StatusTeapot), line["status"])
	assert.Equal(t, "/home", line["path"])
	assert.Equal(t, "req-7", line["request_id"])
}
