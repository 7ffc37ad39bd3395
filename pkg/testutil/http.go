// Package testutil provides helpers shared by the shell's handler and
// integration tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewJSONRequest builds a request whose body is body marshaled to JSON. A nil
// body sends no payload.
func NewJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// DoRequest serves req on handler and returns the recorder.
func DoRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// UnmarshalResponse decodes the response body into a T.
func UnmarshalResponse[T any](t *testing.T, rr *httptest.ResponseRecorder) *T {
	t.Helper()
	var result T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result), "failed to unmarshal response: %s", rr.Body.String())
	return &result
}

// AssertStatus asserts the response status code.
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	assert.Equal(t, expected, rr.Code, "unexpected status code: %s", rr.Body.String())
}

// AssertStatusOK asserts the response status is 200 OK.
func AssertStatusOK(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	AssertStatus(t, rr, http.StatusOK)
}

// AssertRedirect asserts a redirect with the given status to location.
func AssertRedirect(t *testing.T, rr *httptest.ResponseRecorder, status int, location string) {
	t.Helper()
	AssertStatus(t, rr, status)
	assert.Equal(t, location, rr.Header().Get("Location"), "unexpected redirect target")
}

// AssertHardRedirect asserts a redirect that also tells the browser to drop
// cached views of the previous session.
func AssertHardRedirect(t *testing.T, rr *httptest.ResponseRecorder, status int, location string) {
	t.Helper()
	AssertRedirect(t, rr, status, location)
	assert.Equal(t, `"cache"`, rr.Header().Get("Clear-Site-Data"))
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
}

type errorEnvelope struct {
	Error       string            `json:"error"`
	Description string            `json:"error_description"`
	Fields      map[string]string `json:"fields"`
}

// AssertStatusAndError asserts the status and the envelope's error code.
func AssertStatusAndError(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus int, expectedCode string) {
	t.Helper()
	AssertStatus(t, rr, expectedStatus)
	env := UnmarshalResponse[errorEnvelope](t, rr)
	assert.Equal(t, expectedCode, env.Error, "unexpected error code")
}

// AssertFieldErrors asserts a 422 validation envelope naming exactly fields.
func AssertFieldErrors(t *testing.T, rr *httptest.ResponseRecorder, fields ...string) {
	t.Helper()
	AssertStatus(t, rr, http.StatusUnprocessableEntity)
	env := UnmarshalResponse[errorEnvelope](t, rr)
	assert.Equal(t, "validation_failed", env.Error)
	got := make([]string, 0, len(env.Fields))
	for f := range env.Fields {
		got = append(got, f)
	}
	assert.ElementsMatch(t, fields, got)
}
