package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (statusOutput, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--json"))

	if err := cmd.Execute(); err != nil {
		return statusOutput{}, err
	}
	var got statusOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got), out.String())
	return got, nil
}

func TestSessionLifecycle(t *testing.T) {
	t.Setenv("FOODREEL_CONFIG", "")
	path := filepath.Join(t.TempDir(), "session.json")
	storageFlags := []string{"--storage", "file", "--storage-path", path}

	got, err := execute(t, append([]string{"status"}, storageFlags...)...)
	require.NoError(t, err)
	assert.Equal(t, statusOutput{Flag: "unauthenticated", Storage: "file"}, got)

	got, err = execute(t, append([]string{"login", "--role", "restaurant", "--token", "op-token"}, storageFlags...)...)
	require.NoError(t, err)
	assert.Equal(t, "authenticated", got.Flag)
	assert.Equal(t, "restaurant", got.Role)

	got, err = execute(t, append([]string{"status"}, storageFlags...)...)
	require.NoError(t, err)
	assert.Equal(t, "authenticated", got.Flag, "state survives between invocations")

	for range 2 {
		got, err = execute(t, append([]string{"logout"}, storageFlags...)...)
		require.NoError(t, err)
		assert.Equal(t, "unauthenticated", got.Flag)
		assert.Equal(t, "restaurant", got.Role, "role tag is kept as a routing hint")
	}
}

func TestLoginAgainstBackend(t *testing.T) {
	t.Setenv("FOODREEL_CONFIG", "")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/user/login" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, `{"success":true,"token":"fresh"}`)
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "session.json")
	got, err := execute(t, "login", "--email", "a@b.c", "--password", "pw",
		"--api", server.URL+"/api/v1", "--storage", "file", "--storage-path", path)
	require.NoError(t, err)
	assert.Equal(t, statusOutput{Flag: "authenticated", Role: "customer", Storage: "file"}, got)
}

func TestLoginRejectsUnknownRole(t *testing.T) {
	_, err := execute(t, "login", "--role", "admin", "--token", "x", "--storage", "memory")
	assert.Error(t, err)
}

func TestStatusWithTornSessionFile(t *testing.T) {
	t.Setenv("FOODREEL_CONFIG", "")
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"authToken":`), 0o600))

	got, err := execute(t, "status", "--storage", "file", "--storage-path", path)
	require.NoError(t, err)
	assert.Equal(t, "unauthenticated", got.Flag)
	assert.FileExists(t, path+".corrupt")
}
