package storage

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"foodreel/internal/platform/config"
	"foodreel/pkg/platform/sentinel"
)

// StoreSuite runs the Store contract against every local backend.
type StoreSuite struct {
	suite.Suite
	newStore func() Store
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, &StoreSuite{newStore: func() Store { return NewMemoryStore() }})
}

func TestFileStoreSuite(t *testing.T) {
	suite.Run(t, &StoreSuite{newStore: func() Store {
		s, err := OpenFile(filepath.Join(t.TempDir(), "nested", "session.json"))
		if err != nil {
			t.Fatalf("open file store: %v", err)
		}
		return s
	}})
}

func (s *StoreSuite) TestGet() {
	ctx := context.Background()

	s.Run("absent key returns ErrNotFound", func() {
		store := s.newStore()
		_, err := store.Get(ctx, KeyAuthToken)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returns stored value", func() {
		store := s.newStore()
		s.Require().NoError(store.Set(ctx, KeyAuthToken, "abc123"))

		v, err := store.Get(ctx, KeyAuthToken)
		s.Require().NoError(err)
		s.Equal("abc123", v)
	})

	s.Run("set overwrites", func() {
		store := s.newStore()
		s.Require().NoError(store.Set(ctx, KeyUserRole, "customer"))
		s.Require().NoError(store.Set(ctx, KeyUserRole, "restaurant"))

		v, err := store.Get(ctx, KeyUserRole)
		s.Require().NoError(err)
		s.Equal("restaurant", v)
	})
}

func (s *StoreSuite) TestDelete() {
	ctx := context.Background()

	s.Run("removes the key", func() {
		store := s.newStore()
		s.Require().NoError(store.Set(ctx, KeyAuthToken, "abc123"))
		s.Require().NoError(store.Delete(ctx, KeyAuthToken))

		_, err := store.Get(ctx, KeyAuthToken)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("is idempotent", func() {
		store := s.newStore()
		s.Require().NoError(store.Delete(ctx, KeyAuthToken))
		s.Require().NoError(store.Delete(ctx, KeyAuthToken))
	})

	s.Run("leaves other keys untouched", func() {
		store := s.newStore()
		s.Require().NoError(store.Set(ctx, KeyAuthToken, "abc123"))
		s.Require().NoError(store.Set(ctx, KeyUserRole, "customer"))
		s.Require().NoError(store.Delete(ctx, KeyAuthToken))

		v, err := store.Get(ctx, KeyUserRole)
		s.Require().NoError(err)
		s.Equal("customer", v)
	})
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	first, err := OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := first.Set(ctx, KeyAuthToken, "persisted"); err != nil {
		t.Fatalf("set: %v", err)
	}

	second, err := OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	v, err := second.Get(ctx, KeyAuthToken)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if v != "persisted" {
		t.Fatalf("expected persisted, got %q", v)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 permissions, got %v", info.Mode().Perm())
	}
}

func TestOpenFile_QuarantinesCorruptDocument(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"authToken":`), 0o600))

	store, err := OpenFile(path)
	require.NoError(t, err, "a torn session file must not stop the client from booting")
	assert.Equal(t, path+".corrupt", store.Quarantined())
	assert.NoFileExists(t, path)

	raw, err := os.ReadFile(path + ".corrupt")
	require.NoError(t, err)
	assert.Equal(t, `{"authToken":`, string(raw), "the unparsable document is kept for inspection")

	_, err = store.Get(ctx, KeyAuthToken)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, store.Set(ctx, KeyUserRole, "customer"))
	reopened, err := OpenFile(path)
	require.NoError(t, err)
	assert.Empty(t, reopened.Quarantined())
	v, err := reopened.Get(ctx, KeyUserRole)
	require.NoError(t, err)
	assert.Equal(t, "customer", v)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	discard := slog.New(slog.DiscardHandler)

	t.Run("memory", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.Storage.Backend = config.StorageMemory
		store, closeFn, err := Open(ctx, cfg, discard)
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &MemoryStore{}, store)
		_, remote := store.(HealthChecker)
		assert.False(t, remote, "local stores have nothing to health check")
	})

	t.Run("file", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.Storage.Path = filepath.Join(t.TempDir(), "session.json")
		store, closeFn, err := Open(ctx, cfg, discard)
		require.NoError(t, err)
		defer closeFn()
		require.NoError(t, store.Set(ctx, KeyAuthToken, "abc123"))
		assert.FileExists(t, cfg.Storage.Path)
	})

	t.Run("file with a torn document boots empty", func(t *testing.T) {
		var logs bytes.Buffer
		cfg := config.Defaults()
		cfg.Storage.Path = filepath.Join(t.TempDir(), "session.json")
		require.NoError(t, os.WriteFile(cfg.Storage.Path, []byte("{not json"), 0o600))

		store, closeFn, err := Open(ctx, cfg, slog.New(slog.NewTextHandler(&logs, nil)))
		require.NoError(t, err)
		defer closeFn()

		_, err = store.Get(ctx, KeyAuthToken)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		assert.Contains(t, logs.String(), "storage file unparsable")
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.Storage.Backend = "floppy"
		_, closeFn, err := Open(ctx, cfg, discard)
		assert.Error(t, err)
		assert.NotNil(t, closeFn)
	})
}
