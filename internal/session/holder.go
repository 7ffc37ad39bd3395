package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"foodreel/internal/storage"
	"foodreel/pkg/platform/sentinel"
)

// ErrEmptyCredential is returned by Login when the backend handed back no token.
var ErrEmptyCredential = errors.New("empty credential")

// Holder owns the session flag and role tag for the lifetime of the process.
// It is also the only writer of the credential and role keys in storage.
type Holder struct {
	store  storage.Store
	logger *slog.Logger

	once  sync.Once
	mu    sync.RWMutex
	state State
}

// NewHolder builds a holder in the FlagUnknown state. Call Initialize before
// serving any route.
func NewHolder(store storage.Store, logger *slog.Logger) *Holder {
	return &Holder{
		store:  store,
		logger: logger,
		state:  State{Flag: FlagUnknown},
	}
}

// Initialize reads the credential and role tag once. It never fails: a storage
// error is logged and treated as an absent credential.
func (h *Holder) Initialize(ctx context.Context) {
	h.once.Do(func() {
		credential, err := h.readCredential(ctx)
		if err != nil {
			h.logger.WarnContext(ctx, "session storage unreadable at boot, starting unauthenticated",
				"error", err,
			)
			credential = ""
		}

		role := h.readRole(ctx)
		if role == RoleNone && credential != "" {
			role = roleFromCredential(credential)
		}

		h.mu.Lock()
		defer h.mu.Unlock()
		h.state.Role = role
		if credential != "" {
			h.state.Flag = FlagAuthenticated
		} else {
			h.state.Flag = FlagUnauthenticated
		}
		h.logger.InfoContext(ctx, "session initialized",
			"flag", h.state.Flag.String(),
			"role", h.state.Role.String(),
		)
	})
}

// Read returns the current flag and role. Safe to call from any view.
func (h *Holder) Read() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// SetAuthenticated updates the in-memory flag only. Marking the session
// authenticated while no credential is stored returns sentinel.ErrInvalidState.
func (h *Holder) SetAuthenticated(ctx context.Context, authenticated bool) error {
	if authenticated {
		credential, err := h.readCredential(ctx)
		if err != nil {
			return fmt.Errorf("reading credential: %w", err)
		}
		if credential == "" {
			return fmt.Errorf("no stored credential: %w", sentinel.ErrInvalidState)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if authenticated {
		h.state.Flag = FlagAuthenticated
	} else {
		h.state.Flag = FlagUnauthenticated
	}
	return nil
}

// Login persists a fresh credential and role, then marks the session authenticated.
func (h *Holder) Login(ctx context.Context, credential string, role Role) error {
	if credential == "" {
		return ErrEmptyCredential
	}
	if err := h.store.Set(ctx, storage.KeyAuthToken, credential); err != nil {
		return fmt.Errorf("persisting credential: %w", err)
	}
	if role != RoleNone {
		if err := h.store.Set(ctx, storage.KeyUserRole, role.String()); err != nil {
			return fmt.Errorf("persisting role: %w", err)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.Flag = FlagAuthenticated
	if role != RoleNone {
		h.state.Role = role
	}
	return nil
}

// Logout clears the credential and marks the session unauthenticated. The role
// tag survives so the next redirect can pick the right login entry point.
// Calling Logout on an already cleared session is a no-op.
func (h *Holder) Logout(ctx context.Context) error {
	err := h.store.Delete(ctx, storage.KeyAuthToken)

	h.mu.Lock()
	h.state.Flag = FlagUnauthenticated
	h.mu.Unlock()

	if err != nil {
		return fmt.Errorf("clearing credential: %w", err)
	}
	return nil
}

// Invalidate is Logout triggered by the backend rejecting the credential.
func (h *Holder) Invalidate(ctx context.Context, reason string) error {
	h.logger.WarnContext(ctx, "session invalidated",
		"reason", reason,
	)
	return h.Logout(ctx)
}

// Credential returns the stored bearer credential, or "" when there is none.
func (h *Holder) Credential(ctx context.Context) (string, error) {
	return h.readCredential(ctx)
}

func (h *Holder) readCredential(ctx context.Context) (string, error) {
	credential, err := h.store.Get(ctx, storage.KeyAuthToken)
	if errors.Is(err, sentinel.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return credential, nil
}

func (h *Holder) readRole(ctx context.Context) Role {
	raw, err := h.store.Get(ctx, storage.KeyUserRole)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			h.logger.WarnContext(ctx, "role tag unreadable", "error", err)
		}
		return RoleNone
	}
	role, err := ParseRole(raw)
	if err != nil {
		h.logger.WarnContext(ctx, "ignoring persisted role tag", "error", err)
		return RoleNone
	}
	return role
}
