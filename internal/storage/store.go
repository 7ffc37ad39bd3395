package storage

//go:generate mockgen -source=store.go -destination=mocks/store_mocks.go -package=mocks Store

import "context"

// Keys persisted by the client. Only the credential and role tag are stored;
// the legacy user blob is never written.
const (
	KeyAuthToken = "authToken"
	KeyUserRole  = "userRole"
)

// Store is durable client-side key-value storage, the localStorage analogue.
// Get returns sentinel.ErrNotFound (possibly wrapped) for absent keys and
// Delete is idempotent.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// HealthChecker is implemented by stores that depend on a remote service.
type HealthChecker interface {
	Health(ctx context.Context) error
}
