package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers return
// these (optionally wrapped) so callers can branch with errors.Is without knowing
// which backend produced them.
//
// - ErrNotFound: key or record does not exist in the store
// - ErrInvalidState: requested transition would break a session invariant
// - ErrUnavailable: storage backend or remote service temporarily unavailable
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
