// Package backend is the typed call-site layer over the REST backend. Every
// call goes through a gateway.Client so the credential and failure policy apply
// uniformly; nothing here touches session storage.
package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"foodreel/internal/gateway"
	"foodreel/internal/session"
)

// Doer is the slice of gateway.Client the call sites need.
type Doer interface {
	Do(ctx context.Context, req gateway.Request) (*gateway.Result, error)
}

// API groups the backend call sites.
type API struct {
	gw Doer
}

// New builds an API over gw.
func New(gw Doer) *API {
	return &API{gw: gw}
}

// ErrRejected is returned when the backend answers 2xx with success=false.
var ErrRejected = errors.New("request rejected by backend")

// InputError carries field messages for input refused before any call was
// made. It matches gateway.ErrValidation so views treat local and remote
// validation the same way.
type InputError struct {
	Fields []gateway.FieldError
}

func (e *InputError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *InputError) Is(target error) bool {
	return target == gateway.ErrValidation
}

// FieldErrors returns the field messages of a local or remote validation failure.
func FieldErrors(err error) []gateway.FieldError {
	var input *InputError
	if errors.As(err, &input) {
		return input.Fields
	}
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) {
		return gwErr.FieldErrors
	}
	return nil
}

type fieldCheck struct {
	fields []gateway.FieldError
}

func (c *fieldCheck) require(ok bool, field, message string) {
	if !ok {
		c.fields = append(c.fields, gateway.FieldError{Field: field, Message: message})
	}
}

func (c *fieldCheck) err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return &InputError{Fields: c.fields}
}

func (a *API) get(ctx context.Context, path string) (*gateway.Result, error) {
	return a.gw.Do(ctx, gateway.Request{Method: http.MethodGet, Path: path})
}

func (a *API) send(ctx context.Context, method, path string, body any) (*gateway.Result, error) {
	return a.gw.Do(ctx, gateway.Request{Method: method, Path: path, Body: body})
}

// accepted turns a 2xx with success=false into ErrRejected.
func accepted(res *gateway.Result) error {
	if res.Success {
		return nil
	}
	if res.Message != "" {
		return fmt.Errorf("%w: %s", ErrRejected, res.Message)
	}
	return ErrRejected
}

func pathID(id string) string {
	return url.PathEscape(id)
}

func loginPath(role session.Role) (string, error) {
	switch role {
	case session.RoleCustomer:
		return "/user/login", nil
	case session.RoleRestaurant:
		return "/resturants/login", nil
	default:
		return "", fmt.Errorf("login for role %q: %w", role, &InputError{
			Fields: []gateway.FieldError{{Field: "role", Message: "must be customer or restaurant"}},
		})
	}
}
