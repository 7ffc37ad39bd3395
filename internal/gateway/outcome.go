package gateway

import (
	"errors"
	"net/http"
)

// Outcome classifies a settled backend call.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeValidation
	OutcomeUnauthorized
	OutcomeForbidden
	OutcomeNotFound
	OutcomeServer
	OutcomeNetwork
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeValidation:
		return "client_validation_failure"
	case OutcomeUnauthorized:
		return "authorization_failure"
	case OutcomeForbidden:
		return "forbidden"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeServer:
		return "server_failure"
	case OutcomeNetwork:
		return "network_failure"
	default:
		return "unknown"
	}
}

// Sentinels matched by errors.Is against an *Error of the same outcome.
var (
	ErrValidation   = errors.New("client validation failure")
	ErrUnauthorized = errors.New("authorization failure")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server failure")
	ErrNetwork      = errors.New("network failure")
)

func (o Outcome) sentinel() error {
	switch o {
	case OutcomeValidation:
		return ErrValidation
	case OutcomeUnauthorized:
		return ErrUnauthorized
	case OutcomeForbidden:
		return ErrForbidden
	case OutcomeNotFound:
		return ErrNotFound
	case OutcomeServer:
		return ErrServer
	case OutcomeNetwork:
		return ErrNetwork
	default:
		return nil
	}
}

// Classify maps a received status code onto the outcome taxonomy. Anything
// below 400 is a success; 4xx and 5xx codes without a dedicated outcome are
// generic server failures.
func Classify(status int) Outcome {
	switch {
	case status < http.StatusBadRequest:
		return OutcomeSuccess
	case status == http.StatusUnauthorized:
		return OutcomeUnauthorized
	case status == http.StatusForbidden:
		return OutcomeForbidden
	case status == http.StatusNotFound:
		return OutcomeNotFound
	case status == http.StatusUnprocessableEntity:
		return OutcomeValidation
	default:
		return OutcomeServer
	}
}
