package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		status int
		want   Outcome
	}{
		{http.StatusOK, OutcomeSuccess},
		{http.StatusNoContent, OutcomeSuccess},
		{http.StatusFound, OutcomeSuccess},
		{399, OutcomeSuccess},
		{http.StatusBadRequest, OutcomeServer},
		{http.StatusUnauthorized, OutcomeUnauthorized},
		{http.StatusForbidden, OutcomeForbidden},
		{http.StatusNotFound, OutcomeNotFound},
		{http.StatusUnprocessableEntity, OutcomeValidation},
		{http.StatusTooManyRequests, OutcomeServer},
		{http.StatusInternalServerError, OutcomeServer},
		{599, OutcomeServer},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.status))
		})
	}
}

func TestError_IsMatchesOnlyItsOutcome(t *testing.T) {
	err := fmt.Errorf("loading cart: %w", &Error{Outcome: OutcomeForbidden, Status: 403})

	assert.True(t, errors.Is(err, ErrForbidden))
	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.False(t, errors.Is(err, ErrServer))
}

func TestError_Message(t *testing.T) {
	e := &Error{Outcome: OutcomeNotFound, Status: 404, Method: "GET", Path: "/items/item/1", Message: "Item not found"}
	assert.Equal(t, "GET /items/item/1: not_found (404): Item not found", e.Error())
}
