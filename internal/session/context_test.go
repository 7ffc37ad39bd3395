package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fixedReader State

func (f fixedReader) Read() State { return State(f) }

func TestCurrent_WithoutProviderIsUnknown(t *testing.T) {
	assert.Equal(t, FlagUnknown, Current(context.Background()).Flag)
}

func TestProvide_InjectsReader(t *testing.T) {
	want := State{Flag: FlagAuthenticated, Role: RoleCustomer}
	var got State

	handler := Provide(fixedReader(want))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = Current(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, want, got)
}

func TestParseRole(t *testing.T) {
	for _, tc := range []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "customer", want: RoleCustomer},
		{in: "restaurant", want: RoleRestaurant},
		{in: "", wantErr: true},
		{in: "Restaurant", wantErr: true},
	} {
		got, err := ParseRole(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		assert.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}
