package backend

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"foodreel/internal/session"
)

// ErrNoToken is returned when a login succeeds without handing back a credential.
var ErrNoToken = errors.New("login response carried no token")

// Login exchanges credentials for a bearer credential on the role's endpoint.
// Persisting it is the session holder's job.
func (a *API) Login(ctx context.Context, role session.Role, creds Credentials) (string, error) {
	var check fieldCheck
	check.require(strings.TrimSpace(creds.Email) != "", "email", "Email is required")
	check.require(creds.Password != "", "password", "Password is required")
	if err := check.err(); err != nil {
		return "", err
	}

	path, err := loginPath(role)
	if err != nil {
		return "", err
	}
	res, err := a.send(ctx, http.MethodPost, path, creds)
	if err != nil {
		return "", err
	}
	if err := accepted(res); err != nil {
		return "", err
	}
	if res.Token == "" {
		return "", ErrNoToken
	}
	return res.Token, nil
}

// RegisterCustomer creates a customer account.
func (a *API) RegisterCustomer(ctx context.Context, reg CustomerRegistration) error {
	var check fieldCheck
	check.require(strings.TrimSpace(reg.Name) != "", "name", "Name is required")
	check.require(strings.TrimSpace(reg.Email) != "", "email", "Email is required")
	check.require(reg.Password != "", "password", "Password is required")
	if err := check.err(); err != nil {
		return err
	}
	reg.Role = session.RoleCustomer.String()
	_, err := a.send(ctx, http.MethodPost, "/user/register", reg)
	return err
}

// RegisterRestaurant creates an operator account.
func (a *API) RegisterRestaurant(ctx context.Context, reg RestaurantRegistration) error {
	var check fieldCheck
	check.require(strings.TrimSpace(reg.Name) != "", "name", "Restaurant name is required")
	check.require(strings.TrimSpace(reg.Email) != "", "email", "Email is required")
	check.require(reg.Password != "", "password", "Password is required")
	if err := check.err(); err != nil {
		return err
	}
	_, err := a.send(ctx, http.MethodPost, "/resturants/register", reg)
	return err
}

// SendOTP starts a password reset and returns the account id the following
// steps are keyed on.
func (a *API) SendOTP(ctx context.Context, email string) (string, error) {
	var check fieldCheck
	check.require(strings.TrimSpace(email) != "", "email", "Email is required")
	if err := check.err(); err != nil {
		return "", err
	}
	res, err := a.send(ctx, http.MethodPost, "/user/sendOtp", map[string]string{"email": email})
	if err != nil {
		return "", err
	}
	if err := accepted(res); err != nil {
		return "", err
	}
	var body struct {
		UserID string `json:"userId"`
	}
	if err := res.DecodeRaw(&body); err != nil {
		return "", err
	}
	return body.UserID, nil
}

// VerifyOTP checks the one-time code sent to the account.
func (a *API) VerifyOTP(ctx context.Context, userID, otp string) error {
	var check fieldCheck
	check.require(userID != "", "userId", "Request a code first")
	check.require(strings.TrimSpace(otp) != "", "otp", "Code is required")
	if err := check.err(); err != nil {
		return err
	}
	res, err := a.send(ctx, http.MethodPost, "/user/verifyOtp/"+pathID(userID), map[string]string{"otp": otp})
	if err != nil {
		return err
	}
	return accepted(res)
}

// ResetPassword sets a new password once the code is verified.
func (a *API) ResetPassword(ctx context.Context, userID, password, confirm string) error {
	var check fieldCheck
	check.require(userID != "", "userId", "Request a code first")
	check.require(password != "", "password", "Password is required")
	check.require(password == confirm, "confirmPassword", "Passwords do not match")
	if err := check.err(); err != nil {
		return err
	}
	res, err := a.send(ctx, http.MethodPost, "/user/resetPassword/"+pathID(userID), map[string]string{"password": password})
	if err != nil {
		return err
	}
	return accepted(res)
}
