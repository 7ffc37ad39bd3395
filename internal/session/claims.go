package session

import (
	"github.com/golang-jwt/jwt/v5"
)

type roleClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// roleFromCredential reads a "role" claim from a JWT credential without
// verifying it. The result is a routing hint only; an opaque or malformed
// credential yields RoleNone.
func roleFromCredential(credential string) Role {
	var claims roleClaims
	if _, _, err := jwt.NewParser().ParseUnverified(credential, &claims); err != nil {
		return RoleNone
	}
	role, err := ParseRole(claims.Role)
	if err != nil {
		return RoleNone
	}
	return role
}
