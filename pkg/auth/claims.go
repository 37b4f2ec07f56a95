package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Role separates the game client pushing state from the overlay UI acting
// on it.
type Role string

const (
	RoleHost    Role = "host"
	RoleOverlay Role = "overlay"
)

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	switch r {
	case RoleHost, RoleOverlay:
		return true
	default:
		return false
	}
}

// TokenPayload captures the data available when minting a host token.
type TokenPayload struct {
	Subject string
	Role    Role
	JTI     string
}

// TokenClaims represents the typed JWT presented by the game client.
type TokenClaims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}
