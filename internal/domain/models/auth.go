package models

import "github.com/golang-jwt/jwt/v5"

// Claims represents the JWT claims issued by the platform's session service.
type Claims struct {
	jwt.RegisteredClaims        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Community            string `json:"community,omitempty"` // Tenant the user acts for
	Role                 string `json:"role,omitempty"`
	Email                string `json:"email,omitempty"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *Claims) GetUserID() string {
	return c.Subject
}

// Actor is the authenticated caller of a service operation
type Actor struct {
	UserID      string
	CommunityID string
	Role        string
}

// ActorFromClaims builds an Actor from verified claims
func ActorFromClaims(c *Claims) *Actor {
	return &Actor{
		UserID:      c.GetUserID(),
		CommunityID: c.Community,
		Role:        c.Role,
	}
}
