package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Role names. Keep these stable; they are part of the auth contract.
const (
	// RoleAdmin may manage assistants and trigger monitoring operations.
	RoleAdmin = "admin"
	// RoleObserver has read-only access to calls, reports and the stream.
	RoleObserver = "observer"
)

// Claims are the only supported JWT claims shape for this service.
type Claims struct {
	jwt.RegisteredClaims

	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	TokenType TokenType `json:"token_type"`
}
