package domain

import "time"

// TokenType tells access and refresh tokens apart; both share one shape.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// TokenPayload is the decoded, verified content of a signed token.
type TokenPayload struct {
	Subject   string
	Email     string
	Role      Role
	Type      TokenType
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// AuthResult is returned by register, login and refresh.
type AuthResult struct {
	User         *User     `json:"user"`
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}
