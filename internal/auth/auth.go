package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/opsvista/opsvista/internal/rbac"
)

// User is the authenticated identity loaded per request.
type User struct {
	ID             int64    `json:"id"`
	Email          string   `json:"email"`
	Name           string   `json:"name"`
	Role           string   `json:"role"`
	OrganizationID int64    `json:"organization_id"`
	IsActive       bool     `json:"is_active"`
	Permissions    []string `json:"permissions,omitempty"`
}

// Subject converts the user into the shape the permission evaluator
// consumes.
func (u *User) Subject() rbac.Subject {
	return rbac.Subject{
		UserID:           u.ID,
		OrganizationID:   u.OrganizationID,
		Role:             u.Role,
		ExtraPermissions: u.Permissions,
		IsActive:         u.IsActive,
	}
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims represents JWT token claims.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenGenerator creates and validates token pairs.
type TokenGenerator interface {
	GenerateAccessToken(userID, email string) (string, error)
	GenerateRefreshToken(userID, email string) (string, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

// ServiceAPI is what the HTTP layer needs from the auth service.
type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetUserWithPermissions(userID int64) (*User, error)
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserInactive       = errors.New("user is inactive")
)

// TokenTTLs bundle the pair lifetimes for the generator.
type TokenTTLs struct {
	Access  time.Duration
	Refresh time.Duration
}
