package identity

import (
	"time"

	"github.com/atelier/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// RegisterInput contains the input for self-registration
type RegisterInput struct {
	Email    string
	Name     string
	Password string
	Role     identity.Role
}

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is returned by register, login and refresh
type AuthResult struct {
	AccessToken           string    `json:"accessToken"`
	RefreshToken          string    `json:"refreshToken"`
	AccessTokenExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
	TokenType             string    `json:"tokenType"`
	User                  UserInfo  `json:"user"`
}

// UserInfo is the public view of a user
type UserInfo struct {
	ID          uuid.UUID     `json:"id"`
	Email       string        `json:"email"`
	Name        string        `json:"name"`
	Role        identity.Role `json:"role"`
	CreatedAt   time.Time     `json:"createdAt"`
	LastLoginAt *time.Time    `json:"lastLoginAt,omitempty"`
}

// ToUserInfo converts a domain user
func ToUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}
