package dto

import (
	"time"

	"github.com/spec-kit/inventory-service/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the opaque refresh token for refresh and logout.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// AuthResponse standard response for login and refresh.
type AuthResponse struct {
	Token            string          `json:"token"`
	ExpiresAt        time.Time       `json:"expiresAt"`
	RefreshToken     string          `json:"refreshToken"`
	RefreshExpiresAt time.Time       `json:"refreshExpiresAt"`
	User             domain.Identity `json:"user"`
}

// NewAuthResponse flattens a token pair and identity.
func NewAuthResponse(pair domain.TokenPair, user domain.Identity) AuthResponse {
	return AuthResponse{
		Token:            pair.AccessToken,
		ExpiresAt:        pair.AccessExpiresAt,
		RefreshToken:     pair.RefreshToken,
		RefreshExpiresAt: pair.RefreshExpiresAt,
		User:             user,
	}
}
