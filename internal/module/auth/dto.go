package auth

import (
	"time"

	"github.com/simp-lee/touradmin/internal/domain"
)

// LoginRequest represents the input for admin login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// TokenResponse represents the authentication token returned after login.
type TokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt int64        `json:"expires_at"`
	User      *domain.User `json:"user"`
}

// MeResponse describes the authenticated actor.
type MeResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CheckedAt time.Time   `json:"checked_at"`
}
