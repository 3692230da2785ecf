package auth

import (
	"github.com/google/uuid"

	"github.com/quayside/quayside-backend/pkg/capability"
	"github.com/quayside/quayside-backend/pkg/enums"
)

// LoginRequest captures the staff credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the expired access token plus the refresh secret.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// StaffSummary is the authenticated actor returned to the console.
type StaffSummary struct {
	ID           uuid.UUID               `json:"id"`
	Email        string                  `json:"email"`
	Role         enums.StaffRole         `json:"role"`
	Capabilities []capability.Capability `json:"capabilities"`
}

// LoginResponse contains the token pair and actor produced by a successful login.
type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         StaffSummary `json:"user"`
}
