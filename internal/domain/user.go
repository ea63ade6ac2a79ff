package domain

import (
	"time"

	"github.com/google/uuid"
)

// OAuthProvider identifies where a user's identity came from.
type OAuthProvider string

const (
	ProviderGoogle OAuthProvider = "google"
	ProviderKakao  OAuthProvider = "kakao"
)

// User is an authenticated account. Anonymous participants never get a User
// row; they live only as Participant rows keyed by provider key.
type User struct {
	ID              uuid.UUID     `json:"id"`
	Email           string        `json:"email"`
	Nickname        string        `json:"nickname,omitempty"`
	ProfileImageURL string        `json:"profile_image_url,omitempty"`
	OAuthProvider   OAuthProvider `json:"oauth_provider"`
	OAuthID         string        `json:"oauth_id"`
	IsActive        bool          `json:"is_active"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// UserProfile is the identity extracted from a validated token. Sub is the
// provider-stable subject; it is the opaque user reference the engine trusts.
type UserProfile struct {
	Sub      string        `json:"sub"`
	Email    string        `json:"email,omitempty"`
	Name     string        `json:"name,omitempty"`
	Picture  string        `json:"picture,omitempty"`
	Provider OAuthProvider `json:"provider"`
}

// AuthClaims are the claims carried by a service-issued session JWT.
type AuthClaims struct {
	UserID   uuid.UUID     `json:"user_id"`
	Email    string        `json:"email,omitempty"`
	Provider OAuthProvider `json:"provider"`
}
