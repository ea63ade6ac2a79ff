package service

import (
	"context"

	"moim-be/internal/domain"

	"github.com/google/uuid"
)

// AuthService defines the interface for authentication operations
type AuthService interface {
	// ValidateToken validates a bearer token (service JWT, Google ID token
	// or Kakao access token) and returns the user profile
	ValidateToken(ctx context.Context, token string) (*domain.UserProfile, error)

	// ExchangeKakaoCode exchanges a Kakao authorization code for a profile
	ExchangeKakaoCode(ctx context.Context, code string) (*domain.UserProfile, error)

	// IssueSessionToken issues a service JWT for a known user
	IssueSessionToken(userID uuid.UUID, email string, provider domain.OAuthProvider) (string, error)
}

// PlaceSearchService defines the interface for the external place provider
type PlaceSearchService interface {
	// SearchByKeyword searches venues around an optional center coordinate
	SearchByKeyword(ctx context.Context, query string, x, y string, radius int) ([]domain.PlaceSearchResult, error)
}

// Services aggregates the collaborator service interfaces
type Services struct {
	Auth        AuthService
	PlaceSearch PlaceSearchService
}
