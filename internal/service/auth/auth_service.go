package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"

	"moim-be/internal/config"
	"moim-be/internal/domain"
	"moim-be/internal/service"
	"moim-be/pkg/errors"
	"moim-be/pkg/logger"
)

const (
	kakaoUserInfoURL = "https://kapi.kakao.com/v2/user/me"
	kakaoAuthURL     = "https://kauth.kakao.com/oauth/authorize"
	kakaoTokenURL    = "https://kauth.kakao.com/oauth/token"

	sessionTokenTTL = 24 * time.Hour
)

// Service implements the AuthService interface. It accepts three token
// shapes on the same bearer header: service-issued session JWTs, Google ID
// tokens, and opaque Kakao access tokens.
type Service struct {
	jwtSecret      []byte
	googleClientID string
	kakaoOAuth     *oauth2.Config
	httpClient     *http.Client
	logger         *logger.Logger
}

// NewService creates a new auth service
func NewService(cfg *config.Config, log *logger.Logger) service.AuthService {
	return &Service{
		jwtSecret:      []byte(cfg.JWTSecret),
		googleClientID: cfg.GoogleClientID,
		kakaoOAuth: &oauth2.Config{
			ClientID:     cfg.KakaoClientID,
			ClientSecret: cfg.KakaoClientSecret,
			RedirectURL:  cfg.KakaoRedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  kakaoAuthURL,
				TokenURL: kakaoTokenURL,
			},
		},
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: log,
	}
}

// ValidateToken validates a bearer token and returns the profile it vouches
// for. The token shape decides the path: three dot-separated segments is a
// JWT (a session token first, a Google ID token second); anything else is
// treated as a Kakao access token.
func (s *Service) ValidateToken(ctx context.Context, token string) (*domain.UserProfile, error) {
	if token == "" {
		return nil, errors.NewAuthenticationError("Token is required")
	}

	if isJWT(token) {
		if profile, err := s.validateSessionToken(token); err == nil {
			return profile, nil
		}
		return s.validateGoogleIDToken(ctx, token)
	}
	return s.validateKakaoAccessToken(ctx, token)
}

func isJWT(token string) bool {
	return strings.Count(token, ".") == 2
}

// sessionClaims is the JWT claim set for service-issued session tokens.
type sessionClaims struct {
	Email    string `json:"email,omitempty"`
	Provider string `json:"provider,omitempty"`
	jwt.RegisteredClaims
}

// validateSessionToken parses and verifies a service-issued HS256 JWT.
func (s *Service) validateSessionToken(token string) (*domain.UserProfile, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, errors.NewAuthenticationError("Invalid session token")
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, errors.NewAuthenticationError("Invalid session token")
	}

	return &domain.UserProfile{
		Sub:      claims.Subject,
		Email:    claims.Email,
		Provider: domain.OAuthProvider(claims.Provider),
	}, nil
}

// validateGoogleIDToken verifies a Google ID token's signature and audience.
func (s *Service) validateGoogleIDToken(ctx context.Context, token string) (*domain.UserProfile, error) {
	payload, err := idtoken.Validate(ctx, token, s.googleClientID)
	if err != nil {
		s.logger.WithError(err).Debug("Google ID token validation failed")
		return nil, errors.NewAuthenticationError("Invalid or expired token")
	}

	profile := &domain.UserProfile{
		Sub:      payload.Subject,
		Provider: domain.ProviderGoogle,
	}
	if email, ok := payload.Claims["email"].(string); ok {
		profile.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		profile.Name = name
	}
	if picture, ok := payload.Claims["picture"].(string); ok {
		profile.Picture = picture
	}
	return profile, nil
}

// kakaoUserResponse is the subset of kapi.kakao.com/v2/user/me we read.
type kakaoUserResponse struct {
	ID           int64 `json:"id"`
	KakaoAccount struct {
		Email   string `json:"email"`
		Profile struct {
			Nickname        string `json:"nickname"`
			ProfileImageURL string `json:"profile_image_url"`
		} `json:"profile"`
	} `json:"kakao_account"`
}

// validateKakaoAccessToken resolves an opaque Kakao access token to the
// account it belongs to.
func (s *Service) validateKakaoAccessToken(ctx context.Context, token string) (*domain.UserProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, kakaoUserInfoURL, nil)
	if err != nil {
		return nil, errors.NewInternalError("Failed to create validation request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.WithError(err).Error("Failed to call Kakao user info endpoint")
		return nil, errors.NewAuthenticationError("Failed to validate token")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, errors.NewAuthenticationError("Invalid or expired Kakao token")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		s.logger.WithFields(map[string]interface{}{
			"status_code":   resp.StatusCode,
			"response_body": string(body),
		}).Error("Kakao user info returned error")
		return nil, errors.NewAuthenticationError("Token validation failed")
	}

	var user kakaoUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, errors.NewInternalError("Failed to decode Kakao user info", err)
	}
	if user.ID == 0 {
		return nil, errors.NewAuthenticationError("Kakao token carries no account")
	}

	return &domain.UserProfile{
		Sub:      strconv.FormatInt(user.ID, 10),
		Email:    user.KakaoAccount.Email,
		Name:     user.KakaoAccount.Profile.Nickname,
		Picture:  user.KakaoAccount.Profile.ProfileImageURL,
		Provider: domain.ProviderKakao,
	}, nil
}

// ExchangeKakaoCode exchanges an authorization code for a Kakao access token
// and resolves it to a profile in one call.
func (s *Service) ExchangeKakaoCode(ctx context.Context, code string) (*domain.UserProfile, error) {
	if code == "" {
		return nil, errors.NewValidationError("authorization code is required", nil)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := s.kakaoOAuth.Exchange(ctx, code)
	if err != nil {
		s.logger.WithError(err).Error("Kakao code exchange failed")
		return nil, errors.NewAuthenticationError("Failed to exchange authorization code")
	}

	return s.validateKakaoAccessToken(ctx, token.AccessToken)
}

// IssueSessionToken issues a service JWT for a known user. The subject is
// the user's internal id, so later requests skip the provider round trip.
func (s *Service) IssueSessionToken(userID uuid.UUID, email string, provider domain.OAuthProvider) (string, error) {
	now := time.Now()
	claims := &sessionClaims{
		Email:    email,
		Provider: string(provider),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}
