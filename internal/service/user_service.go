package service

import (
	"context"

	"github.com/google/uuid"

	"moim-be/internal/domain"
	"moim-be/internal/repository"
	"moim-be/pkg/errors"
	"moim-be/pkg/logger"
)

// UserService binds external identities to user rows and hands out session
// tokens for them.
type UserService struct {
	users  repository.UserRepository
	auth   AuthService
	logger *logger.Logger
}

func NewUserService(users repository.UserRepository, auth AuthService, log *logger.Logger) *UserService {
	return &UserService{
		users:  users,
		auth:   auth,
		logger: log,
	}
}

// Login upserts the user for a validated provider profile and issues a
// session token for them. Repeated logins refresh the stored profile fields.
func (s *UserService) Login(ctx context.Context, profile *domain.UserProfile) (*domain.User, string, error) {
	if profile == nil || profile.Sub == "" {
		return nil, "", errors.NewAuthenticationError("Profile is missing a subject")
	}

	user := &domain.User{
		ID:              uuid.New(),
		Email:           profile.Email,
		Nickname:        profile.Name,
		ProfileImageURL: profile.Picture,
		OAuthProvider:   profile.Provider,
		OAuthID:         profile.Sub,
		IsActive:        true,
	}
	if err := s.users.UpsertByOAuth(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.auth.IssueSessionToken(user.ID, user.Email, user.OAuthProvider)
	if err != nil {
		return nil, "", err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":  user.ID,
		"provider": user.OAuthProvider,
	}).Info("User logged in")

	return user, token, nil
}

// GetUser returns a user by id.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}
