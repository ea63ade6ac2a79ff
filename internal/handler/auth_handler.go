package handler

import (
	"encoding/json"
	"net/http"

	"moim-be/internal/service"
	"moim-be/pkg/errors"
	"moim-be/pkg/logger"
)

// AuthHandler handles authentication related requests
type AuthHandler struct {
	auth   service.AuthService
	users  *service.UserService
	logger *logger.Logger
}

func NewAuthHandler(auth service.AuthService, users *service.UserService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		users:  users,
		logger: log,
	}
}

// loginResponse pairs the stored user with their session token.
type loginResponse struct {
	User  interface{} `json:"user"`
	Token string      `json:"token"`
}

// Login handles POST /api/v1/auth/login. The bearer token (Google ID token
// or Kakao access token) was already validated by the middleware; this
// endpoint upserts the user and issues a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileFromContext(r)
	if !ok {
		respondError(w, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	user, token, err := h.users.Login(r.Context(), profile)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, loginResponse{User: user, Token: token})
}

// kakaoLoginRequest carries the authorization code from the OAuth redirect.
type kakaoLoginRequest struct {
	Code string `json:"code"`
}

// KakaoLogin handles POST /api/v1/auth/kakao. It exchanges the code for a
// Kakao token server-side, then follows the same upsert-and-issue path.
func (h *AuthHandler) KakaoLogin(w http.ResponseWriter, r *http.Request) {
	var req kakaoLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		respondError(w, h.logger, errors.NewValidationError("code is required", nil))
		return
	}

	profile, err := h.auth.ExchangeKakaoCode(r.Context(), req.Code)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	user, token, err := h.users.Login(r.Context(), profile)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, loginResponse{User: user, Token: token})
}

// Profile handles GET /api/v1/user/profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		respondError(w, h.logger, errors.NewAuthenticationError("Session token required"))
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}
