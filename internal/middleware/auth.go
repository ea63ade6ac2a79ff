package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"moim-be/internal/service"
	"moim-be/pkg/errors"
	"moim-be/pkg/logger"
)

type contextKey string

const (
	// UserContextKey is where the validated token profile lives in the
	// request context
	UserContextKey contextKey = "user"

	// RequestIDContextKey is where the request id lives in the request
	// context
	RequestIDContextKey contextKey = "request_id"
)

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Auth rejects requests without a valid bearer token and stores the
// resolved profile in the request context.
func Auth(authService service.AuthService, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeErrorResponse(w, errors.NewAuthenticationError("Token is required"), log)
				return
			}

			ctx := r.Context()
			profile, err := authService.ValidateToken(ctx, token)
			if err != nil {
				log.WithError(err).Debug("Token validation failed")
				writeErrorResponse(w, errors.NewAuthenticationError("Invalid or expired token"), log)
				return
			}

			ctx = context.WithValue(ctx, UserContextKey, profile)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth resolves a bearer token when one is present but lets
// anonymous requests through. Participant resolution downstream decides
// whether the caller may act.
func OptionalAuth(authService service.AuthService, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			profile, err := authService.ValidateToken(ctx, token)
			if err != nil {
				// A token was offered but is bad; that is an error, not
				// anonymity.
				log.WithError(err).Debug("Optional token validation failed")
				writeErrorResponse(w, errors.NewAuthenticationError("Invalid or expired token"), log)
				return
			}

			ctx = context.WithValue(ctx, UserContextKey, profile)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestID adds a unique request id to each request and its response.
func RequestID(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := generateRequestID()

			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
			w.Header().Set("X-Request-ID", requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func generateRequestID() string {
	return fmt.Sprintf("%d-%d", time.Now().Unix(), time.Now().Nanosecond())
}

// writeErrorResponse writes an error response to the client
func writeErrorResponse(w http.ResponseWriter, appErr *errors.AppError, log *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)

	response := map[string]interface{}{
		"success": false,
		"error": map[string]interface{}{
			"type":    string(appErr.Type),
			"message": appErr.Message,
		},
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.WithError(err).Error("Failed to encode error response")
	}
}
