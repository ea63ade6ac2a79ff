package handler

import (
	"net/http"
	"time"

	"moim-be/pkg/database"
	"moim-be/pkg/logger"
	"moim-be/pkg/redis"
)

// HealthHandler reports process and dependency health
type HealthHandler struct {
	db     *database.PostgresDB
	redis  *redis.Client
	logger *logger.Logger
}

func NewHealthHandler(db *database.PostgresDB, redisClient *redis.Client, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		redis:  redisClient,
		logger: log,
	}
}

// Health handles GET /health. The process is healthy as long as it can
// serve; dependency states are reported but only the database is required.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := http.StatusOK

	dbStatus := "ok"
	if h.db == nil {
		dbStatus = "unconfigured"
		status = http.StatusServiceUnavailable
	} else if err := h.db.Health(ctx); err != nil {
		h.logger.WithError(err).Error("Database health check failed")
		dbStatus = "unavailable"
		status = http.StatusServiceUnavailable
	}

	redisStatus := "ok"
	if h.redis == nil {
		redisStatus = "unconfigured"
	} else if err := h.redis.Health(ctx); err != nil {
		h.logger.WithError(err).Warn("Redis health check failed")
		redisStatus = "unavailable"
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}
	respondJSON(w, status, map[string]interface{}{
		"status":    overall,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks": map[string]string{
			"database": dbStatus,
			"redis":    redisStatus,
		},
	})
}
