package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"moim-be/internal/config"
	"moim-be/internal/container"
	"moim-be/internal/handler"
	"moim-be/internal/middleware"
	"moim-be/pkg/database"
	"moim-be/pkg/logger"
	"moim-be/pkg/redis"
)

// Resources holds all resources that need cleanup
type Resources struct {
	db          *database.PostgresDB
	redisClient *redis.Client
	server      *http.Server
	log         *logger.Logger
	mu          sync.Mutex
	closed      bool
}

// Cleanup gracefully closes all resources
func (r *Resources) Cleanup(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error

	r.log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server first to stop accepting new requests
	if r.server != nil {
		if err := r.server.Shutdown(ctx); err != nil {
			r.log.WithError(err).Error("Failed to shutdown HTTP server")
			errs = append(errs, fmt.Errorf("HTTP server shutdown: %w", err))
		} else {
			r.log.Info("HTTP server shutdown complete")
		}
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			r.log.WithError(err).Error("Failed to close Redis connection")
			errs = append(errs, fmt.Errorf("Redis close: %w", err))
		} else {
			r.log.Info("Redis connection closed")
		}
	}

	if r.db != nil {
		r.db.Close()
		r.log.Info("Database connection pool closed")
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup completed with %d errors: %v", len(errs), errs)
	}

	r.log.Info("Graceful shutdown completed")
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.WithFields(map[string]interface{}{
		"port":        cfg.Port,
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
	}).Info("Starting moim-be server")

	ctx := context.Background()
	c, err := container.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create container")
	}

	router := setupRouter(c)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	resources := &Resources{
		db:          c.DB,
		redisClient: c.RedisClient,
		server:      server,
		log:         log,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := resources.Cleanup(cleanupCtx); err != nil {
			log.WithError(err).Error("Cleanup completed with errors")
		}
	}()

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Server starting on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-serverErrChan:
		log.WithError(err).Error("Server failed, initiating shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := resources.Cleanup(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown completed with errors")
		os.Exit(1)
	}

	log.Info("Application shutdown complete")
}

// setupRouter configures and returns the HTTP router
func setupRouter(c *container.Container) *chi.Mux {
	cfg := c.GetConfig()
	log := c.GetLogger()
	authService := c.GetAuthService()

	r := chi.NewRouter()

	corsConfig := &middleware.CORSConfig{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           86400,
	}

	r.Use(middleware.CORS(corsConfig, log))
	r.Use(middleware.RequestID(log))
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Compress(5))
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	healthHandler := handler.NewHealthHandler(c.DB, c.RedisClient, log)
	authHandler := handler.NewAuthHandler(authService, c.Users, log)
	meetingHandler := handler.NewMeetingHandler(c.Meetings, c.Votes, c.Places, log)
	participantHandler := handler.NewParticipantHandler(c.Access, log)
	candidateHandler := handler.NewCandidateHandler(c.Candidates, log)
	voteHandler := handler.NewVoteHandler(c.Votes, log)
	placeHandler := handler.NewPlaceHandler(c.Places, log)

	r.Get("/health", healthHandler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		// Login endpoints: the Kakao path takes a code, the generic path a
		// provider token on the Authorization header.
		r.Post("/auth/kakao", authHandler.KakaoLogin)
		r.With(middleware.Auth(authService, log)).Post("/auth/login", authHandler.Login)
		r.With(middleware.Auth(authService, log)).Get("/user/profile", authHandler.Profile)

		// Share links resolve without authentication.
		r.Get("/meetings/share/{shareCode}", meetingHandler.GetByShareCode)

		// Meeting lifecycle. Reads are open; writes require a session.
		r.Route("/meetings", func(r chi.Router) {
			r.With(middleware.Auth(authService, log)).Get("/", meetingHandler.Summaries)
			r.With(middleware.Auth(authService, log)).Post("/", meetingHandler.Create)

			r.Route("/{meetingID}", func(r chi.Router) {
				r.Get("/", meetingHandler.Get)
				r.Get("/tallies", meetingHandler.Tallies)

				r.Group(func(r chi.Router) {
					r.Use(middleware.Auth(authService, log))
					r.Patch("/", meetingHandler.Update)
					r.Delete("/", meetingHandler.Delete)
					r.Post("/confirm", meetingHandler.Confirm)
					r.Post("/candidates/time", candidateHandler.AddTime)
					r.Post("/candidates/place", candidateHandler.AddPlace)
				})

				r.Get("/candidates/time", candidateHandler.ListTime)
				r.Get("/candidates/place", candidateHandler.ListPlace)

				// Joining accepts either a session token or an anonymous
				// key plus the share code in the body.
				r.With(middleware.OptionalAuth(authService, log)).Post("/participants", participantHandler.Join)
				r.Get("/participants", participantHandler.List)

				r.Post("/places/recommend", placeHandler.Recommend)
			})
		})

		r.Route("/participants/{participantID}", func(r chi.Router) {
			r.Use(middleware.OptionalAuth(authService, log))
			r.Patch("/", participantHandler.Update)
			r.Delete("/", participantHandler.Delete)
			r.Post("/votes/time", voteHandler.CastTimeVote)
			r.Post("/votes/place", voteHandler.CastPlaceVote)
		})

		r.Route("/candidates", func(r chi.Router) {
			r.Get("/time/{candidateID}/tally", voteHandler.GetTimeTally)
			r.Get("/time/{candidateID}/votes", voteHandler.ListTimeVotes)
			r.Get("/place/{candidateID}/tally", voteHandler.GetPlaceTally)
			r.With(middleware.Auth(authService, log)).Delete("/time/{candidateID}", candidateHandler.RemoveTime)
			r.With(middleware.Auth(authService, log)).Delete("/place/{candidateID}", candidateHandler.RemovePlace)
		})

		r.Route("/votes", func(r chi.Router) {
			r.Use(middleware.OptionalAuth(authService, log))
			r.Delete("/time/{voteID}", voteHandler.RemoveTimeVote)
			r.Delete("/place/{voteID}", voteHandler.RemovePlaceVote)
		})

		r.Get("/places/{placeID}", placeHandler.Get)
	})

	return r
}
