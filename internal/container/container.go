package container

import (
	"context"

	"moim-be/internal/config"
	"moim-be/internal/repository"
	"moim-be/internal/service"
	"moim-be/internal/service/auth"
	"moim-be/internal/service/kakao"
	"moim-be/pkg/database"
	"moim-be/pkg/logger"
	"moim-be/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          *database.PostgresDB
	RedisClient *redis.Client

	Repositories *repository.Repositories
	Services     *service.Services

	Cache      *service.CacheService
	Access     *service.AccessService
	Meetings   *service.MeetingService
	Candidates *service.CandidateService
	Votes      *service.VoteService
	Places     *service.PlaceService
	Users      *service.UserService
}

// New creates a new dependency injection container. The database is
// required; Redis is optional and its absence only disables caching.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			redisClient = client
			log.Info("Redis client initialized")
		}
	} else {
		log.Info("Redis URL not configured, proceeding without caching")
	}

	repos := &repository.Repositories{
		Meeting:     repository.NewMeetingRepository(db),
		Participant: repository.NewParticipantRepository(db),
		Candidate:   repository.NewCandidateRepository(db),
		Vote:        repository.NewVoteRepository(db),
		User:        repository.NewUserRepository(db),
		Place:       repository.NewPlaceRepository(db),
	}

	authService := auth.NewService(cfg, log)
	placeSearch := kakao.NewService(cfg.KakaoRESTAPIKey, log)
	services := &service.Services{
		Auth:        authService,
		PlaceSearch: placeSearch,
	}

	cache := service.NewCacheService(redisClient, log)

	c := &Container{
		Config:       cfg,
		Logger:       log,
		DB:           db,
		RedisClient:  redisClient,
		Repositories: repos,
		Services:     services,
		Cache:        cache,
	}
	c.Access = service.NewAccessService(repos.Meeting, repos.Participant, cache, log)
	c.Meetings = service.NewMeetingService(repos.Meeting, repos.Participant, cache, log)
	c.Candidates = service.NewCandidateService(repos.Candidate, repos.Meeting, cache, log)
	c.Votes = service.NewVoteService(repos.Vote, repos.Candidate, repos.Participant, repos.Meeting, cache, log, cfg.EnforceDeadline)
	c.Places = service.NewPlaceService(placeSearch, repos.Candidate, repos.Meeting, repos.Participant, repos.Place, log)
	c.Users = service.NewUserService(repos.User, authService, log)

	return c, nil
}

// GetAuthService returns the auth service
func (c *Container) GetAuthService() service.AuthService {
	return c.Services.Auth
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// HasRedis returns true if the Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}
