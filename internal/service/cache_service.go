package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"moim-be/internal/domain"
	"moim-be/pkg/logger"
	"moim-be/pkg/redis"
)

// CacheService fronts Redis for the hot read paths: meeting lookups,
// per-candidate tallies and the meeting-wide tally leaderboard. Every
// method is a no-op when Redis is unavailable so callers never have to
// branch on cache health.
type CacheService struct {
	redis  *redis.Client
	logger *logger.Logger
}

func NewCacheService(redisClient *redis.Client, log *logger.Logger) *CacheService {
	return &CacheService{
		redis:  redisClient,
		logger: log,
	}
}

func (c *CacheService) available() bool {
	return c != nil && c.redis != nil
}

// GetMeeting returns the cached meeting or nil on miss.
func (c *CacheService) GetMeeting(ctx context.Context, meetingID uuid.UUID) *domain.Meeting {
	if !c.available() {
		return nil
	}

	data, err := c.redis.Get(ctx, c.redis.KeyBuilder.KeyMeeting(meetingID))
	if err != nil {
		if !redis.IsNil(err) {
			c.logger.WithError(err).Warn("Meeting cache read failed")
		}
		return nil
	}

	var meeting domain.Meeting
	if err := json.Unmarshal([]byte(data), &meeting); err != nil {
		c.logger.WithError(err).Warn("Meeting cache entry corrupted, dropping")
		_ = c.redis.Delete(ctx, c.redis.KeyBuilder.KeyMeeting(meetingID))
		return nil
	}
	return &meeting
}

func (c *CacheService) SetMeeting(ctx context.Context, meeting *domain.Meeting) {
	if !c.available() || meeting == nil {
		return
	}

	data, err := json.Marshal(meeting)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to marshal meeting for cache")
		return
	}
	if err := c.redis.Set(ctx, c.redis.KeyBuilder.KeyMeeting(meeting.ID), data, redis.TTLMeeting); err != nil {
		c.logger.WithError(err).Warn("Failed to cache meeting")
	}
}

// GetMeetingIDByShareCode resolves a share code to a meeting ID from cache.
func (c *CacheService) GetMeetingIDByShareCode(ctx context.Context, shareCode string) (uuid.UUID, bool) {
	if !c.available() {
		return uuid.Nil, false
	}

	data, err := c.redis.Get(ctx, c.redis.KeyBuilder.KeyMeetingByShare(shareCode))
	if err != nil {
		if !redis.IsNil(err) {
			c.logger.WithError(err).Warn("Share code cache read failed")
		}
		return uuid.Nil, false
	}

	id, err := uuid.Parse(data)
	if err != nil {
		_ = c.redis.Delete(ctx, c.redis.KeyBuilder.KeyMeetingByShare(shareCode))
		return uuid.Nil, false
	}
	return id, true
}

func (c *CacheService) SetMeetingIDByShareCode(ctx context.Context, shareCode string, meetingID uuid.UUID) {
	if !c.available() || shareCode == "" {
		return
	}
	if err := c.redis.Set(ctx, c.redis.KeyBuilder.KeyMeetingByShare(shareCode), meetingID.String(), redis.TTLShareCode); err != nil {
		c.logger.WithError(err).Warn("Failed to cache share code mapping")
	}
}

// InvalidateMeeting drops the meeting entry, its share code mapping and
// the meeting-wide tally leaderboard.
func (c *CacheService) InvalidateMeeting(ctx context.Context, meetingID uuid.UUID, shareCode string) {
	if !c.available() {
		return
	}

	keys := []string{
		c.redis.KeyBuilder.KeyMeeting(meetingID),
		c.redis.KeyBuilder.KeyMeetingTallies(meetingID),
	}
	if shareCode != "" {
		keys = append(keys, c.redis.KeyBuilder.KeyMeetingByShare(shareCode))
	}
	if err := c.redis.Delete(ctx, keys...); err != nil {
		c.logger.WithError(err).Warn("Failed to invalidate meeting cache")
	}
}

func (c *CacheService) GetTimeTally(ctx context.Context, candidateID uuid.UUID) *domain.TimeTally {
	if !c.available() {
		return nil
	}

	data, err := c.redis.Get(ctx, c.redis.KeyBuilder.KeyTimeTally(candidateID))
	if err != nil {
		if !redis.IsNil(err) {
			c.logger.WithError(err).Warn("Time tally cache read failed")
		}
		return nil
	}

	var tally domain.TimeTally
	if err := json.Unmarshal([]byte(data), &tally); err != nil {
		_ = c.redis.Delete(ctx, c.redis.KeyBuilder.KeyTimeTally(candidateID))
		return nil
	}
	return &tally
}

func (c *CacheService) SetTimeTally(ctx context.Context, tally *domain.TimeTally) {
	if !c.available() || tally == nil {
		return
	}

	data, err := json.Marshal(tally)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, c.redis.KeyBuilder.KeyTimeTally(tally.CandidateID), data, redis.TTLTally); err != nil {
		c.logger.WithError(err).Warn("Failed to cache time tally")
	}
}

func (c *CacheService) GetPlaceTally(ctx context.Context, candidateID string) *domain.PlaceTally {
	if !c.available() {
		return nil
	}

	data, err := c.redis.Get(ctx, c.redis.KeyBuilder.KeyPlaceTally(candidateID))
	if err != nil {
		if !redis.IsNil(err) {
			c.logger.WithError(err).Warn("Place tally cache read failed")
		}
		return nil
	}

	var tally domain.PlaceTally
	if err := json.Unmarshal([]byte(data), &tally); err != nil {
		_ = c.redis.Delete(ctx, c.redis.KeyBuilder.KeyPlaceTally(candidateID))
		return nil
	}
	return &tally
}

func (c *CacheService) SetPlaceTally(ctx context.Context, tally *domain.PlaceTally) {
	if !c.available() || tally == nil {
		return
	}

	data, err := json.Marshal(tally)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, c.redis.KeyBuilder.KeyPlaceTally(tally.CandidateID), data, redis.TTLTally); err != nil {
		c.logger.WithError(err).Warn("Failed to cache place tally")
	}
}

// InvalidateTallies drops per-candidate tallies and the meeting leaderboard
// after any write that moves a count.
func (c *CacheService) InvalidateTallies(ctx context.Context, meetingID uuid.UUID, timeCandidateIDs []uuid.UUID, placeCandidateIDs []string) {
	if !c.available() {
		return
	}

	keys := []string{c.redis.KeyBuilder.KeyMeetingTallies(meetingID)}
	for _, id := range timeCandidateIDs {
		keys = append(keys, c.redis.KeyBuilder.KeyTimeTally(id))
	}
	for _, id := range placeCandidateIDs {
		keys = append(keys, c.redis.KeyBuilder.KeyPlaceTally(id))
	}
	if err := c.redis.Delete(ctx, keys...); err != nil {
		c.logger.WithError(err).Warn("Failed to invalidate tally cache")
	}
}

// TryConfirmLock takes a short-lived lock guarding meeting confirmation so
// double-submitted confirm requests collapse into one database round trip.
// Returns true when this caller holds the lock.
func (c *CacheService) TryConfirmLock(ctx context.Context, meetingID uuid.UUID) bool {
	if !c.available() {
		// Without Redis the conditional UPDATE is still authoritative.
		return true
	}

	ok, err := c.redis.SetNX(ctx, c.redis.KeyBuilder.KeyConfirmLock(meetingID), time.Now().UTC().Format(time.RFC3339Nano), redis.TTLConfirmLock)
	if err != nil {
		c.logger.WithError(err).Warn("Confirm lock acquisition failed, proceeding without it")
		return true
	}
	return ok
}

// ReleaseConfirmLock frees the confirm lock early after a failed attempt so
// the host can retry without waiting out the TTL.
func (c *CacheService) ReleaseConfirmLock(ctx context.Context, meetingID uuid.UUID) {
	if !c.available() {
		return
	}
	if err := c.redis.Delete(ctx, c.redis.KeyBuilder.KeyConfirmLock(meetingID)); err != nil {
		c.logger.WithError(err).Warn("Failed to release confirm lock")
	}
}
