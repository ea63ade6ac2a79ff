package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moim-be/internal/domain"
	"moim-be/pkg/redis"
)

func newTestCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	log := testLogger()
	client, err := redis.NewClient("redis://"+mr.Addr(), "development", log.Logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewCacheService(client, log), mr
}

func TestCacheService_MeetingRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	meeting := &domain.Meeting{
		ID:        uuid.New(),
		Name:      "dinner",
		CreatorID: uuid.New(),
		ShareCode: "CODE1234",
	}

	assert.Nil(t, cache.GetMeeting(ctx, meeting.ID))

	cache.SetMeeting(ctx, meeting)
	got := cache.GetMeeting(ctx, meeting.ID)
	require.NotNil(t, got)
	assert.Equal(t, meeting.ID, got.ID)
	assert.Equal(t, meeting.Name, got.Name)

	cache.InvalidateMeeting(ctx, meeting.ID, meeting.ShareCode)
	assert.Nil(t, cache.GetMeeting(ctx, meeting.ID))
}

func TestCacheService_ShareCodeMapping(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	meetingID := uuid.New()
	cache.SetMeetingIDByShareCode(ctx, "CODE1234", meetingID)

	got, ok := cache.GetMeetingIDByShareCode(ctx, "CODE1234")
	require.True(t, ok)
	assert.Equal(t, meetingID, got)

	_, ok = cache.GetMeetingIDByShareCode(ctx, "OTHER")
	assert.False(t, ok)
}

func TestCacheService_TimeTallyExpires(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	tally := &domain.TimeTally{
		CandidateID: uuid.New(),
		Entries:     []domain.TallyEntry{{Label: "25.11.11.09:00", Count: 2}},
	}
	cache.SetTimeTally(ctx, tally)

	got := cache.GetTimeTally(ctx, tally.CandidateID)
	require.NotNil(t, got)
	assert.Equal(t, tally.Entries, got.Entries)

	// Tallies carry a short TTL so stale aggregates age out on their own.
	mr.FastForward(redis.TTLTally + time.Second)
	assert.Nil(t, cache.GetTimeTally(ctx, tally.CandidateID))
}

func TestCacheService_CorruptEntryDropped(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	meetingID := uuid.New()
	key := cache.redis.KeyBuilder.KeyMeeting(meetingID)
	require.NoError(t, mr.Set(key, "{not json"))

	assert.Nil(t, cache.GetMeeting(ctx, meetingID))
	assert.False(t, mr.Exists(key))
}

func TestCacheService_ConfirmLock(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	meetingID := uuid.New()

	assert.True(t, cache.TryConfirmLock(ctx, meetingID))
	// The second taker loses until the lock is released or expires.
	assert.False(t, cache.TryConfirmLock(ctx, meetingID))

	cache.ReleaseConfirmLock(ctx, meetingID)
	assert.True(t, cache.TryConfirmLock(ctx, meetingID))
}

func TestCacheService_NilClientIsNoOp(t *testing.T) {
	cache := NewCacheService(nil, testLogger())
	ctx := context.Background()
	meetingID := uuid.New()

	assert.Nil(t, cache.GetMeeting(ctx, meetingID))
	cache.SetMeeting(ctx, &domain.Meeting{ID: meetingID})
	assert.Nil(t, cache.GetMeeting(ctx, meetingID))

	// Without Redis the lock must not block confirmation.
	assert.True(t, cache.TryConfirmLock(ctx, meetingID))
	assert.True(t, cache.TryConfirmLock(ctx, meetingID))
}

func TestCacheService_InvalidateTallies(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	meetingID := uuid.New()
	timeTally := &domain.TimeTally{CandidateID: uuid.New()}
	placeTally := &domain.PlaceTally{CandidateID: "kakao-1", Available: 3}
	cache.SetTimeTally(ctx, timeTally)
	cache.SetPlaceTally(ctx, placeTally)

	cache.InvalidateTallies(ctx, meetingID,
		[]uuid.UUID{timeTally.CandidateID}, []string{placeTally.CandidateID})

	assert.Nil(t, cache.GetTimeTally(ctx, timeTally.CandidateID))
	assert.Nil(t, cache.GetPlaceTally(ctx, placeTally.CandidateID))
}
