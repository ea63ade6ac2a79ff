package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moim-be/internal/domain"
)

func TestCreateMeeting_Defaults(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	host := uuid.New()

	meeting, err := f.meetingService.CreateMeeting(ctx, host, &domain.CreateMeetingRequest{
		Name: "  halloween party  ",
	})
	require.NoError(t, err)

	assert.Equal(t, "halloween party", meeting.Name)
	assert.Equal(t, host, meeting.CreatorID)
	assert.Equal(t, defaultExpectedParticipants, meeting.ExpectedParticipantCount)
	assert.Len(t, meeting.ShareCode, 8)
	assert.Equal(t, domain.MeetingOpen, meeting.Status())

	// The host joins their own meeting on creation.
	participants, err := f.participants.ListByMeeting(ctx, meeting.ID)
	require.NoError(t, err)
	require.Len(t, participants, 1)
	require.NotNil(t, participants[0].UserID)
	assert.Equal(t, host, *participants[0].UserID)
}

func TestCreateMeeting_Validation(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()

	_, err := f.meetingService.CreateMeeting(ctx, uuid.New(), &domain.CreateMeetingRequest{Name: "   "})
	require.Error(t, err)

	_, err = f.meetingService.CreateMeeting(ctx, uuid.New(), &domain.CreateMeetingRequest{
		Name:               "dinner",
		LocationChoiceType: "teleport",
	})
	require.Error(t, err)
}

func TestGenerateShareCode_Unique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		code, err := generateShareCode()
		require.NoError(t, err)
		assert.Len(t, code, 8)
		_, dup := seen[code]
		assert.False(t, dup)
		seen[code] = struct{}{}
	}
}

func TestGetMeetingByShareCode_ExactMatch(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()

	meeting, err := f.meetingService.CreateMeeting(ctx, uuid.New(), &domain.CreateMeetingRequest{Name: "dinner"})
	require.NoError(t, err)

	found, err := f.meetingService.GetMeetingByShareCode(ctx, meeting.ShareCode)
	require.NoError(t, err)
	assert.Equal(t, meeting.ID, found.ID)

	_, err = f.meetingService.GetMeetingByShareCode(ctx, "WRONGCOD")
	assert.ErrorIs(t, err, domain.ErrMeetingNotFound)
}

func TestConfirm_HostOnlyAndTerminal(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	host := uuid.New()

	meeting, err := f.meetingService.CreateMeeting(ctx, host, &domain.CreateMeetingRequest{Name: "dinner"})
	require.NoError(t, err)

	_, err = f.meetingService.Confirm(ctx, meeting.ID, uuid.New(), &domain.ConfirmRequest{
		ChosenTime: "25.11.11.14:00",
	})
	assert.ErrorIs(t, err, domain.ErrNotHost)

	confirmed, err := f.meetingService.Confirm(ctx, meeting.ID, host, &domain.ConfirmRequest{
		ChosenTime:     "25.11.11.14:00",
		ChosenLocation: "kakao-12345",
	})
	require.NoError(t, err)
	assert.Equal(t, "25.11.11.14:00", confirmed.ConfirmedTime)
	assert.Equal(t, "kakao-12345", confirmed.ConfirmedLocation)
	assert.NotNil(t, confirmed.ConfirmedAt)
	assert.Equal(t, domain.MeetingConfirmed, confirmed.Status())

	// Confirming twice is rejected, never merged.
	_, err = f.meetingService.Confirm(ctx, meeting.ID, host, &domain.ConfirmRequest{
		ChosenTime: "25.11.12.09:00",
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyConfirmed)

	unchanged, err := f.meetings.GetByID(ctx, meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, "25.11.11.14:00", unchanged.ConfirmedTime)
}

func TestConfirm_AllowedWithZeroVotes(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	host := uuid.New()

	meeting, err := f.meetingService.CreateMeeting(ctx, host, &domain.CreateMeetingRequest{Name: "dinner"})
	require.NoError(t, err)
	f.seedTimeCandidate(meeting.ID, "25.11.11.09:00")

	confirmed, err := f.meetingService.Confirm(ctx, meeting.ID, host, &domain.ConfirmRequest{
		ChosenTime: "25.11.11.09:00",
	})
	require.NoError(t, err)
	assert.NotNil(t, confirmed.ConfirmedAt)
}

func TestConfirm_RequiresChoice(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	host := uuid.New()

	meeting, err := f.meetingService.CreateMeeting(ctx, host, &domain.CreateMeetingRequest{Name: "dinner"})
	require.NoError(t, err)

	_, err = f.meetingService.Confirm(ctx, meeting.ID, host, &domain.ConfirmRequest{})
	require.Error(t, err)
}

func TestUpdateMeeting_NonHostForbidden(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	host := uuid.New()

	meeting, err := f.meetingService.CreateMeeting(ctx, host, &domain.CreateMeetingRequest{Name: "dinner"})
	require.NoError(t, err)

	name := "lunch"
	_, err = f.meetingService.UpdateMeeting(ctx, meeting.ID, uuid.New(), &domain.UpdateMeetingRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotHost)

	updated, err := f.meetingService.UpdateMeeting(ctx, meeting.ID, host, &domain.UpdateMeetingRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "lunch", updated.Name)
}

func TestDeleteMeeting_HidesMeeting(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	host := uuid.New()

	meeting, err := f.meetingService.CreateMeeting(ctx, host, &domain.CreateMeetingRequest{Name: "dinner"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.meetingService.DeleteMeeting(ctx, meeting.ID, uuid.New()), domain.ErrNotHost)
	require.NoError(t, f.meetingService.DeleteMeeting(ctx, meeting.ID, host))

	_, err = f.meetingService.GetMeeting(ctx, meeting.ID)
	assert.ErrorIs(t, err, domain.ErrMeetingNotFound)

	// A deleted meeting can no longer be confirmed.
	_, err = f.meetingService.Confirm(ctx, meeting.ID, host, &domain.ConfirmRequest{ChosenTime: "25.11.11.09:00"})
	assert.ErrorIs(t, err, domain.ErrMeetingNotFound)
}

func TestSummariesByUser_ExcludesConfirmed(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	host := uuid.New()

	open, err := f.meetingService.CreateMeeting(ctx, host, &domain.CreateMeetingRequest{Name: "open one"})
	require.NoError(t, err)
	done, err := f.meetingService.CreateMeeting(ctx, host, &domain.CreateMeetingRequest{Name: "done one"})
	require.NoError(t, err)

	_, err = f.meetingService.Confirm(ctx, done.ID, host, &domain.ConfirmRequest{ChosenTime: "25.11.11.09:00"})
	require.NoError(t, err)

	summaries, err := f.meetingService.SummariesByUser(ctx, host)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, open.ID, summaries[0].ID)
}
