package domain

import "errors"

// Sentinel errors returned by repositories and services. Handlers translate
// these into the HTTP error taxonomy in pkg/errors.
var (
	// ErrMeetingNotFound is returned when a meeting does not exist or has
	// been soft-deleted.
	ErrMeetingNotFound = errors.New("meeting not found")

	// ErrParticipantNotFound is returned when a participant does not exist
	// or belongs to a different meeting than implied by the request.
	ErrParticipantNotFound = errors.New("participant not found")

	// ErrCandidateNotFound is returned when a time or place candidate does
	// not exist or belongs to a different meeting.
	ErrCandidateNotFound = errors.New("candidate not found")

	// ErrVoteNotFound is returned when a vote record does not exist.
	ErrVoteNotFound = errors.New("vote not found")

	// ErrUserNotFound is returned when a user record does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrNotHost is returned when a caller attempts a host-only operation
	// on a meeting they did not create.
	ErrNotHost = errors.New("caller is not the meeting host")

	// ErrAlreadyConfirmed is returned when confirming a meeting that is
	// already in the confirmed state. Confirmation is terminal.
	ErrAlreadyConfirmed = errors.New("meeting is already confirmed")

	// ErrDeadlinePassed is returned when a vote arrives after the meeting
	// deadline and deadline enforcement is enabled.
	ErrDeadlinePassed = errors.New("meeting deadline has passed")

	// ErrUnauthorizedParticipant is returned when neither an authenticated
	// user reference nor a share code resolves to a participant.
	ErrUnauthorizedParticipant = errors.New("participant identity could not be resolved")

	// ErrShareCodeMismatch is returned when the supplied share code does
	// not match the meeting's stored code.
	ErrShareCodeMismatch = errors.New("share code does not match")

	// ErrDuplicatePlaceCandidate is returned when a place candidate with
	// the same external place id already exists for the meeting.
	ErrDuplicatePlaceCandidate = errors.New("place candidate already exists for this meeting")
)
