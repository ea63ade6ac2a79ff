package domain

import (
	"time"

	"github.com/google/uuid"
)

// LocationChoiceType describes how a meeting picks its venue search area.
type LocationChoiceType string

const (
	LocationCenter           LocationChoiceType = "center_location"
	LocationPreferenceArea   LocationChoiceType = "preference_area"
	LocationPreferenceSubway LocationChoiceType = "preference_subway"
)

// Valid reports whether t is one of the known location choice types.
func (t LocationChoiceType) Valid() bool {
	switch t {
	case LocationCenter, LocationPreferenceArea, LocationPreferenceSubway:
		return true
	}
	return false
}

// MeetingStatus is the confirmation state machine for a meeting.
// Open -> Confirmed is the only forward transition and is terminal;
// Cancelled is reached via soft delete and is also terminal.
type MeetingStatus string

const (
	MeetingOpen      MeetingStatus = "open"
	MeetingConfirmed MeetingStatus = "confirmed"
	MeetingCancelled MeetingStatus = "cancelled"
)

// Meeting is the scheduling unit a host creates. It owns candidates,
// participants, and the eventual confirmed time/place pair.
type Meeting struct {
	ID                       uuid.UUID              `json:"id"`
	Name                     string                 `json:"name"`
	CreatorID                uuid.UUID              `json:"creator_id"`
	Purpose                  []string               `json:"purpose,omitempty"`
	IsOnePlace               bool                   `json:"is_one_place"`
	LocationChoiceType       LocationChoiceType     `json:"location_choice_type,omitempty"`
	LocationChoiceValue      string                 `json:"location_choice_value,omitempty"`
	PreferencePlace          map[string]interface{} `json:"preference_place,omitempty"`
	Deadline                 *time.Time             `json:"deadline,omitempty"`
	ExpectedParticipantCount int                    `json:"expected_participant_count"`
	ShareCode                string                 `json:"share_code,omitempty"`

	// Confirmation fields. All null until the host confirms; once set they
	// are never cleared.
	ConfirmedTime     string     `json:"confirmed_time,omitempty"`
	ConfirmedLocation string     `json:"confirmed_location,omitempty"`
	ConfirmedAt       *time.Time `json:"confirmed_at,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`
}

// Status derives the confirmation state from the meeting's fields.
func (m *Meeting) Status() MeetingStatus {
	if m.DeletedAt != nil {
		return MeetingCancelled
	}
	if m.ConfirmedAt != nil {
		return MeetingConfirmed
	}
	return MeetingOpen
}

// IsHost reports whether userID created this meeting.
func (m *Meeting) IsHost(userID uuid.UUID) bool {
	return m.CreatorID == userID
}

// CreateMeetingRequest is the payload for creating a meeting.
type CreateMeetingRequest struct {
	Name                     string                 `json:"name"`
	Purpose                  []string               `json:"purpose,omitempty"`
	IsOnePlace               *bool                  `json:"is_one_place,omitempty"`
	LocationChoiceType       string                 `json:"location_choice_type,omitempty"`
	LocationChoiceValue      string                 `json:"location_choice_value,omitempty"`
	PreferencePlace          map[string]interface{} `json:"preference_place,omitempty"`
	Deadline                 *time.Time             `json:"deadline,omitempty"`
	ExpectedParticipantCount int                    `json:"expected_participant_count,omitempty"`
}

// UpdateMeetingRequest carries optional host edits to a meeting. Nil fields
// are left untouched. Confirmation fields are deliberately absent; the only
// path to them is Confirm.
type UpdateMeetingRequest struct {
	Name                     *string                `json:"name,omitempty"`
	Purpose                  []string               `json:"purpose,omitempty"`
	IsOnePlace               *bool                  `json:"is_one_place,omitempty"`
	LocationChoiceType       *string                `json:"location_choice_type,omitempty"`
	LocationChoiceValue      *string                `json:"location_choice_value,omitempty"`
	PreferencePlace          map[string]interface{} `json:"preference_place,omitempty"`
	Deadline                 *time.Time             `json:"deadline,omitempty"`
	ExpectedParticipantCount *int                   `json:"expected_participant_count,omitempty"`
}

// ConfirmRequest is the host's explicit time/place choice. ChosenTime is a
// time label in the same format the time candidates use; the engine does not
// require it to be the top-voted label.
type ConfirmRequest struct {
	ChosenTime     string `json:"chosen_time"`
	ChosenLocation string `json:"chosen_location"`
}

// ConfirmationSnapshot records the tally state at the moment of confirmation
// so the decision can be audited against the votes that existed then.
type ConfirmationSnapshot struct {
	TakenAt      time.Time        `json:"taken_at"`
	TimeTallies  []CandidateTally `json:"time_tallies,omitempty"`
	PlaceTallies []PlaceTally     `json:"place_tallies,omitempty"`
}

// ParticipantStats summarizes invite responses for a meeting.
type ParticipantStats struct {
	Total     int `json:"total"`
	Responded int `json:"responded"`
}

// MeetingSummary is the per-user dashboard row: one meeting plus the
// caller's relationship to it and its response stats.
type MeetingSummary struct {
	ID                       uuid.UUID        `json:"id"`
	Title                    string           `json:"title"`
	Purpose                  string           `json:"purpose"`
	Status                   MeetingStatus    `json:"status"`
	CreatorID                uuid.UUID        `json:"creator_id"`
	Deadline                 *time.Time       `json:"deadline,omitempty"`
	ExpectedParticipantCount int              `json:"expected_participant_count"`
	ParticipantStats         ParticipantStats `json:"participant_stats"`
	IsHost                   bool             `json:"is_host"`
}
