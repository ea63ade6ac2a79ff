package domain

import (
	"time"

	"github.com/google/uuid"
)

// Participant is a person attached to exactly one meeting. Authenticated
// participants carry a UserID; anonymous participants are identified by the
// opaque OAuthKey their provider assigned them, scoped to the meeting.
type Participant struct {
	ID        uuid.UUID  `json:"id"`
	MeetingID uuid.UUID  `json:"meeting_id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	OAuthKey  string     `json:"oauth_key,omitempty"`

	Nickname        string                 `json:"nickname,omitempty"`
	IsInvited       bool                   `json:"is_invited"`
	HasResponded    bool                   `json:"has_responded"`
	PreferencePlace map[string]interface{} `json:"preference_place,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ParticipantIdentity is the caller's claim to a meeting: either an
// authenticated user reference, or an anonymous provider key plus the
// meeting's share code. Exactly one path must resolve.
type ParticipantIdentity struct {
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	OAuthKey  string     `json:"oauth_key,omitempty"`
	ShareCode string     `json:"share_code,omitempty"`
	Nickname  string     `json:"nickname,omitempty"`
}

// UpdateParticipantRequest carries the only mutations a participant row
// accepts after creation: response flag and preference updates.
type UpdateParticipantRequest struct {
	Nickname        *string                `json:"nickname,omitempty"`
	HasResponded    *bool                  `json:"has_responded,omitempty"`
	IsInvited       *bool                  `json:"is_invited,omitempty"`
	PreferencePlace map[string]interface{} `json:"preference_place,omitempty"`
}
