package domain

import (
	"time"

	"github.com/google/uuid"
)

// TimeCandidate is one proposed slot for a meeting. Labels maps each time
// label (e.g. "25.11.11.09:00") to the number of participants currently
// available for it. The map is a derived cache of the vote ledger: it is
// recomputed from the vote rows on every ledger write, never patched
// incrementally.
type TimeCandidate struct {
	ID        uuid.UUID      `json:"id"`
	MeetingID uuid.UUID      `json:"meeting_id"`
	Labels    map[string]int `json:"labels"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// PlaceCandidate is one proposed venue for a meeting. The external place id
// (Kakao place id) is the natural key within a meeting. The available and
// unavailable counts are a derived cache, same discipline as TimeCandidate.
type PlaceCandidate struct {
	ID        string    `json:"id"`
	MeetingID uuid.UUID `json:"meeting_id"`

	PreferenceSubway []string               `json:"preference_subway,omitempty"`
	PreferenceArea   []string               `json:"preference_area,omitempty"`
	Food             map[string]interface{} `json:"food,omitempty"`
	Condition        map[string]interface{} `json:"condition,omitempty"`
	LocationType     LocationChoiceType     `json:"location_type,omitempty"`
	Recommendation   map[string]interface{} `json:"recommendation,omitempty"`

	AvailableCount   int `json:"available_count"`
	UnavailableCount int `json:"unavailable_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TallyEntry is one label's current available count.
type TallyEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TimeTally is the aggregate for one time candidate, ordered descending by
// count. Ties across candidates are broken by earliest-created candidate so
// callers can implement deterministic selection.
type TimeTally struct {
	CandidateID uuid.UUID    `json:"candidate_id"`
	Entries     []TallyEntry `json:"entries"`
}

// Counts returns the tally as a label -> count map.
func (t *TimeTally) Counts() map[string]int {
	m := make(map[string]int, len(t.Entries))
	for _, e := range t.Entries {
		m[e.Label] = e.Count
	}
	return m
}

// CandidateTally is a meeting-level leaderboard row: one candidate's best
// label and count, plus its creation time for tie-breaking.
type CandidateTally struct {
	CandidateID uuid.UUID    `json:"candidate_id"`
	Entries     []TallyEntry `json:"entries"`
	CreatedAt   time.Time    `json:"created_at"`
}

// PlaceTally is the aggregate for one place candidate.
type PlaceTally struct {
	CandidateID string `json:"candidate_id"`
	Available   int    `json:"available"`
	Unavailable int    `json:"unavailable"`
}

// AddTimeCandidateRequest creates a time candidate from a label -> initial
// count mapping. Initial counts are normally zero; non-zero values are
// overwritten by the first tally refresh.
type AddTimeCandidateRequest struct {
	Labels map[string]int `json:"labels"`
}

// AddPlaceCandidateRequest creates a place candidate keyed by its external
// place id.
type AddPlaceCandidateRequest struct {
	ID               string                 `json:"id"`
	PreferenceSubway []string               `json:"preference_subway,omitempty"`
	PreferenceArea   []string               `json:"preference_area,omitempty"`
	Food             map[string]interface{} `json:"food,omitempty"`
	Condition        map[string]interface{} `json:"condition,omitempty"`
	LocationType     string                 `json:"location_type,omitempty"`
	Recommendation   map[string]interface{} `json:"recommendation,omitempty"`
}
