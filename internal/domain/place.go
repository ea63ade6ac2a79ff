package domain

import "time"

// Place is a denormalized copy of an externally sourced venue, cached when
// the host confirms a meeting at a known place candidate. It is display
// data, not authoritative.
type Place struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Category  string  `json:"category,omitempty"`
	Address   string  `json:"address,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	Phone     string  `json:"phone,omitempty"`
	PlaceURL  string  `json:"place_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlaceSearchResult is one venue returned by the external place provider.
type PlaceSearchResult struct {
	ID        string  `json:"id"`
	Name      string  `json:"place_name"`
	Category  string  `json:"category_name,omitempty"`
	Address   string  `json:"address_name,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Phone     string  `json:"phone,omitempty"`
	PlaceURL  string  `json:"place_url,omitempty"`
	Distance  int     `json:"distance,omitempty"`
}

// PlaceRecommendationRequest asks for venue suggestions around the meeting's
// search conditions.
type PlaceRecommendationRequest struct {
	Keywords []string `json:"keywords,omitempty"`
	X        string   `json:"x,omitempty"`
	Y        string   `json:"y,omitempty"`
	Radius   int      `json:"radius,omitempty"`
	Limit    int      `json:"limit,omitempty"`
}

// PlaceRecommendationResponse is the aggregated provider output for one
// recommendation run.
type PlaceRecommendationResponse struct {
	Results         []PlaceSearchResult `json:"results"`
	SearchKeywords  []string            `json:"search_keywords"`
	TotalCandidates int                 `json:"total_candidates"`
}
