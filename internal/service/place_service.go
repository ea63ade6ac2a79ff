package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"moim-be/internal/domain"
	"moim-be/internal/repository"
	"moim-be/pkg/logger"
)

const (
	maxSearchKeywords    = 3
	defaultRecommendSize = 15
)

// PlaceService turns the external place provider into meeting place
// candidates, and maintains the denormalized cache of confirmed venues.
type PlaceService struct {
	search       PlaceSearchService
	candidates   repository.CandidateRepository
	meetings     repository.MeetingRepository
	participants repository.ParticipantRepository
	places       repository.PlaceRepository
	logger       *logger.Logger
}

func NewPlaceService(
	search PlaceSearchService,
	candidates repository.CandidateRepository,
	meetings repository.MeetingRepository,
	participants repository.ParticipantRepository,
	places repository.PlaceRepository,
	log *logger.Logger,
) *PlaceService {
	return &PlaceService{
		search:       search,
		candidates:   candidates,
		meetings:     meetings,
		participants: participants,
		places:       places,
		logger:       log,
	}
}

// buildKeywords assembles search keywords from the request, falling back to
// the meeting's location value combined with the food preferences its
// participants reported.
func (s *PlaceService) buildKeywords(ctx context.Context, meeting *domain.Meeting, req *domain.PlaceRecommendationRequest) []string {
	if len(req.Keywords) > 0 {
		if len(req.Keywords) > maxSearchKeywords {
			return req.Keywords[:maxSearchKeywords]
		}
		return req.Keywords
	}

	area := meeting.LocationChoiceValue
	seen := make(map[string]struct{})
	var keywords []string
	add := func(kw string) {
		if kw == "" {
			return
		}
		if _, ok := seen[kw]; ok {
			return
		}
		seen[kw] = struct{}{}
		keywords = append(keywords, kw)
	}

	participants, err := s.participants.ListByMeeting(ctx, meeting.ID)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load participant preferences for recommendation")
	}
	for _, p := range participants {
		if len(keywords) >= maxSearchKeywords {
			break
		}
		foods, ok := p.PreferencePlace["food"].([]interface{})
		if !ok {
			continue
		}
		for _, f := range foods {
			food, ok := f.(string)
			if !ok {
				continue
			}
			if area != "" {
				add(area + " " + food)
			} else {
				add(food)
			}
			if len(keywords) >= maxSearchKeywords {
				break
			}
		}
	}

	if len(keywords) == 0 {
		if area != "" {
			add(area + " 맛집")
		} else {
			add(meeting.Name)
		}
	}
	return keywords
}

// Recommend searches the provider around the meeting's conditions, stores
// the results as place candidates (duplicates are skipped) and returns the
// aggregated result set.
func (s *PlaceService) Recommend(ctx context.Context, meetingID uuid.UUID, req *domain.PlaceRecommendationRequest) (*domain.PlaceRecommendationResponse, error) {
	if req == nil {
		req = &domain.PlaceRecommendationRequest{}
	}

	meeting, err := s.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, domain.ErrMeetingNotFound
	}

	limit := req.Limit
	if limit <= 0 || limit > defaultRecommendSize {
		limit = defaultRecommendSize
	}

	keywords := s.buildKeywords(ctx, meeting, req)
	seen := make(map[string]struct{})
	var results []domain.PlaceSearchResult

	for _, keyword := range keywords {
		found, err := s.search.SearchByKeyword(ctx, keyword, req.X, req.Y, req.Radius)
		if err != nil {
			// One failed keyword should not void the whole run.
			s.logger.WithError(err).WithField("keyword", keyword).Warn("Place search failed")
			continue
		}
		for _, r := range found {
			if _, dup := seen[r.ID]; dup {
				continue
			}
			seen[r.ID] = struct{}{}
			results = append(results, r)
			if len(results) >= limit {
				break
			}
		}
		if len(results) >= limit {
			break
		}
	}

	stored := 0
	for _, r := range results {
		candidate := &domain.PlaceCandidate{
			ID:           r.ID,
			MeetingID:    meetingID,
			LocationType: meeting.LocationChoiceType,
			Recommendation: map[string]interface{}{
				"place_name":    r.Name,
				"category_name": r.Category,
				"address_name":  r.Address,
				"phone":         r.Phone,
				"place_url":     r.PlaceURL,
				"x":             strconv.FormatFloat(r.Longitude, 'f', -1, 64),
				"y":             strconv.FormatFloat(r.Latitude, 'f', -1, 64),
			},
		}
		if err := s.candidates.CreatePlaceCandidate(ctx, candidate); err != nil {
			if errors.Is(err, domain.ErrDuplicatePlaceCandidate) {
				continue
			}
			return nil, fmt.Errorf("failed to store place candidate: %w", err)
		}
		stored++
	}

	s.logger.WithFields(map[string]interface{}{
		"meeting_id": meetingID,
		"keywords":   keywords,
		"results":    len(results),
		"stored":     stored,
	}).Info("Place recommendation complete")

	return &domain.PlaceRecommendationResponse{
		Results:         results,
		SearchKeywords:  keywords,
		TotalCandidates: len(results),
	}, nil
}

// CacheConfirmedPlace denormalizes the venue the host confirmed, pulling
// display data from the candidate's recommendation payload.
func (s *PlaceService) CacheConfirmedPlace(ctx context.Context, placeCandidateID string) error {
	candidate, err := s.candidates.GetPlaceCandidate(ctx, placeCandidateID)
	if err != nil {
		return err
	}
	if candidate == nil {
		return domain.ErrCandidateNotFound
	}

	place := &domain.Place{ID: candidate.ID}
	rec := candidate.Recommendation
	if name, ok := rec["place_name"].(string); ok {
		place.Name = name
	}
	if category, ok := rec["category_name"].(string); ok {
		place.Category = category
	}
	if address, ok := rec["address_name"].(string); ok {
		place.Address = address
	}
	if phone, ok := rec["phone"].(string); ok {
		place.Phone = phone
	}
	if url, ok := rec["place_url"].(string); ok {
		place.PlaceURL = url
	}
	if x, ok := rec["x"].(string); ok {
		if lng, err := strconv.ParseFloat(x, 64); err == nil {
			place.Longitude = lng
		}
	}
	if y, ok := rec["y"].(string); ok {
		if lat, err := strconv.ParseFloat(y, 64); err == nil {
			place.Latitude = lat
		}
	}

	return s.places.Upsert(ctx, place)
}

// GetPlace returns a cached confirmed venue.
func (s *PlaceService) GetPlace(ctx context.Context, id string) (*domain.Place, error) {
	place, err := s.places.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if place == nil {
		return nil, domain.ErrCandidateNotFound
	}
	return place, nil
}
