package kakao

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"moim-be/internal/domain"
	"moim-be/internal/service"
	"moim-be/pkg/errors"
	"moim-be/pkg/logger"
)

const (
	keywordSearchURL = "https://dapi.kakao.com/v2/local/search/keyword.json"

	maxPageSize   = 15
	defaultRadius = 2000
)

// Service implements the PlaceSearchService interface against the Kakao
// Local keyword search API.
type Service struct {
	restAPIKey string
	searchURL  string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewService creates a new Kakao place search service
func NewService(restAPIKey string, log *logger.Logger) service.PlaceSearchService {
	return &Service{
		restAPIKey: restAPIKey,
		searchURL:  keywordSearchURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: log,
	}
}

// keywordSearchResponse mirrors the Kakao Local response. Coordinates and
// distance come back as strings.
type keywordSearchResponse struct {
	Documents []struct {
		ID           string `json:"id"`
		PlaceName    string `json:"place_name"`
		CategoryName string `json:"category_name"`
		AddressName  string `json:"address_name"`
		Phone        string `json:"phone"`
		PlaceURL     string `json:"place_url"`
		X            string `json:"x"`
		Y            string `json:"y"`
		Distance     string `json:"distance"`
	} `json:"documents"`
	Meta struct {
		TotalCount int `json:"total_count"`
	} `json:"meta"`
}

// SearchByKeyword searches venues by keyword, optionally biased around a
// center coordinate (x is longitude, y is latitude, both as strings the way
// Kakao hands them out).
func (s *Service) SearchByKeyword(ctx context.Context, query string, x, y string, radius int) ([]domain.PlaceSearchResult, error) {
	if query == "" {
		return nil, errors.NewValidationError("search query is required", nil)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("size", strconv.Itoa(maxPageSize))
	if x != "" && y != "" {
		params.Set("x", x)
		params.Set("y", y)
		if radius <= 0 {
			radius = defaultRadius
		}
		params.Set("radius", strconv.Itoa(radius))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.NewInternalError("Failed to create search request", err)
	}
	req.Header.Set("Authorization", "KakaoAK "+s.restAPIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.WithError(err).Error("Kakao place search request failed")
		return nil, errors.NewExternalError("Place search unavailable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		s.logger.WithFields(map[string]interface{}{
			"status_code":   resp.StatusCode,
			"response_body": string(body),
		}).Error("Kakao place search returned error")
		return nil, errors.NewExternalError(fmt.Sprintf("Place search failed with status %d", resp.StatusCode), nil)
	}

	var search keywordSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, errors.NewInternalError("Failed to decode place search response", err)
	}

	results := make([]domain.PlaceSearchResult, 0, len(search.Documents))
	for _, doc := range search.Documents {
		result := domain.PlaceSearchResult{
			ID:       doc.ID,
			Name:     doc.PlaceName,
			Category: doc.CategoryName,
			Address:  doc.AddressName,
			Phone:    doc.Phone,
			PlaceURL: doc.PlaceURL,
		}
		if lng, err := strconv.ParseFloat(doc.X, 64); err == nil {
			result.Longitude = lng
		}
		if lat, err := strconv.ParseFloat(doc.Y, 64); err == nil {
			result.Latitude = lat
		}
		if d, err := strconv.Atoi(doc.Distance); err == nil {
			result.Distance = d
		}
		results = append(results, result)
	}

	s.logger.WithFields(map[string]interface{}{
		"query":   query,
		"results": len(results),
	}).Debug("Kakao place search complete")

	return results, nil
}
