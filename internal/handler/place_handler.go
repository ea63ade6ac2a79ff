package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"moim-be/internal/domain"
	"moim-be/internal/service"
	"moim-be/pkg/errors"
	"moim-be/pkg/logger"
)

// PlaceHandler handles venue recommendation and lookup endpoints
type PlaceHandler struct {
	places *service.PlaceService
	logger *logger.Logger
}

func NewPlaceHandler(places *service.PlaceService, log *logger.Logger) *PlaceHandler {
	return &PlaceHandler{
		places: places,
		logger: log,
	}
}

// Recommend handles POST /api/v1/meetings/{meetingID}/places/recommend
func (h *PlaceHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	meetingID, err := meetingIDParam(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req domain.PlaceRecommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err.Error() != "EOF" {
		respondError(w, h.logger, errors.NewValidationError("Invalid request body", nil))
		return
	}

	response, err := h.places.Recommend(r.Context(), meetingID, &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, response)
}

// Get handles GET /api/v1/places/{placeID}
func (h *PlaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	placeID := chi.URLParam(r, "placeID")
	if placeID == "" {
		respondError(w, h.logger, errors.NewValidationError("placeID is required", nil))
		return
	}

	place, err := h.places.GetPlace(r.Context(), placeID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, place)
}
