package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"ulascansenturk/weather-glasses/internal/providers"
	"ulascansenturk/weather-glasses/internal/service"
)

type LocationsHandler struct {
	search  service.LocationSearchService
	timeout time.Duration
}

func NewLocationsHandler(search service.LocationSearchService, timeout time.Duration) *LocationsHandler {
	return &LocationsHandler{
		search:  search,
		timeout: timeout,
	}
}

func (h *LocationsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path != "/api/v1/locations":
		respondWithError(w, http.StatusNotFound, "not found")
	case r.Method != http.MethodGet:
		respondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
	default:
		h.GetLocations(w, r)
	}
}

func (h *LocationsHandler) GetLocations(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "location parameter 'q' is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	locations, err := h.search.Search(ctx, query)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("failed to search locations")

		var providerErr *providers.ProviderError
		switch {
		case errors.Is(err, service.ErrEmptyQuery):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &providerErr):
			respondWithError(w, http.StatusBadGateway, "failed to search locations: "+providerErr.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "failed to search locations: "+err.Error())
		}
		return
	}

	respondWithJSON(w, http.StatusOK, LocationsResponse{
		Query:     query,
		Locations: locations,
	})
}
