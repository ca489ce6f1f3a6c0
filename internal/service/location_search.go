package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"ulascansenturk/weather-glasses/internal/inmemorycache"
	"ulascansenturk/weather-glasses/internal/weather"
)

var ErrEmptyQuery = errors.New("query cannot be empty")

type LocationSearcher interface {
	SearchLocations(ctx context.Context, query string) ([]weather.LocationCandidate, error)
}

type LocationSearchService interface {
	Search(ctx context.Context, query string) ([]weather.LocationCandidate, error)
}

type locationSearch struct {
	client LocationSearcher
	cache  inmemorycache.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewLocationSearch wraps geocoding with a result cache. A nil cache or non-positive ttl
// disables caching.
func NewLocationSearch(
	client LocationSearcher,
	cache inmemorycache.Cache,
	ttl time.Duration,
	logger zerolog.Logger,
) LocationSearchService {
	return &locationSearch{
		client: client,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "location_search").Logger(),
	}
}

func (s *locationSearch) Search(ctx context.Context, query string) ([]weather.LocationCandidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	caching := s.cache != nil && s.ttl > 0

	if caching {
		cached, found, err := s.cache.Get(query)
		if err != nil {
			s.logger.Warn().Err(err).Str("query", query).Msg("failed to read location cache")
		} else if found {
			return cached, nil
		}
	}

	candidates, err := s.client.SearchLocations(ctx, query)
	if err != nil {
		return nil, err
	}

	if caching {
		if err := s.cache.Set(query, candidates, s.ttl); err != nil {
			s.logger.Warn().Err(err).Str("query", query).Msg("failed to cache locations")
		}
	}

	return candidates, nil
}
