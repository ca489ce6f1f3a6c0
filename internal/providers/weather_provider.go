package providers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"ulascansenturk/weather-glasses/config"
	"ulascansenturk/weather-glasses/internal/weather"
)

const (
	DefaultBaseURL      = "https://api.openweathermap.org/data/2.5"
	DefaultGeocodingURL = "https://api.openweathermap.org/geo/1.0"

	weatherLabel   = "weather provider"
	geocodingLabel = "geocoding provider"

	maxResponseBytes = 1 << 20
	defaultTimeout   = 10 * time.Second
)

type WeatherAPIService interface {
	Fetch(ctx context.Context, query weather.Query) (weather.Result, error)
	FetchByCoordinates(ctx context.Context, lat, lon float64) (weather.Result, error)
	FetchByCityName(ctx context.Context, name string) (weather.Result, error)
	SearchLocations(ctx context.Context, query string) ([]weather.LocationCandidate, error)
}

// OpenWeatherClient is a stateless facade over the OpenWeatherMap current weather and
// direct geocoding endpoints.
type OpenWeatherClient struct {
	apiKey  string
	baseURL string
	geoURL  string
	client  *http.Client
	timeout time.Duration
	logger  zerolog.Logger
	tracer  trace.Tracer

	weatherBreaker *gobreaker.CircuitBreaker
	geoBreaker     *gobreaker.CircuitBreaker
}

type Option func(*OpenWeatherClient)

func WithBaseURL(u string) Option {
	return func(c *OpenWeatherClient) { c.baseURL = u }
}

func WithGeocodingURL(u string) Option {
	return func(c *OpenWeatherClient) { c.geoURL = u }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *OpenWeatherClient) { c.client = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *OpenWeatherClient) { c.timeout = d }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *OpenWeatherClient) { c.logger = l }
}

func NewOpenWeatherClient(apiKey string, opts ...Option) (*OpenWeatherClient, error) {
	if apiKey == "" {
		return nil, &config.ConfigurationError{Err: config.ErrMissingAPIKey}
	}

	c := &OpenWeatherClient{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		geoURL:  DefaultGeocodingURL,
		client:  http.DefaultClient,
		logger:  zerolog.Nop(),
		tracer:  otel.Tracer("ulascansenturk/weather-glasses/providers"),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		c.client = http.DefaultClient
	}
	// The caller's client is never mutated.
	hc := *c.client
	switch {
	case c.timeout > 0:
		hc.Timeout = c.timeout
	case hc.Timeout == 0:
		hc.Timeout = defaultTimeout
	}
	c.client = &hc
	c.logger = c.logger.With().Str("component", "openweather_client").Logger()

	c.weatherBreaker = newBreaker("openweather-current")
	c.geoBreaker = newBreaker("openweather-geocoding")

	return c, nil
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		// Client errors (bad city, bad key) say nothing about provider health.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var pe *ProviderError
			if errors.As(err, &pe) && pe.StatusCode != nil {
				status := *pe.StatusCode
				return status < 500 && status != http.StatusTooManyRequests
			}
			return false
		},
	})
}

type currentWeatherResponse struct {
	Name *string `json:"name"`
	Main *struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

func (r currentWeatherResponse) toResult() (weather.Result, bool) {
	if r.Name == nil || r.Main == nil || r.Main.Temp == nil || r.Main.FeelsLike == nil || len(r.Weather) == 0 {
		return weather.Result{}, false
	}
	return weather.NewResult(*r.Name, *r.Main.Temp, *r.Main.FeelsLike, r.Weather[0].Description), true
}

func (c *OpenWeatherClient) Fetch(ctx context.Context, query weather.Query) (weather.Result, error) {
	if coords, ok := query.Coordinates(); ok {
		return c.FetchByCoordinates(ctx, coords.Latitude, coords.Longitude)
	}
	if city, ok := query.CityName(); ok {
		return c.FetchByCityName(ctx, city)
	}
	return weather.Result{}, &ProviderError{Message: "weather query has no location"}
}

func (c *OpenWeatherClient) FetchByCoordinates(ctx context.Context, lat, lon float64) (weather.Result, error) {
	if !isFinite(lat) || !isFinite(lon) {
		return weather.Result{}, &ProviderError{Message: "coordinates must be finite numbers"}
	}

	ctx, span := c.tracer.Start(ctx, "openweather.fetch_by_coordinates", trace.WithAttributes(
		attribute.Float64("lat", lat),
		attribute.Float64("lon", lon),
	))
	defer span.End()

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	result, err := c.currentWeather(ctx, params)
	recordSpanError(span, err)
	return result, err
}

func (c *OpenWeatherClient) FetchByCityName(ctx context.Context, name string) (weather.Result, error) {
	ctx, span := c.tracer.Start(ctx, "openweather.fetch_by_city", trace.WithAttributes(
		attribute.String("city", name),
	))
	defer span.End()

	params := url.Values{}
	params.Set("q", name)

	result, err := c.currentWeather(ctx, params)
	recordSpanError(span, err)
	return result, err
}

func (c *OpenWeatherClient) SearchLocations(ctx context.Context, query string) ([]weather.LocationCandidate, error) {
	ctx, span := c.tracer.Start(ctx, "openweather.search_locations", trace.WithAttributes(
		attribute.String("query", query),
	))
	defer span.End()

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(weather.MaxLocationCandidates))

	var candidates []weather.LocationCandidate
	if err := c.getJSON(ctx, c.geoBreaker, geocodingLabel, c.geoURL+"/direct", params, &candidates); err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	if len(candidates) > weather.MaxLocationCandidates {
		candidates = candidates[:weather.MaxLocationCandidates]
	}
	span.SetAttributes(attribute.Int("results", len(candidates)))

	return candidates, nil
}

func (c *OpenWeatherClient) currentWeather(ctx context.Context, params url.Values) (weather.Result, error) {
	params.Set("units", "imperial")

	var payload currentWeatherResponse
	if err := c.getJSON(ctx, c.weatherBreaker, weatherLabel, c.baseURL+"/weather", params, &payload); err != nil {
		return weather.Result{}, err
	}

	result, ok := payload.toResult()
	if !ok {
		c.logger.Warn().Msg("current weather response is missing required fields")
		return weather.Result{}, newMalformedError(weatherLabel)
	}

	return result, nil
}

// getJSON issues a GET through the breaker and decodes a 2xx body into target. Every failure
// comes back as a *ProviderError.
func (c *OpenWeatherClient) getJSON(
	ctx context.Context,
	cb *gobreaker.CircuitBreaker,
	label string,
	endpoint string,
	params url.Values,
	target interface{},
) error {
	params.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("failed to build provider request")
		return newTransportError(label)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	body, err := cb.Execute(func() (interface{}, error) {
		resp, err := c.client.Do(req)
		if err != nil {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("provider request failed")
			return nil, newTransportError(label)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("failed to read provider response")
			return nil, newTransportError(label)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			pe := newStatusError(label, resp.StatusCode, data)
			c.logger.Warn().
				Int("status", resp.StatusCode).
				Str("endpoint", endpoint).
				Str("message", pe.Message).
				Msg("provider returned error status")
			return nil, pe
		}

		return data, nil
	})
	if err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) {
			return pe
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.Warn().Str("breaker", cb.Name()).Msg("circuit breaker rejected provider call")
			return newUnavailableError(label)
		}
		return newTransportError(label)
	}

	data, ok := body.([]byte)
	if !ok {
		return newMalformedError(label)
	}
	if err := json.Unmarshal(data, target); err != nil {
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("provider returned malformed JSON")
		return newMalformedError(label)
	}

	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func recordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	var pe *ProviderError
	if errors.As(err, &pe) && pe.StatusCode != nil {
		span.SetAttributes(attribute.Int("http.status_code", *pe.StatusCode))
	}
}

var _ WeatherAPIService = (*OpenWeatherClient)(nil)
