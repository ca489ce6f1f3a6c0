package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"ulascansenturk/weather-glasses/internal/session"
	"ulascansenturk/weather-glasses/internal/weather"
)

const (
	LoadingTitle = "Weather"
	LoadingBody  = "Loading current temperature..."

	ErrorTitle = "Weather Error"
	ErrorBody  = "Unable to load weather data.\nSay \"refresh\" to try again."

	DefaultCity            = "San Francisco, CA"
	DefaultLocationTimeout = 10 * time.Second
)

type State string

const (
	StateIdle            State = "idle"
	StateLoadingLocation State = "loading_location"
	StateLoadingWeather  State = "loading_weather"
	StateDisplayed       State = "displayed"
	StateError           State = "error"
)

var refreshKeywords = []string{"refresh", "update", "weather"}

type WeatherClient interface {
	Fetch(ctx context.Context, query weather.Query) (weather.Result, error)
}

// Orchestrator holds what every session shares. It keeps no per-session state.
type Orchestrator struct {
	client          WeatherClient
	defaultCity     string
	locationTimeout time.Duration
	logger          zerolog.Logger
	tracer          trace.Tracer
}

func NewOrchestrator(
	client WeatherClient,
	defaultCity string,
	locationTimeout time.Duration,
	logger zerolog.Logger,
) *Orchestrator {
	if defaultCity == "" {
		defaultCity = DefaultCity
	}
	if locationTimeout <= 0 {
		locationTimeout = DefaultLocationTimeout
	}

	return &Orchestrator{
		client:          client,
		defaultCity:     defaultCity,
		locationTimeout: locationTimeout,
		logger:          logger.With().Str("component", "orchestrator").Logger(),
		tracer:          otel.Tracer("ulascansenturk/weather-glasses/service"),
	}
}

func (o *Orchestrator) NewSessionRunner(sess session.Session) *SessionRunner {
	return &SessionRunner{
		orch: o,
		sess: sess,
		logger: sess.Logger().With().
			Str("session_id", sess.ID()).
			Str("user_id", sess.UserID()).
			Logger(),
		state: StateIdle,
	}
}

// OnSession shows the loading card, displays the first reading and then serves trigger events
// until ctx is cancelled or the host closes both event channels.
func (o *Orchestrator) OnSession(ctx context.Context, sess session.Session) error {
	return o.NewSessionRunner(sess).Start(ctx)
}

func (o *Orchestrator) OnStop(sessionID, userID, reason string) {
	o.logger.Info().
		Str("session_id", sessionID).
		Str("user_id", userID).
		Str("reason", reason).
		Msg("Weather app session ended")
}

// SessionRunner drives one session. Triggers are handled one at a time from Run, so refreshes
// for a session never overlap.
type SessionRunner struct {
	orch   *Orchestrator
	sess   session.Session
	logger zerolog.Logger

	mu    sync.RWMutex
	state State
}

func (r *SessionRunner) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

func (r *SessionRunner) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

func (r *SessionRunner) Start(ctx context.Context) error {
	r.logger.Info().Msg("Weather app session started")

	r.sess.ShowReferenceCard(LoadingTitle, LoadingBody)
	r.RefreshWeather(ctx)

	return r.Run(ctx)
}

func (r *SessionRunner) Run(ctx context.Context) error {
	transcriptions := r.sess.Transcriptions()
	buttons := r.sess.ButtonPresses()

	for transcriptions != nil || buttons != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-transcriptions:
			if !ok {
				transcriptions = nil
				continue
			}
			r.HandleTranscription(ctx, ev)
		case ev, ok := <-buttons:
			if !ok {
				buttons = nil
				continue
			}
			r.HandleButton(ctx, ev)
		}
	}

	return nil
}

func (r *SessionRunner) HandleTranscription(ctx context.Context, ev session.TranscriptionEvent) bool {
	if !ShouldRefreshOnTranscription(ev) {
		return false
	}

	r.logger.Info().Str("command", ev.Text).Msg("Refreshing weather via voice command")
	r.RefreshWeather(ctx)
	return true
}

func (r *SessionRunner) HandleButton(ctx context.Context, ev session.ButtonEvent) bool {
	if !ShouldRefreshOnButton(ev) {
		return false
	}

	r.logger.Info().Msg("Refreshing weather via button press")
	r.RefreshWeather(ctx)
	return true
}

// RefreshWeather resolves a location, fetches current weather and renders it. It never fails:
// every error ends on the error card and the returned state.
func (r *SessionRunner) RefreshWeather(ctx context.Context) State {
	ctx, span := r.orch.tracer.Start(ctx, "session.refresh_weather", trace.WithAttributes(
		attribute.String("session_id", r.sess.ID()),
	))
	defer span.End()

	r.setState(StateLoadingLocation)
	query, err := r.resolveQuery(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return r.showError(err)
	}
	span.SetAttributes(attribute.String("query.kind", string(query.Kind())))

	r.setState(StateLoadingWeather)
	result, err := r.orch.client.Fetch(ctx, query)
	if err != nil && query.Kind() == weather.QueryKindCoordinates && ctx.Err() == nil {
		r.logger.Warn().Err(err).Msg("Failed to load weather for current location, using default city")
		span.AddEvent("fallback_to_default_city")
		result, err = r.orch.client.Fetch(ctx, weather.ByCityName(r.orch.defaultCity))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return r.showError(err)
	}

	r.sess.ShowReferenceCard(result.LocationName, result.CardBody())
	r.logger.Info().
		Str("location", result.LocationName).
		Int("temp", result.TemperatureF).
		Str("description", result.Description).
		Msg("Weather displayed")

	r.setState(StateDisplayed)
	return StateDisplayed
}

func (r *SessionRunner) resolveQuery(ctx context.Context) (weather.Query, error) {
	if r.sess.HasLocation() {
		coords, err := awaitLocation(ctx, r.sess, r.orch.locationTimeout)
		if err == nil {
			return weather.ByCoordinates(coords), nil
		}
		if ctx.Err() != nil {
			return weather.Query{}, ctx.Err()
		}
		r.logger.Warn().Err(err).Msg("Failed to get location, using default city")
	}

	return weather.ByCityName(r.orch.defaultCity), nil
}

func (r *SessionRunner) showError(err error) State {
	r.logger.Error().Err(err).Msg("Failed to load weather data")
	r.sess.ShowReferenceCard(ErrorTitle, ErrorBody)
	r.setState(StateError)
	return StateError
}

func ShouldRefreshOnTranscription(ev session.TranscriptionEvent) bool {
	if !ev.IsFinal {
		return false
	}

	text := strings.ToLower(ev.Text)
	for _, keyword := range refreshKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

func ShouldRefreshOnButton(ev session.ButtonEvent) bool {
	return ev.Action == "press" && ev.Button == "select"
}
