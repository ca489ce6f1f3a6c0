package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"ulascansenturk/weather-glasses/internal/host"
	"ulascansenturk/weather-glasses/internal/service"
	"ulascansenturk/weather-glasses/internal/session"
)

// SessionsHandler plays the host side of the app: it accepts session lifecycle webhooks and
// forwards device events into running sessions.
type SessionsHandler struct {
	orchestrator *service.Orchestrator
	registry     *host.Registry
	apiKey       string
	baseCtx      context.Context
	stopTimeout  time.Duration
	validate     *validator.Validate
	logger       zerolog.Logger
}

// NewSessionsHandler builds the handler. baseCtx bounds every session goroutine, so it should
// live as long as the server rather than a single request.
func NewSessionsHandler(
	baseCtx context.Context,
	orchestrator *service.Orchestrator,
	registry *host.Registry,
	apiKey string,
	stopTimeout time.Duration,
	logger zerolog.Logger,
) *SessionsHandler {
	return &SessionsHandler{
		orchestrator: orchestrator,
		registry:     registry,
		apiKey:       apiKey,
		baseCtx:      baseCtx,
		stopTimeout:  stopTimeout,
		validate:     validator.New(),
		logger:       logger.With().Str("component", "sessions_handler").Logger(),
	}
}

func (h *SessionsHandler) authorized(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.apiKey)) == 1
}

func (h *SessionsHandler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.authorized(r) {
			respondWithError(w, http.StatusUnauthorized, "invalid or missing API key")
			return
		}
		next(w, r)
	}
}

func (h *SessionsHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	var req WebhookRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	switch req.Type {
	case WebhookSessionRequest:
		h.startSession(w, req)
	case WebhookStopRequest:
		h.stopSession(w, r, req)
	}
}

func (h *SessionsHandler) startSession(w http.ResponseWriter, req WebhookRequest) {
	id := req.SessionID
	if id == "" {
		id = uuid.NewString()
	}

	logger := h.logger.With().Str("session_id", id).Str("user_id", req.UserID).Logger()
	sess := host.NewLocalSession(id, req.UserID, req.HasLocation, logger)

	if err := h.registry.Start(h.baseCtx, sess, h.orchestrator.OnSession); err != nil {
		if errors.Is(err, host.ErrSessionExists) {
			respondWithError(w, http.StatusConflict, "session "+id+" already exists")
			return
		}
		logger.Error().Err(err).Msg("failed to start session")
		respondWithError(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	respondWithJSON(w, http.StatusOK, WebhookResponse{Status: "started", SessionID: id})
}

func (h *SessionsHandler) stopSession(w http.ResponseWriter, r *http.Request, req WebhookRequest) {
	ctx, cancel := context.WithTimeout(r.Context(), h.stopTimeout)
	defer cancel()

	sess, err := h.registry.Stop(ctx, req.SessionID)
	if errors.Is(err, host.ErrSessionNotFound) {
		respondWithError(w, http.StatusNotFound, "session "+req.SessionID+" not found")
		return
	}
	if err != nil {
		h.logger.Warn().Err(err).Str("session_id", req.SessionID).Msg("session did not stop in time")
	}

	h.orchestrator.OnStop(sess.ID(), sess.UserID(), req.Reason)
	respondWithJSON(w, http.StatusOK, WebhookResponse{Status: "stopped", SessionID: sess.ID()})
}

func (h *SessionsHandler) Transcription(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req TranscriptionRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	h.respondPushed(w, sess.PushTranscription(session.TranscriptionEvent{Text: req.Text, IsFinal: req.IsFinal}), nil)
}

func (h *SessionsHandler) Button(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req ButtonRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	h.respondPushed(w, sess.PushButton(session.ButtonEvent{Button: req.Button, Action: req.Action}), nil)
}

func (h *SessionsHandler) Location(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req LocationRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	delivered, err := sess.PushLocation(session.LocationUpdate{Lat: *req.Lat, Lng: *req.Lng})
	h.respondPushed(w, err, &delivered)
}

func (h *SessionsHandler) Card(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}

	card, shown := sess.LastCard()
	if !shown {
		respondWithError(w, http.StatusNotFound, "no card shown yet")
		return
	}

	respondWithJSON(w, http.StatusOK, CardResponse{SessionID: sess.ID(), Card: card})
}

func (h *SessionsHandler) lookup(w http.ResponseWriter, r *http.Request) (*host.LocalSession, bool) {
	id := r.PathValue("id")
	sess, ok := h.registry.Get(id)
	if !ok {
		respondWithError(w, http.StatusNotFound, "session "+id+" not found")
		return nil, false
	}
	return sess, true
}

func (h *SessionsHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	if err := decodeJSON(r, target); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		respondWithError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func (h *SessionsHandler) respondPushed(w http.ResponseWriter, err error, delivered *int) {
	switch {
	case errors.Is(err, host.ErrSessionClosed):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, host.ErrEventQueueFull):
		respondWithError(w, http.StatusTooManyRequests, err.Error())
	case err != nil:
		respondWithError(w, http.StatusInternalServerError, err.Error())
	default:
		respondWithJSON(w, http.StatusAccepted, EventResponse{Status: "accepted", Delivered: delivered})
	}
}

func validationMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "invalid request: " + err.Error()
	}
	fe := validationErrs[0]
	return "field " + fe.Field() + " failed " + fe.Tag() + " validation"
}
