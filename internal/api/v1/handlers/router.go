package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"ulascansenturk/weather-glasses/internal/host"
)

const requestIDHeader = "X-Request-Id"

func NewRouter(locations *LocationsHandler, sessions *SessionsHandler, registry *host.Registry, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok", Sessions: registry.Len()})
	})

	mux.Handle("/api/v1/locations", locations)

	mux.HandleFunc("POST /webhook", sessions.requireAuth(sessions.Webhook))
	mux.HandleFunc("POST /sessions/{id}/transcription", sessions.requireAuth(sessions.Transcription))
	mux.HandleFunc("POST /sessions/{id}/button", sessions.requireAuth(sessions.Button))
	mux.HandleFunc("POST /sessions/{id}/location", sessions.requireAuth(sessions.Location))
	mux.HandleFunc("GET /sessions/{id}/card", sessions.requireAuth(sessions.Card))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, "not found")
	})

	return requestLogger(logger, mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		event := logger.Info()
		if rec.status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("latency", time.Since(start)).
			Msg("request handled")
	})
}
