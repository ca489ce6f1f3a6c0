package handlers

import (
	"ulascansenturk/weather-glasses/internal/host"
	"ulascansenturk/weather-glasses/internal/weather"
)

const (
	WebhookSessionRequest = "session_request"
	WebhookStopRequest    = "stop_request"
)

type LocationsResponse struct {
	Query     string                      `json:"query"`
	Locations []weather.LocationCandidate `json:"locations"`
}

type WebhookRequest struct {
	Type        string `json:"type" validate:"required,oneof=session_request stop_request"`
	SessionID   string `json:"sessionId" validate:"required_if=Type stop_request,max=128"`
	UserID      string `json:"userId" validate:"required_if=Type session_request"`
	HasLocation bool   `json:"hasLocation"`
	Reason      string `json:"reason"`
}

type WebhookResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"sessionId"`
}

type LocationRequest struct {
	Lat *float64 `json:"lat" validate:"required,latitude"`
	Lng *float64 `json:"lng" validate:"required,longitude"`
}

type EventResponse struct {
	Status    string `json:"status"`
	Delivered *int   `json:"delivered,omitempty"`
}

type CardResponse struct {
	SessionID string    `json:"sessionId"`
	Card      host.Card `json:"card"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

type Error struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
	Status int    `json:"status"`
	Title  string `json:"title"`
}

type ErrorResponse struct {
	Errors []Error `json:"errors"`
}

type TranscriptionRequest struct {
	Text    string `json:"text" validate:"required"`
	IsFinal bool   `json:"isFinal"`
}

type ButtonRequest struct {
	Button string `json:"button" validate:"required"`
	Action string `json:"action" validate:"required"`
}
