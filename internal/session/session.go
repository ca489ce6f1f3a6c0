// Package session describes what the app needs from the host runtime that owns the device
// connection: a display, a location stream, inbound voice and button events and a log sink.
package session

import (
	"github.com/rs/zerolog"
)

type Accuracy string

const (
	AccuracyBalanced Accuracy = "balanced"
	AccuracyHigh     Accuracy = "high"
)

type LocationUpdate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type TranscriptionEvent struct {
	Text    string `json:"text"`
	IsFinal bool   `json:"isFinal"`
}

type ButtonEvent struct {
	Button string `json:"button"`
	Action string `json:"action"`
}

type Session interface {
	ID() string
	UserID() string

	// HasLocation reports whether the user granted the location capability.
	HasLocation() bool
	// SubscribeLocation registers fn for location updates until the returned func is called.
	SubscribeLocation(accuracy Accuracy, fn func(LocationUpdate)) (unsubscribe func())

	ShowReferenceCard(title, body string)
	Logger() zerolog.Logger

	// Event channels are closed by the host when the session ends.
	Transcriptions() <-chan TranscriptionEvent
	ButtonPresses() <-chan ButtonEvent
}
