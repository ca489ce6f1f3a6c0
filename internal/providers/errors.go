package providers

import (
	"encoding/json"
	"fmt"
)

// ProviderError is the only error type the client returns. Message is never empty.
type ProviderError struct {
	Message    string
	StatusCode *int
}

func (e *ProviderError) Error() string {
	return e.Message
}

// Status returns the provider HTTP status, or 0 when the call never got a response.
func (e *ProviderError) Status() int {
	if e.StatusCode == nil {
		return 0
	}
	return *e.StatusCode
}

type providerErrorBody struct {
	Message string `json:"message"`
}

func newStatusError(label string, status int, body []byte) *ProviderError {
	var payload providerErrorBody
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		msg = payload.Message
	}
	if msg == "" {
		msg = fmt.Sprintf("%s returned status %d", label, status)
	}

	return &ProviderError{Message: msg, StatusCode: &status}
}

func newTransportError(label string) *ProviderError {
	return &ProviderError{Message: label + " request failed"}
}

func newMalformedError(label string) *ProviderError {
	return &ProviderError{Message: label + " returned malformed response"}
}

func newUnavailableError(label string) *ProviderError {
	return &ProviderError{Message: label + " temporarily unavailable"}
}
