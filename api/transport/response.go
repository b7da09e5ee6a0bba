package transport

import (
	"encoding/json"

	"github.com/taskforge/backend/domain"
)

// Envelope is the uniform response wrapper every endpoint returns. Success
// payloads carry data; failures carry a message plus optional per-field
// errors.
type Envelope struct {
	StatusCode int                     `json:"statusCode"`
	Data       interface{}             `json:"data,omitempty"`
	Message    string                  `json:"message"`
	Errors     []domain.FieldViolation `json:"errors,omitempty"`
	Success    bool                    `json:"success"`
}

// NewSuccess returns a success envelope.
func NewSuccess(statusCode int, data interface{}, message string) Envelope {
	return Envelope{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
		Success:    true,
	}
}

// NewFailure returns a failure envelope with optional field errors.
func NewFailure(statusCode int, message string, errs []domain.FieldViolation) Envelope {
	return Envelope{
		StatusCode: statusCode,
		Message:    message,
		Errors:     errs,
		Success:    false,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// AuthPayload is the login/refresh response body. Tokens are also delivered
// as HTTP-only cookies; the body copy feeds bearer-header clients.
type AuthPayload struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}
