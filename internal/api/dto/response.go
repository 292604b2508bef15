package dto

// Envelope is the uniform response body: a human-readable message plus the
// payload. The HTTP status is chosen by the handler based on outcome.
type Envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// NewEnvelope wraps a payload.
func NewEnvelope(message string, data any) Envelope {
	return Envelope{Message: message, Data: data}
}
