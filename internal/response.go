package internal

// State is the top-level outcome discriminator of a response envelope.
type State string

const (
	StateSuccess  State = "success"
	StateError    State = "error"
	StateAccepted State = "accepted"
)

// Envelope is the wire shape of every API response before any
// encryption layer is applied.
type Envelope struct {
	Data    any               `json:"data,omitempty"`
	State   State             `json:"state"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// SuccessEnvelope wraps data in a success envelope.
func SuccessEnvelope(data any) Envelope {
	return Envelope{State: StateSuccess, Data: data}
}

// AcceptedEnvelope signals that work was queued rather than completed.
func AcceptedEnvelope(data any) Envelope {
	return Envelope{State: StateAccepted, Data: data}
}

// ErrorEnvelope wraps an error message in an error envelope.
func ErrorEnvelope(message string, fields map[string]string) Envelope {
	return Envelope{State: StateError, Message: message, Errors: fields}
}
