package types

// SuccessEnvelope is the canonical success body. Message is omitted for plain reads.
type SuccessEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorEnvelope is the single error body shape used by every endpoint.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// ListPayload wraps paginated collections.
type ListPayload struct {
	Items  any    `json:"items"`
	Cursor string `json:"cursor,omitempty"`
}
