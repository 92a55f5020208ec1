package types

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// MessageResponse is the body for operations that only acknowledge success.
type MessageResponse struct {
	Message string `json:"message"`
}

// FieldError names a single rejected input attribute.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
