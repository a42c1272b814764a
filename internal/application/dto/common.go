package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// MessageResponse confirmación simple (delete, logout).
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse salida de /health.
type HealthResponse struct {
	Status string `json:"status"`
}
