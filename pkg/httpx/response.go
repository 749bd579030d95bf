package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform response body produced by every handler. The HTTP
// status code is duplicated into the body for clients that only read JSON.
type Envelope struct {
	Status  int    `json:"status"`
	Data    any    `json:"data"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteEnvelope writes a success envelope with the given payload and message.
func WriteEnvelope(w http.ResponseWriter, code int, data any, message string) {
	WriteJSON(w, code, Envelope{
		Status:  code,
		Data:    data,
		Message: message,
		Success: code < http.StatusBadRequest,
	})
}

// WriteError writes a failure envelope. No internal detail beyond message
// ever leaves the process through this path.
func WriteError(w http.ResponseWriter, code int, message string) {
	WriteJSON(w, code, Envelope{
		Status:  code,
		Data:    nil,
		Message: message,
		Success: false,
	})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
