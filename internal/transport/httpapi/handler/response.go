package handler

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/kislikjeka/walletclient/internal/shared/errors"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Envelope wraps every response body
type Envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// respondJSON sends data in a success envelope
func respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	writeEnvelope(w, statusCode, Envelope{Status: statusSuccess, Data: data})
}

// respondError sends an error envelope
func respondError(w http.ResponseWriter, message string, statusCode int) {
	writeEnvelope(w, statusCode, Envelope{Status: statusError, Message: message})
}

// respondAppError sends an AppError with its mapped HTTP status
func respondAppError(w http.ResponseWriter, err *apperrors.AppError) {
	respondError(w, err.Message, err.HTTPStatus())
}

func writeEnvelope(w http.ResponseWriter, statusCode int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(env)
}

const maxBodyBytes = 1 << 16

// decodeJSON reads a size-limited JSON request body
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}
