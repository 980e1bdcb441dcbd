package http

import (
	"encoding/json"
	"net/http"

	apperr "github.com/fixora/fieldreports/pkg/error"
)

// Envelope wraps every JSON response
type Envelope struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data"`
}

func writeJSON(w http.ResponseWriter, statusCode int, envelope Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(envelope)
}

func success(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	writeJSON(w, statusCode, Envelope{Status: true, Message: message, Data: data})
}

func failure(w http.ResponseWriter, appErr *apperr.AppError) {
	writeJSON(w, appErr.Status, Envelope{Status: false, Message: appErr.Message, Code: appErr.Code})
}

// writeError maps err onto its HTTP status and writes the error envelope
func writeError(w http.ResponseWriter, err error) {
	failure(w, apperr.MapError(err))
}

func badRequest(w http.ResponseWriter, message string) {
	failure(w, apperr.NewBadRequest(message))
}

func unauthorized(w http.ResponseWriter, message string) {
	failure(w, apperr.NewUnauthorized(message))
}
