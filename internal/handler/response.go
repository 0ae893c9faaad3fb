package handler

// RESPONSE HELPERS:
// Every JSON body this API sends has a "success" flag plus, on failure,
// either an "errors" list (client's fault) or a "message" (server's fault):
//
//	{"success":true}
//	{"success":false,"errors":[{"field":"email","message":"email is required"}]}
//	{"success":false,"message":"SQL Error occurred."}
//
// The listing is the one exception: on success it is a bare JSON array.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/registration-backend/internal/apperror"
)

// Response is the envelope for register, login, and all failures.
type Response struct {
	Success bool                  `json:"success"`
	Errors  []apperror.FieldError `json:"errors,omitempty"`
	Message string                `json:"message,omitempty"`
}

// writeJSON sends a JSON response with the given status code.
// Headers and status must be written before the body.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// If encoding fails, the headers are already sent; we can only log it.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a service error to a status code and body.
//
//	ErrValidation  → 400 with the field list
//	anything else  → 500 with failureMessage
//
// failureMessage is the endpoint's fixed text ("SQL Error occurred." etc.).
// The error's own text is never sent: it may carry SQL or driver details.
func writeError(w http.ResponseWriter, err error, failureMessage string) {
	if errors.Is(err, apperror.ErrValidation) {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Errors:  apperror.FieldErrors(err),
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, Response{
		Success: false,
		Message: failureMessage,
	})
}
