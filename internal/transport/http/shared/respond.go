// Package shared centralizes JSON response shaping so every handler emits
// the same envelopes.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "enroll/pkg/domain-errors"
)

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the JSON error envelope.
// Non-domain errors and internal codes collapse to an opaque INTERNAL_ERROR
// so storage and infrastructure detail never reaches the client.
func WriteError(w http.ResponseWriter, err error) {
	var de *dErrors.DomainError
	if !errors.As(err, &de) || de.Code == dErrors.CodeInternal {
		WriteJSON(w, http.StatusInternalServerError, errorEnvelope{Error: errorBody{
			Code:    string(dErrors.CodeInternal),
			Message: "An unexpected error occurred",
		}})
		return
	}

	body := errorBody{Code: string(de.Code), Fields: de.Fields}
	if len(de.Fields) == 0 {
		body.Message = de.Message
	}
	WriteJSON(w, dErrors.ToHTTPStatus(de.Code), errorEnvelope{Error: body})
}
