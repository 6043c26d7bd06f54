// Package httputil writes the JSON envelope shared by every API response.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/templui/heartroom/internal/apperr"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success     bool        `json:"success"`
	Error       string      `json:"error,omitempty"`
	Kind        apperr.Kind `json:"kind,omitempty"`
	Data        any         `json:"data,omitempty"`
	IsDuplicate bool        `json:"isDuplicate,omitempty"`
}

var kindStatus = map[apperr.Kind]int{
	apperr.KindValidation:      http.StatusBadRequest,
	apperr.KindSelfHeart:       http.StatusBadRequest,
	apperr.KindEquipLimit:      http.StatusBadRequest,
	apperr.KindLocked:          http.StatusBadRequest,
	apperr.KindDuplicateHeart:  http.StatusConflict,
	apperr.KindConflict:        http.StatusConflict,
	apperr.KindNotFound:        http.StatusNotFound,
	apperr.KindUnauthenticated: http.StatusUnauthorized,
	apperr.KindBackend:         http.StatusInternalServerError,
}

// StatusOf maps an error kind to its HTTP status.
func StatusOf(kind apperr.Kind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if body == nil {
		return
	}
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Envelope{Success: true, Data: data})
}

func WriteOK(w http.ResponseWriter) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true})
}

// WriteError renders err with the status of its kind. Backend causes are
// never shown to the client.
func WriteError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := StatusOf(kind)

	message := apperr.UserMessage(err)
	if status >= http.StatusInternalServerError {
		message = "Something went wrong. Please try again."
	}

	WriteJSON(w, status, Envelope{
		Error:       message,
		Kind:        kind,
		IsDuplicate: kind == apperr.KindDuplicateHeart,
	})
}

func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, apperr.Validation(message))
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, apperr.New(apperr.KindUnauthenticated, message))
}

// DecodeJSON reads a JSON body into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	if err != nil {
		return apperr.Validation("invalid request body")
	}
	return nil
}
