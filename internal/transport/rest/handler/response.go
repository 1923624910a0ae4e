package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"hrforms/internal/editor"
	"hrforms/internal/model"
	"hrforms/internal/service"
)

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError maps err to its HTTP status.
func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	var syncErr *editor.SyncError
	switch {
	case model.IsInvariantViolation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrQuestionNotFound),
		errors.Is(err, model.ErrOptionNotFound),
		errors.Is(err, service.ErrFormNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrFeedbackNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrCollabForm),
		errors.Is(err, editor.ErrFormNotPublished):
		return http.StatusConflict
	case errors.As(err, &syncErr):
		return http.StatusBadGateway
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrInvalidQuestionType),
		errors.Is(err, service.ErrInvalidTenant):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
