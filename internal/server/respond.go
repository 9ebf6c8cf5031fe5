package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"reviewdeck-backend/internal/gitlab"
	"reviewdeck-backend/internal/types"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// writeError maps a failure onto the error envelope. Provider-originated
// failures (suppressed classifications, REST and GraphQL errors) come back
// typed PROVIDER; everything else is UNKNOWN.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	errType := types.ErrorTypeUnknown

	var reqErr *gitlab.RequestError
	var gqlErr *gitlab.GraphQLErrors
	switch {
	case gitlab.IsSuppressed(err):
		errType = types.ErrorTypeProvider
		status = http.StatusBadGateway
	case errors.As(err, &reqErr), errors.As(err, &gqlErr):
		errType = types.ErrorTypeProvider
		status = http.StatusBadGateway
	case errors.Is(err, gitlab.ErrIssuesDisabled):
		errType = types.ErrorTypeProvider
		status = http.StatusUnprocessableEntity
	}

	writeJSON(w, status, types.ErrorResponse{Type: errType, Message: err.Error()})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, types.ErrorResponse{
		Type:    types.ErrorTypeUnknown,
		Message: message,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return false
	}
	return true
}
