package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/readkeeper/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// statusFor maps service errors to gateway statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrAuthRequired), errors.Is(err, common.ErrAuthExpired), errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrNetworkUnavailable), errors.Is(err, common.ErrNotFoundOffline):
		return http.StatusServiceUnavailable
	case errors.Is(err, common.ErrStorageFailure):
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}
