package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"liftassist-backend/internal/assistant"
	"liftassist-backend/internal/models"
	logx "liftassist-backend/pkg/logger"
)

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

// handleServiceError logs the failure with request context and maps it to a
// response. Remote assistant failures surface the remote message when one is
// available, prefixed with any context the service layer wrapped around the
// failure (for uploads, the offending filename).
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var remoteErr *assistant.RemoteError
	if errors.As(err, &remoteErr) {
		msg := remoteErr.Message()
		if prefix, found := strings.CutSuffix(err.Error(), remoteErr.Error()); found && prefix != "" {
			msg = strings.TrimSuffix(prefix, ": ") + ": " + msg
		}
		logx.Error().
			Int("remote_status", remoteErr.StatusCode).
			Str("path", r.URL.Path).
			Str("request_id", r.Header.Get("X-Request-ID")).
			Msg("remote assistant call failed")
		writeJSON(w, http.StatusInternalServerError, errorResp("UPSTREAM_ERROR", msg, r))
		return
	}

	logx.Error().
		Err(err).
		Str("path", r.URL.Path).
		Str("request_id", r.Header.Get("X-Request-ID")).
		Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", err.Error(), r))
}
