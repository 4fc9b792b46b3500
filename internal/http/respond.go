package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fifilen/foodapp/internal/apiclient"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
	OrderID int64  `json:"order_id,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Error("failed to encode response", zap.Int("status", status), zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleUpstreamError converts an upstream API failure into an HTTP status.
func handleUpstreamError(w http.ResponseWriter, err error) {
	var httpStatus int
	var code string

	var se *apiclient.StatusError
	switch {
	case errors.Is(err, apiclient.ErrCircuitOpen):
		httpStatus = http.StatusServiceUnavailable
		code = "service_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		httpStatus = http.StatusGatewayTimeout
		code = "timeout"
	case errors.As(err, &se):
		switch se.Status {
		case http.StatusUnauthorized:
			httpStatus = http.StatusUnauthorized
			code = "unauthenticated"
		case http.StatusForbidden:
			httpStatus = http.StatusForbidden
			code = "permission_denied"
		case http.StatusNotFound:
			httpStatus = http.StatusNotFound
			code = "not_found"
		default:
			httpStatus = http.StatusBadGateway
			code = "upstream_error"
		}
		respondError(w, httpStatus, code, se.Message)
		return
	default:
		httpStatus = http.StatusBadGateway
		code = "upstream_error"
	}

	respondError(w, httpStatus, code, err.Error())
}
