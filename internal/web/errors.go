package web

// errors.go turns service errors into HTTP responses.
//
// The technical error is logged with the request ID for correlation, and
// the client receives the user-facing message from core.MapError with a
// status code chosen by statusFor.

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/resale/internal/core"
	"github.com/JonMunkholm/resale/internal/logging"
)

// errRequestTooLarge is returned when a body exceeds its size cap.
var errRequestTooLarge = errors.New("request too large")

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	var ve *core.ValidationError
	switch {
	case errors.Is(err, errRequestTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrOutOfStock), errors.Is(err, core.ErrConflict):
		return http.StatusConflict
	case errors.As(err, &ve),
		errors.Is(err, core.ErrNoImagesProvided),
		errors.Is(err, core.ErrNoImagesProcessed):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrBatchLimiterBusy), errors.Is(err, core.ErrImagesUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the matching JSON error response.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	// Validation and lookup errors name the field or key, which is more
	// useful to the client than the generic message.
	detail := userMsg.Message
	if status < http.StatusInternalServerError && core.IsUserFacing(err) {
		detail = err.Error()
	}

	writeJSON(w, status, ErrorResponse{
		Error:   detail,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}
