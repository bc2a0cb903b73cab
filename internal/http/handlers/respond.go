package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/schoolhub/internal/apperr"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

// RespondAppError is the single place service errors become HTTP responses.
// Operational (4xx) messages surface verbatim; internal errors are logged in
// full and masked outside debug mode.
func RespondAppError(ctx *gin.Context, err error) {
	e := apperr.From(err)

	if e.Operational() {
		RespondError(ctx, e.Status, e.Code, e.Message, nil)
		return
	}

	slog.ErrorContext(ctx.Request.Context(), "internal error",
		"message", e.Message,
		"err", e.Err,
		"request_id", requestIDFrom(ctx),
	)

	message := "Something went wrong"
	var details interface{}

	if gin.Mode() != gin.ReleaseMode {
		message = e.Message

		if e.Err != nil {
			details = e.Err.Error()
		}
	}

	RespondError(ctx, e.Status, e.Code, message, details)
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

func RespondUnAuthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}
