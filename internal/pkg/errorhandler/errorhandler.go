package errorhandler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/hamsterhub/hamsterhub-api/internal/pkg/response"
)

// HandleError logs an unexpected error with request context and sends a
// formatted error response.
func HandleError(ctx context.Context, w http.ResponseWriter, status int, code, message string, err error) {
	event := log.Error().
		Str("error_code", code).
		Str("error_message", message).
		Int("status_code", status)

	if err != nil {
		event = event.Err(err)
	}
	if reqID := getRequestID(ctx); reqID != "" {
		event = event.Str("request_id", reqID)
	}

	event.Msg("Request error")

	response.Error(w, status, code, message)
}

type requestIDKey struct{}

// WithRequestID stores the request id for error logging.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func getRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
