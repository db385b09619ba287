package errors

import (
	"context"
	"log/slog"
)

// Log writes a structured error to slog at a level matching its severity.
// Login failures are expected operational events and log at Warn; everything
// else logs at Error.
func Log(ctx context.Context, err *Error) {
	if err == nil {
		return
	}

	attrs := []any{
		"error_type", err.Type,
		"message", err.Message,
	}
	if err.StatusCode != 0 {
		attrs = append(attrs, "upstream_status", err.StatusCode)
	}
	for k, v := range err.Context {
		attrs = append(attrs, k, v)
	}
	if err.Cause != nil {
		attrs = append(attrs, "cause", err.Cause)
	}

	if err.LoginFailure() {
		slog.WarnContext(ctx, "Login failed", attrs...)
		return
	}
	slog.ErrorContext(ctx, "Request failed", attrs...)
}
