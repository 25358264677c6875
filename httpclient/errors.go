package httpclient

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/kbukum/audioscribe/errors"
)

const maxBodyDetail = 512

// ClassifyStatusCode converts a non-2xx status into an AppError.
// Returns nil for 2xx status codes.
func ClassifyStatusCode(service string, statusCode int, body []byte) *errors.AppError {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	appErr := errors.ExternalServiceError(service, fmt.Errorf("HTTP %d", statusCode)).
		WithDetail("status", statusCode)
	if msg := strings.TrimSpace(string(body)); msg != "" {
		if len(msg) > maxBodyDetail {
			msg = msg[:maxBodyDetail]
		}
		appErr.WithDetail("body", msg)
	}

	switch {
	case statusCode == 429, statusCode >= 500:
		appErr.Retryable = true
	default:
		appErr.Retryable = false
	}
	return appErr
}

// classifyTransportError maps a failed round trip. A canceled context is
// returned as is.
func classifyTransportError(ctx context.Context, service string, err error) error {
	switch {
	case stderrors.Is(ctx.Err(), context.Canceled):
		return ctx.Err()
	case stderrors.Is(err, context.DeadlineExceeded), ctx.Err() != nil:
		return errors.Timeout(service).WithCause(err)
	default:
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return appErr
		}
		return errors.ServiceUnavailable(service).WithCause(err)
	}
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return 0
	}
	if s, ok := appErr.Details["status"].(int); ok {
		return s
	}
	return 0
}
