package matchapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/osmatch/internal/config"
)

// Sentinel kinds for client errors.
var (
	// ErrMissingAPIKey is returned before any network activity when no
	// credential was supplied. It is the same value as config.ErrMissingAPIKey.
	ErrMissingAPIKey = config.ErrMissingAPIKey

	ErrInvalidEndpoint = errors.New("invalid endpoint")
	ErrInvalidQuery    = errors.New("invalid query")
	ErrTransport       = errors.New("match request failed")
)

const maxErrorBodyInMessage = 512

// TransportError is returned when the service answers with a non-2xx status.
type TransportError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *TransportError) Error() string {
	body := e.Body
	suffix := ""
	if len(body) > maxErrorBodyInMessage {
		body = body[:maxErrorBodyInMessage]
		suffix = "..."
	}
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s: HTTP %s: %s%s", ErrTransport, status, body, suffix)
}

// Is reports ErrTransport so callers can match with errors.Is.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// statusKind buckets a failing HTTP status for metrics labels.
func statusKind(statusCode int) string {
	switch {
	case statusCode >= http.StatusInternalServerError:
		return "server_error"
	case statusCode == http.StatusTooManyRequests:
		return "rate_limit"
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return "unauthorized"
	case statusCode == http.StatusNotFound:
		return "not_found"
	case statusCode >= http.StatusBadRequest:
		return "client_error"
	default:
		return "unexpected_status"
	}
}
