package census

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrNoData is returned when the API answers 204 or a header-only table.
var ErrNoData = errors.New("census api returned no data")

// APIError represents a non-2xx response from the data API. The Census API replies
// with plain-text bodies such as "error: unknown variable 'B99999_001E'".
type APIError struct {
	StatusCode int
	Message    string
	// Endpoint is the request URL with the api key redacted.
	Endpoint string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error: status=%d message=%s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error: status=%d", e.StatusCode)
}

// AuthError indicates a rejected or invalid api key.
type AuthError struct{ *APIError }

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.APIError.Error())
}

// RateLimitError indicates 429 responses and may include a Retry-After.
type RateLimitError struct {
	*APIError
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: wait about %ds before refreshing: %s", int(e.RetryAfter.Seconds()), e.APIError.Error())
	}
	return fmt.Sprintf("rate limited: %s", e.APIError.Error())
}

// NotFoundError indicates an unknown dataset or year.
type NotFoundError struct{ *APIError }

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("dataset not found: %s", e.APIError.Error())
}

// BadRequestError indicates a malformed query, typically an unknown variable code.
type BadRequestError struct{ *APIError }

func (e *BadRequestError) Error() string { return fmt.Sprintf("bad request: %s", e.APIError.Error()) }

// ServerError indicates 5xx errors from the API.
type ServerError struct{ *APIError }

func (e *ServerError) Error() string { return fmt.Sprintf("census api error: %s", e.APIError.Error()) }

// UnreachableError indicates the API host could not be contacted.
type UnreachableError struct {
	Host string
	Err  error
}

func (e *UnreachableError) Error() string {
	if e == nil {
		return "unreachable"
	}
	if e.Host != "" {
		return fmt.Sprintf("census api unreachable at %s: %v", e.Host, e.Err)
	}
	return fmt.Sprintf("census api unreachable: %v", e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// MalformedResponseError indicates a 2xx body that is not the expected table.
type MalformedResponseError struct {
	Reason  string
	Snippet string
}

func (e *MalformedResponseError) Error() string {
	if e.Snippet != "" {
		return fmt.Sprintf("malformed response: %s (body starts %q)", e.Reason, e.Snippet)
	}
	return fmt.Sprintf("malformed response: %s", e.Reason)
}

// classifyAPIError maps generic APIError to typed errors for better UX.
func classifyAPIError(apiErr *APIError, resp *http.Response) error {
	sc := apiErr.StatusCode
	switch {
	case sc == http.StatusUnauthorized || sc == http.StatusForbidden:
		return &AuthError{APIError: apiErr}
	case sc == http.StatusTooManyRequests:
		var ra time.Duration
		if v := resp.Header.Get("Retry-After"); v != "" {
			if secs, err := parseRetryAfterSeconds(v); err == nil && secs > 0 {
				ra = time.Duration(secs) * time.Second
			}
		}
		return &RateLimitError{APIError: apiErr, RetryAfter: ra}
	case sc == http.StatusNotFound:
		return &NotFoundError{APIError: apiErr}
	case sc == http.StatusBadRequest:
		if strings.Contains(strings.ToLower(apiErr.Message), "invalid key") {
			return &AuthError{APIError: apiErr}
		}
		return &BadRequestError{APIError: apiErr}
	case sc >= 500 && sc <= 599:
		return &ServerError{APIError: apiErr}
	}
	return apiErr
}
