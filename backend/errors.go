package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/go-library-web/internal/errors"
)

// RequestError describes a failed backend call. StatusCode is 0 when the request never
// produced an HTTP response.
type RequestError struct {
	Message    string
	StatusCode int
	Body       any // Parsed JSON when possible, otherwise the raw text
}

// Error implements error
func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// StatusCodeOf returns the HTTP status carried by a *RequestError in err's chain, or 0
func StatusCodeOf(err error) int {
	if reqErr, ok := asRequestError(err); ok {
		return reqErr.StatusCode
	}
	return 0
}

// MessageOf returns the user facing message of err
func MessageOf(err error) string {
	if reqErr, ok := asRequestError(err); ok {
		return reqErr.Message
	}
	return err.Error()
}

func newRequestError(status int, raw []byte) *RequestError {
	text := string(raw)
	var body any = text

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err == nil {
		body = parsed
	}

	message := http.StatusText(status)
	if obj, ok := body.(map[string]any); ok {
		if m, ok := obj["message"].(string); ok && strings.TrimSpace(m) != "" {
			message = m
		}
	}
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}

	return &RequestError{Message: message, StatusCode: status, Body: body}
}

func transportError(err error) *RequestError {
	return &RequestError{Message: err.Error(), StatusCode: 0, Body: nil}
}

func asRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if err == nil || !apperrors.As(err, &reqErr) {
		return nil, false
	}
	return reqErr, true
}
