package directory

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ngenohkevin/hivedeck-monitor/internal/process"
)

var (
	ErrProcessNotFound  = errors.New("process not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrMalformedPayload = errors.New("malformed payload")
)

// FetchError is returned when a process list could not be read
type FetchError struct {
	StatusCode int // 0 for transport failures
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch processes: %s (HTTP %d)", e.Message, e.StatusCode)
	}
	return "fetch processes: " + e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ActionError is returned when a control command for a process failed
type ActionError struct {
	PID        int32
	Action     process.Action
	StatusCode int // 0 for transport failures
	Detail     string
	Err        error
}

func (e *ActionError) Error() string {
	msg := fmt.Sprintf("%s process %d failed", e.Action, e.PID)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// statusError maps an HTTP status onto a sentinel error
func statusError(code int) error {
	switch code {
	case http.StatusNotFound:
		return ErrProcessNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	}
	return fmt.Errorf("unexpected status %d", code)
}

// fetchStatusError maps a status for GET /processes, where 404 means the
// route is missing rather than a process
func fetchStatusError(code int) error {
	if code == http.StatusNotFound {
		return fmt.Errorf("unexpected status %d", code)
	}
	return statusError(code)
}
