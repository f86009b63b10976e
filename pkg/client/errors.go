package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrDaemonNotRunning is returned when the daemon is not running
	ErrDaemonNotRunning = errors.New("daemon not running")

	// ErrPermissionDenied is returned when the user does not have permission to perform the requested action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when 404 is returned from the daemon
	ErrNotFound = errors.New("404 not found")
)

// StatusError is returned when the daemon answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	body := strings.Trim(strings.TrimSpace(e.Body), `"`)
	if body == "" {
		return fmt.Sprintf("got %d", e.Code)
	}
	return fmt.Sprintf("got %d: %s", e.Code, body)
}

// DeviceTimeout reports whether the daemon timed out talking to the OptiCal.
func (e *StatusError) DeviceTimeout() bool {
	return e.Code == http.StatusGatewayTimeout
}
