package providers

import (
	"errors"
	"fmt"
	"net/http"
)

// Stage names the call that failed.
type Stage string

const (
	StageAnalysis  Stage = "analysis"
	StageSynthesis Stage = "synthesis"
)

// maxBodyInError bounds how much of a response body is kept in errors.
const maxBodyInError = 2048

// ServiceError is returned when the endpoint answers with a non-2xx status.
type ServiceError struct {
	Stage      Stage
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s API error %d: %s", e.Stage, e.StatusCode, e.Body)
}

// TransportError wraps network faults: DNS, connection, timeout, body read.
type TransportError struct {
	Stage Stage
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Stage, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedResponseError is returned when a 2xx body does not match the
// expected completion shape.
type MalformedResponseError struct {
	Stage  Stage
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s response malformed: %s", e.Stage, e.Reason)
}

// IsAuthError reports whether err is a 401 or 403 service error.
func IsAuthError(err error) bool {
	var se *ServiceError
	if !errors.As(err, &se) {
		return false
	}
	return se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden
}

// StageOf returns the stage carried by a provider error, or "" when err is
// not one.
func StageOf(err error) Stage {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Stage
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.Stage
	}
	var me *MalformedResponseError
	if errors.As(err, &me) {
		return me.Stage
	}
	return ""
}

func truncateBody(b []byte) string {
	if len(b) <= maxBodyInError {
		return string(b)
	}
	return string(b[:maxBodyInError]) + "...(truncated)"
}
