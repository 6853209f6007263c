package http_client

import (
	"fmt"
	"time"
)

type ErrorKind string

const (
	// KindSetup is a failure before dispatch, e.g. an unencodable payload or a failing request stage.
	KindSetup     ErrorKind = "setup"
	KindTransport ErrorKind = "transport"
	KindTimeout   ErrorKind = "timeout"
	KindStatus    ErrorKind = "status"
	// KindResponse is a response stage rejecting a 2xx answer.
	KindResponse ErrorKind = "response"
	// KindCode is the opt-in application code check rejecting a body.
	KindCode ErrorKind = "code"
)

type RequestError struct {
	Kind       ErrorKind
	Method     string
	Path       string
	StatusCode int
	Timeout    time.Duration
	// Body holds the response body for status and code errors.
	Body    Body
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Kind == KindTimeout:
		return fmt.Sprintf("timeout of %dms exceeded", e.Timeout.Milliseconds())
	case e.Kind == KindStatus:
		return fmt.Sprintf("Request failed with status code %d", e.StatusCode)
	case e.Err != nil:
		return e.Err.Error()
	default:
		return ""
	}
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
