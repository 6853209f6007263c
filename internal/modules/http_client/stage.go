package http_client

import (
	"net/http"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

// RequestStage transforms a request before it is sent.
type RequestStage func(req *http.Request) (*http.Request, error)

// ResponseStage transforms or rejects a 2xx response body before it reaches the caller.
type ResponseStage func(resp *http.Response, body Body) (Body, error)

func DefaultRequestStages() []RequestStage {
	return []RequestStage{PassThrough, RequestID}
}

// PassThrough leaves the request untouched. It is the hook for per-request headers such as auth.
func PassThrough(req *http.Request) (*http.Request, error) {
	return req, nil
}

// RequestID tags the request so client and backend log lines can be joined.
func RequestID(req *http.Request) (*http.Request, error) {
	if req.Header.Get(HeaderRequestID) == "" {
		req.Header.Set(HeaderRequestID, uuid.New().String())
	}
	return req, nil
}

type codeEnvelope struct {
	Code    *int   `json:"code"`
	Message string `json:"message"`
}

// CodeCheck rejects bodies of the form {"code": n, "message": ...} with n != 0.
// Bodies without a numeric code field, or that are not JSON objects, pass through.
// Not installed by default; the body is treated as opaque success data unless a
// caller opts in.
func CodeCheck(defaultMessage string) ResponseStage {
	if defaultMessage == "" {
		defaultMessage = DefaultErrorMessage
	}
	return func(resp *http.Response, body Body) (Body, error) {
		var env codeEnvelope
		if err := jsoniter.Unmarshal(body, &env); err != nil || env.Code == nil {
			return body, nil
		}
		if *env.Code == 0 {
			return body, nil
		}
		message := env.Message
		if message == "" {
			message = defaultMessage
		}
		return nil, &RequestError{Kind: KindCode, Message: message, Body: body}
	}
}
