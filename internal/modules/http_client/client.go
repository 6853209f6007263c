package http_client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/reusedev/autowriter-client/internal/modules/logs"
	"github.com/reusedev/autowriter-client/internal/modules/notify"
	"github.com/reusedev/autowriter-client/tools"
)

const (
	DefaultTimeout        = 30 * time.Second
	DefaultErrorMessage   = "请求失败"
	HeaderContentType     = "Content-Type"
	HeaderRequestID       = "X-Request-Id"
	ContentTypeJSON       = "application/json"
	ContentTypeMultipart  = "multipart/form-data"
	defaultNotifyDuration = notify.DefaultDuration
)

// Doer is the transport seam. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Encoder is a payload that produces its own body and content type, e.g. multipart form data.
type Encoder interface {
	Encode() (body io.Reader, contentType string, err error)
}

// Descriptor describes one request. It is built per call and never shared.
type Descriptor struct {
	Method  string
	Path    string
	Payload any
	Header  http.Header
}

// Body is the raw response body, returned to callers unmodified.
type Body []byte

func (b Body) Decode(v any) error {
	return jsoniter.Unmarshal(b, v)
}

func (b Body) String() string {
	return string(b)
}

type Options struct {
	BaseURL        string
	Timeout        time.Duration
	Doer           Doer
	Notifier       notify.Notifier
	NotifyDuration time.Duration
	DefaultMessage string
	// RequestStages run in order before dispatch. Nil means DefaultRequestStages.
	RequestStages []RequestStage
	// ResponseStages run in order on a 2xx response. Nil means the body is returned as is.
	ResponseStages []ResponseStage
}

// Gateway is the shared client every API call goes through. It holds only
// configuration fixed at construction, so one value can serve concurrent calls.
type Gateway struct {
	baseURL        string
	timeout        time.Duration
	doer           Doer
	notifier       notify.Notifier
	notifyDuration time.Duration
	defaultMessage string
	requestStages  []RequestStage
	responseStages []ResponseStage
}

func New(opts Options) *Gateway {
	g := &Gateway{
		baseURL:        opts.BaseURL,
		timeout:        opts.Timeout,
		doer:           opts.Doer,
		notifier:       opts.Notifier,
		notifyDuration: opts.NotifyDuration,
		defaultMessage: opts.DefaultMessage,
		requestStages:  opts.RequestStages,
		responseStages: opts.ResponseStages,
	}
	if g.timeout <= 0 {
		g.timeout = DefaultTimeout
	}
	if g.doer == nil {
		g.doer = http.DefaultClient
	}
	if g.notifier == nil {
		g.notifier = notify.LogNotifier{}
	}
	if g.notifyDuration <= 0 {
		g.notifyDuration = defaultNotifyDuration
	}
	if g.defaultMessage == "" {
		g.defaultMessage = DefaultErrorMessage
	}
	if g.requestStages == nil {
		g.requestStages = DefaultRequestStages()
	}
	return g
}

func (g *Gateway) BaseURL() string {
	return g.baseURL
}

func (g *Gateway) Timeout() time.Duration {
	return g.timeout
}

var errTimeout = errors.New("gateway timeout")

// Send dispatches d and returns the response body verbatim on a 2xx answer.
// Any failure after dispatch is logged, reported once to the notifier and returned.
// Failures while building the request are logged and returned without a notification.
func (g *Gateway) Send(ctx context.Context, d Descriptor) (Body, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if d.Method == "" {
		d.Method = http.MethodGet
	}
	ctx, cancel := context.WithTimeoutCause(ctx, g.timeout, errTimeout)
	defer cancel()

	req, err := g.buildRequest(ctx, d)
	if err != nil {
		return nil, g.setupFailed(d, err)
	}

	reqAt := time.Now()
	resp, err := g.doer.Do(req)
	if err != nil {
		return nil, g.failed(g.transportError(ctx, d, err))
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	respAt := time.Now()
	logs.Logger.Info().
		Str("request_id", req.Header.Get(HeaderRequestID)).
		Str("path", d.Path).
		Str("method", req.Method).
		Int("status_code", resp.StatusCode).
		Dur("req_consume_ms", respAt.Sub(reqAt)).
		Msg("gateway request")
	if err != nil {
		return nil, g.failed(g.transportError(ctx, d, err))
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, g.failed(&RequestError{
			Kind:       KindStatus,
			Method:     req.Method,
			Path:       d.Path,
			StatusCode: resp.StatusCode,
			Body:       body,
		})
	}

	ret := Body(body)
	for _, stage := range g.responseStages {
		ret, err = stage(resp, ret)
		if err != nil {
			var reqErr *RequestError
			if !errors.As(err, &reqErr) {
				reqErr = &RequestError{Kind: KindResponse, Err: err}
			}
			reqErr.Method, reqErr.Path, reqErr.StatusCode = req.Method, d.Path, resp.StatusCode
			return nil, g.failed(reqErr)
		}
	}
	return ret, nil
}

func (g *Gateway) buildRequest(ctx context.Context, d Descriptor) (*http.Request, error) {
	options := []RequestOption{WithContext(ctx), WithBody(d.Payload)}
	for key, values := range d.Header {
		for _, v := range values {
			options = append(options, AddHeader(key, v))
		}
	}
	req, err := NewRequest(d.Method, tools.FullURL(g.baseURL, d.Path), options...)
	if err != nil {
		return nil, err
	}
	for _, stage := range g.requestStages {
		req, err = stage(req)
		if err != nil {
			return nil, err
		}
	}
	return req, nil
}

func (g *Gateway) transportError(ctx context.Context, d Descriptor, err error) *RequestError {
	if errors.Is(context.Cause(ctx), errTimeout) {
		return &RequestError{Kind: KindTimeout, Method: d.Method, Path: d.Path, Timeout: g.timeout, Err: err}
	}
	return &RequestError{Kind: KindTransport, Method: d.Method, Path: d.Path, Err: err}
}

func (g *Gateway) setupFailed(d Descriptor, err error) error {
	reqErr := &RequestError{Kind: KindSetup, Method: d.Method, Path: d.Path, Err: err}
	logs.Logger.Error().Err(reqErr).
		Str("path", d.Path).
		Str("method", d.Method).
		Msg("request setup error")
	return reqErr
}

func (g *Gateway) failed(err *RequestError) error {
	logs.Logger.Error().Err(err).
		Str("kind", string(err.Kind)).
		Str("path", err.Path).
		Str("method", err.Method).
		Int("status_code", err.StatusCode).
		Msg("request error")
	message := err.Error()
	if message == "" {
		message = g.defaultMessage
	}
	g.notifier.Notify(notify.Error(message, g.notifyDuration))
	return err
}

type RequestOption func(options *RequestOptions)

type RequestOptions struct {
	ctx    context.Context
	body   any
	header http.Header
}

func WithBody(body any) RequestOption {
	return func(c *RequestOptions) {
		c.body = body
	}
}

func WithHeader(key, value string) RequestOption {
	return func(c *RequestOptions) {
		c.header.Set(key, value)
	}
}

func AddHeader(key, value string) RequestOption {
	return func(c *RequestOptions) {
		c.header.Add(key, value)
	}
}

func WithContext(ctx context.Context) RequestOption {
	return func(c *RequestOptions) {
		c.ctx = ctx
	}
}

// NewRequest encodes the body option: io.Reader passes through, Encoder supplies
// its own content type, anything else is sent as JSON.
func NewRequest(method string, url string, option ...RequestOption) (*http.Request, error) {
	options := &RequestOptions{ctx: context.Background(), header: http.Header{}}
	for _, opt := range option {
		opt(options)
	}
	var body io.Reader
	var contentType string
	if options.body != nil {
		switch v := options.body.(type) {
		case Encoder:
			r, ct, err := v.Encode()
			if err != nil {
				return nil, err
			}
			body, contentType = r, ct
		case io.Reader:
			body = v
		default:
			data, err := jsoniter.Marshal(v)
			if err != nil {
				return nil, err
			}
			body, contentType = bytes.NewReader(data), ContentTypeJSON
		}
	}
	req, err := http.NewRequestWithContext(options.ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header = options.header
	if contentType != "" {
		req.Header.Set(HeaderContentType, mergeContentType(req.Header.Get(HeaderContentType), contentType))
	}
	return req, nil
}

// mergeContentType keeps an explicit header unless the encoded body has the same
// media type with parameters (the multipart boundary) the header lacks.
func mergeContentType(explicit, encoded string) string {
	if explicit == "" {
		return encoded
	}
	explicitType, explicitParams, err := mime.ParseMediaType(explicit)
	if err != nil {
		return explicit
	}
	encodedType, _, err := mime.ParseMediaType(encoded)
	if err != nil {
		return explicit
	}
	if explicitType == encodedType && len(explicitParams) == 0 {
		return encoded
	}
	return explicit
}
