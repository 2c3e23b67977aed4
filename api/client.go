package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/weighin/weighin-go/internal/config"
	"github.com/weighin/weighin-go/session"
)

// Client issues authenticated HTTP requests to the Weigh-In backend.
// Whenever a session is active its access token is attached as a bearer
// Authorization header; otherwise the header is omitted entirely and the
// backend decides whether the call is allowed.
//
// The client never retries and applies no timeout of its own: a hung
// request blocks only its caller, who can bound it with the context.
type Client struct {
	baseURL string
	http    *http.Client
	store   *session.Store
	log     zerolog.Logger
	nowTime func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithBaseURL overrides the configured API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTelemetry wraps the transport so every request is traced via
// OpenTelemetry.
func WithTelemetry() Option {
	return func(c *Client) {
		base := c.http.Transport
		c.http.Transport = otelhttp.NewTransport(base)
	}
}

// WithNowTime sets the clock used to default dates (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(c *Client) {
		c.nowTime = nowFunc
	}
}

// WithClientLogger sets the logger for request failures.
func WithClientLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a Client bound to the given session store. The base URL
// comes from config and can be overridden with WithBaseURL.
func New(cfg config.Config, store *session.Store, options ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("[api.New] config is required")
	}
	if store == nil {
		return nil, errors.New("[api.New] session store is required")
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.GetAPIBaseURL(), "/"),
		http:    &http.Client{},
		store:   store,
		log:     zerolog.Nop(),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.baseURL == "" {
		return nil, errors.New("[api.New] API base URL is required")
	}
	return c, nil
}

// Session returns the session store the client authenticates from.
func (c *Client) Session() *session.Store {
	return c.store
}

// newRequest builds a request against the API base URL, attaching the
// bearer token when a session exists and a fresh request id always.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrapf(err, "[Client.newRequest] %s %s", method, path)
	}
	if sess := c.store.Current(); sess.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+sess.AccessToken)
	}
	req.Header.Set("X-Request-Id", uuid.New().String())
	return req, nil
}

// do issues a JSON request. path may already carry a query string. body
// is JSON-encoded when non-nil, the response decoded into out when
// non-nil. parseDetail controls whether a non-2xx body is inspected for
// the backend's detail field.
func (c *Client) do(ctx context.Context, method, path string, body, out any, parseDetail bool) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "[Client.do] encode %s %s body", method, path)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return &Error{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp, parseDetail)
	}
	if out == nil {
		return nil
	}
	return decodeJSON(resp.Body, out)
}

func decodeJSON(r io.Reader, out any) error {
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return &Error{Kind: KindDecode, Err: errors.Wrap(err, "[decodeJSON] decode response body")}
	}
	return nil
}

// responseError turns a non-2xx response into an *Error. The backend's
// convention is a JSON body with a human-readable detail field; anything
// else falls back to a generic message.
func responseError(resp *http.Response, parseDetail bool) *Error {
	apiErr := &Error{Kind: KindAPI, StatusCode: resp.StatusCode}
	if !parseDetail {
		return apiErr
	}
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Detail = body.Detail
	}
	return apiErr
}
