package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// Options customise a single backend call
type Options struct {
	Method    string      // Defaults to GET
	Body      []byte      // Pre-serialised request body, see JSONBody
	Headers   http.Header // Caller supplied headers win over the defaults
	Multipart bool        // Body is a pre-built multipart form; Headers must carry its Content-Type
}

// Client dispatches requests to the library REST backend.
// A Client is immutable: WithToken returns a copy bound to a session's token.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      *oauth2.Token
}

// ClientOption modifies a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the default transport
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a backend client rooted at baseURL
func NewClient(baseURL string, options ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// WithToken returns a client that sends the token as a bearer credential.
// A nil or empty token yields an anonymous client.
func (c *Client) WithToken(token *oauth2.Token) *Client {
	bound := *c
	bound.token = nil
	if token != nil && token.AccessToken != "" {
		bound.token = token
	}
	return &bound
}

// JSONBody serialises v for use as Options.Body
func JSONBody(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Do performs one request and returns the decoded response or a *RequestError.
// There are no retries and no timeout beyond the transport's own.
func (c *Client) Do(ctx context.Context, path string, opts Options) (Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return Response{}, transportError(err)
	}
	for name, values := range opts.Headers {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if opts.Body != nil && !opts.Multipart && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil && req.Header.Get("Authorization") == "" {
		c.token.SetAuthHeader(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Response{}, newRequestError(resp.StatusCode, raw)
	}
	return newResponse(resp.Header.Get("Content-Type"), raw)
}

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}
