package assistant

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// DefaultConnectTimeout bounds how long the server may take to begin a
	// response before the request is abandoned.
	DefaultConnectTimeout = 10 * time.Second
	// DefaultStallTimeout bounds how long an open stream may go without
	// delivering any bytes. It restarts after every received chunk, which
	// distinguishes a slow-but-alive server from a silently dead connection.
	DefaultStallTimeout = 60 * time.Second
)

// Client talks to the assistant endpoint. It owns request construction,
// credential injection and the two transport timers; it holds no conversation
// state.
type Client struct {
	endpoint string
	tokens   TokenSource

	httpClient     *http.Client
	connectTimeout time.Duration
	stallTimeout   time.Duration
}

type ClientOption func(*Client)

// WithHTTPClient replaces the default instrumented HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

func WithConnectTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.connectTimeout = timeout }
}

func WithStallTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.stallTimeout = timeout }
}

// NewClient creates a client for the given endpoint. The endpoint is the full
// URL of the conversation resource; both the streaming and the non-streaming
// path post to it.
func NewClient(endpoint string, tokens TokenSource, opts ...ClientOption) *Client {
	client := &Client{
		endpoint: endpoint,
		tokens:   tokens,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(operationName string, request *http.Request) string {
				return operationName + " " + request.URL.Path
			}),
		)},
		connectTimeout: DefaultConnectTimeout,
		stallTimeout:   DefaultStallTimeout,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}
