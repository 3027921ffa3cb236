package http //nolint:revive // intentional naming for domain clarity

import nethttp "net/http"

// config holds settings shared by Tree and Source.
type config struct {
	client                *nethttp.Client
	headers               nethttp.Header
	useConditionalHeaders bool
}

// Option configures a Tree or Source.
type Option func(*config)

// WithClient sets the HTTP client used for requests.
func WithClient(client *nethttp.Client) Option {
	return func(c *config) {
		c.client = client
	}
}

// WithHeaders sets additional headers on each request.
func WithHeaders(headers nethttp.Header) Option {
	return func(c *config) {
		if headers == nil {
			return
		}
		c.headers = headers.Clone()
	}
}

// WithConditionalHeaders enables conditional range reads using ETag or Last-Modified.
// This is disabled by default because some servers reject conditional range requests.
func WithConditionalHeaders() Option {
	return func(c *config) {
		c.useConditionalHeaders = true
	}
}

func newConfig(opts []Option) config {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	if c.client == nil {
		c.client = nethttp.DefaultClient
	}
	return c
}
