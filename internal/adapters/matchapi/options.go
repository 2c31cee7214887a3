package matchapi

import (
	"net/http"
	"time"

	"github.com/okian/osmatch/pkg/logger"
	"github.com/okian/osmatch/pkg/metrics"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL sets the scheme and host of the service.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithDataset selects the dataset path segment of the match endpoint.
func WithDataset(dataset string) Option {
	return func(c *Client) {
		if dataset != "" {
			c.dataset = dataset
		}
	}
}

// WithTimeout bounds each request. Ignored when WithHTTPClient is used.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records request metrics on m instead of the process-wide manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// MatchOption tunes a single Match call.
type MatchOption func(*matchParams)

type matchParams struct {
	algorithm string
	limit     int
	threshold *float64
}

// WithAlgorithm selects the scoring algorithm, e.g. "regression-v1".
// The value is passed through; the service decides whether it is valid.
func WithAlgorithm(algorithm string) MatchOption {
	return func(p *matchParams) {
		p.algorithm = algorithm
	}
}

// WithLimit caps the number of candidates returned per query.
func WithLimit(limit int) MatchOption {
	return func(p *matchParams) {
		if limit > 0 {
			p.limit = limit
		}
	}
}

// WithThreshold sets the score above which the service flags a match.
func WithThreshold(threshold float64) MatchOption {
	return func(p *matchParams) {
		p.threshold = &threshold
	}
}
