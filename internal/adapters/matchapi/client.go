// Package matchapi is a client for the hosted entity matching endpoint.
//
// One Match call is one POST. Nothing is retried, cached or batched beyond
// the queries carried in a single request body.
package matchapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/osmatch/internal/config"
	"github.com/okian/osmatch/internal/domain/model"
	"github.com/okian/osmatch/pkg/logger"
	"github.com/okian/osmatch/pkg/metrics"
)

// Request header names.
const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	headerAccept        = "Accept"
	headerUserAgent     = "User-Agent"
	headerRequestID     = "X-Request-Id"

	contentTypeJSON = "application/json"
)

// Error kinds recorded in metrics.
const (
	errKindTransport    = "transport"
	errKindDataShape    = "data_shape"
	errKindInvalidQuery = "invalid_query"
	errKindConfig       = "configuration"
)

// Client sends match requests. It holds only immutable settings and is safe
// for concurrent use; concurrent calls are independent and unordered.
type Client struct {
	apiKey     string
	baseURL    string
	dataset    string
	userAgent  string
	timeout    time.Duration
	endpoint   *url.URL
	httpClient *http.Client
	logger     logger.Logger
	metrics    *metrics.Manager
}

// New creates a client authenticating with apiKey. An empty key fails with
// ErrMissingAPIKey.
func New(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	c := &Client{
		apiKey:    apiKey,
		baseURL:   config.DefaultBaseURL,
		dataset:   config.DefaultDataset,
		userAgent: config.DefaultUserAgent,
		timeout:   time.Duration(config.DefaultTimeoutMS) * time.Millisecond,
		logger:    logger.Nop(),
		metrics:   metrics.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}

	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	if endpoint.Scheme == "" || endpoint.Host == "" {
		return nil, fmt.Errorf("%w: base URL %q needs a scheme and host", ErrInvalidEndpoint, c.baseURL)
	}
	c.endpoint = endpoint.JoinPath("match", c.dataset)
	return c, nil
}

// NewFromConfig creates a client from loaded configuration. Options given
// here are applied after the configured values.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	base := []Option{
		WithBaseURL(cfg.BaseURL),
		WithDataset(cfg.Dataset),
		WithTimeout(cfg.Timeout()),
		WithUserAgent(cfg.UserAgent),
	}
	return New(cfg.APIKey, append(base, opts...)...)
}

// Endpoint returns the match URL without per-call parameters.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// Match posts queries and returns the decoded response. Every key of
// queries is guaranteed to be present in the result's Responses.
//
// Errors: ErrInvalidQuery for empty input, *TransportError for non-2xx
// answers, ErrTransport for network failures, *model.DataShapeError when the
// body cannot be decoded or lacks a requested key.
func (c *Client) Match(ctx context.Context, queries model.Queries, opts ...MatchOption) (*model.MatchResponse, error) {
	if c == nil || c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if err := validateQueries(queries); err != nil {
		c.metrics.RecordError(errKindInvalidQuery)
		return nil, err
	}

	params := matchParams{}
	for _, opt := range opts {
		opt(&params)
	}

	req, requestID, err := c.newRequest(ctx, queries, params)
	if err != nil {
		return nil, err
	}

	log := c.logger
	log.Debug(ctx, "sending match request",
		logger.String("endpoint", req.URL.String()),
		logger.String("request_id", requestID),
		logger.Int("queries", len(queries)))

	c.metrics.RecordQueries(len(queries))
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(metrics.OutcomeTransport, 0, start, errKindTransport)
		log.Error(ctx, "match request failed", logger.String("request_id", requestID), logger.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Warn(ctx, "failed to close response body", logger.Error(err))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(metrics.OutcomeTransport, resp.StatusCode, start, errKindTransport)
		return nil, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.observe(metrics.OutcomeTransport, resp.StatusCode, start, statusKind(resp.StatusCode))
		log.Warn(ctx, "match request rejected",
			logger.String("request_id", requestID),
			logger.Int("status", resp.StatusCode))
		return nil, &TransportError{StatusCode: resp.StatusCode, Status: resp.Status, Body: body}
	}

	out, err := decodeResponse(body, queries)
	if err != nil {
		c.observe(metrics.OutcomeDataShape, resp.StatusCode, start, errKindDataShape)
		return nil, err
	}

	c.observe(metrics.OutcomeSuccess, resp.StatusCode, start, "")
	returned, matched := countCandidates(out)
	c.metrics.RecordCandidates(returned, matched)
	log.Info(ctx, "match request completed",
		logger.String("request_id", requestID),
		logger.Int("queries", len(queries)),
		logger.Int("candidates", returned),
		logger.Int("matches", matched),
		logger.Duration("elapsed", time.Since(start)))
	return out, nil
}

func (c *Client) newRequest(ctx context.Context, queries model.Queries, params matchParams) (*http.Request, string, error) {
	payload, err := json.Marshal(model.MatchRequest{Queries: queries})
	if err != nil {
		c.metrics.RecordError(errKindInvalidQuery)
		return nil, "", fmt.Errorf("%w: marshal: %w", ErrInvalidQuery, err)
	}

	u := *c.endpoint
	q := u.Query()
	if params.algorithm != "" {
		q.Set("algorithm", params.algorithm)
	}
	if params.limit > 0 {
		q.Set("limit", strconv.Itoa(params.limit))
	}
	if params.threshold != nil {
		q.Set("threshold", strconv.FormatFloat(*params.threshold, 'f', -1, 64))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		c.metrics.RecordError(errKindConfig)
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}

	requestID := uuid.NewString()
	req.Header.Set(headerAuthorization, c.apiKey)
	req.Header.Set(headerContentType, contentTypeJSON)
	req.Header.Set(headerAccept, contentTypeJSON)
	req.Header.Set(headerUserAgent, c.userAgent)
	req.Header.Set(headerRequestID, requestID)
	return req, requestID, nil
}

func (c *Client) observe(outcome string, statusCode int, start time.Time, errKind string) {
	c.metrics.RecordRequest(outcome, statusCode, float64(time.Since(start).Milliseconds()))
	if errKind != "" {
		c.metrics.RecordError(errKind)
	}
}

func validateQueries(queries model.Queries) error {
	if len(queries) == 0 {
		return fmt.Errorf("%w: no queries", ErrInvalidQuery)
	}
	for key := range queries {
		if key == "" {
			return fmt.Errorf("%w: empty query key", ErrInvalidQuery)
		}
	}
	return nil
}

// decodeResponse parses body and checks that every requested key came back
// with a results list. Each requested key also gets its results undecoded in
// QueryResponse.Raw.
func decodeResponse(body []byte, queries model.Queries) (*model.MatchResponse, error) {
	var out model.MatchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &model.DataShapeError{Index: -1, Err: err}
	}
	if out.Responses == nil {
		return nil, &model.DataShapeError{Index: -1, Field: "responses"}
	}

	var raw rawResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &model.DataShapeError{Index: -1, Err: err}
	}

	for key := range queries {
		qr, ok := out.Responses[key]
		if !ok {
			return nil, &model.DataShapeError{Query: key, Index: -1, Field: "responses." + key}
		}
		if qr.Results == nil {
			return nil, &model.DataShapeError{Query: key, Index: -1, Field: "results"}
		}
		qr.Raw = raw.Responses[key].Results
		out.Responses[key] = qr
	}
	return &out, nil
}

// rawResponse keeps each candidate undecoded for verbatim output.
type rawResponse struct {
	Responses map[string]struct {
		Results []json.RawMessage `json:"results"`
	} `json:"responses"`
}

func countCandidates(resp *model.MatchResponse) (returned, matched int) {
	for _, qr := range resp.Responses {
		returned += len(qr.Results)
		for _, c := range qr.Results {
			if c.Match != nil && *c.Match {
				matched++
			}
		}
	}
	return returned, matched
}
