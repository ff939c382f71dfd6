// Package archiveorg is a thin client for the Internet Archive advanced search
// and item metadata endpoints.
package archiveorg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"archiveapi/internal/metrics"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	endpointRaw      = "raw"
	endpointSearch   = "search"
	endpointMetadata = "metadata"
)

var errMalformedJSON = errors.New("malformed JSON body")

type Config struct {
	SearchURL   string
	MetadataURL string
	UserAgent   string
	// Timeout bounds a single request. Zero means no timeout.
	Timeout time.Duration
	RPS     float64
	Burst   int
	// BreakerFailures is the number of consecutive failures that opens the
	// circuit; BreakerTimeout is how long it stays open.
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

type Client struct {
	httpClient  *http.Client
	userAgent   string
	searchURL   string
	metadataURL string
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker[json.RawMessage]
}

func NewClient(cfg Config) *Client {
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		userAgent:   cfg.UserAgent,
		searchURL:   cfg.SearchURL,
		metadataURL: strings.TrimRight(cfg.MetadataURL, "/"),
		limiter:     rate.NewLimiter(limit, burst),
		breaker:     newBreaker("archive-org", cfg.BreakerFailures, cfg.BreakerTimeout),
	}
}

// Get issues a GET to rawURL with params appended and returns the JSON body.
// Any non-2xx status, network failure or malformed body is reported as a
// *TransportError. An empty 2xx body is returned as JSON null.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) (json.RawMessage, error) {
	if rawURL == "" {
		return nil, &TransportError{Err: errors.New("empty URL")}
	}
	return c.get(ctx, endpointRaw, withQuery(rawURL, params.Encode()))
}

// Search runs an advanced search query.
func (c *Client) Search(ctx context.Context, q SearchQuery) (*SearchResponse, error) {
	u := withQuery(c.searchURL, q.Encode())
	body, err := c.get(ctx, endpointSearch, u)
	if err != nil {
		return nil, err
	}
	if isEmptyBody(body) {
		return &SearchResponse{}, nil
	}

	var res SearchResponse
	if err := json.Unmarshal(body, &res); err != nil {
		metrics.UpstreamErrors.WithLabelValues(endpointSearch, "decode").Inc()
		return nil, &TransportError{URL: u, StatusCode: http.StatusOK, Body: string(body), Err: fmt.Errorf("decode search response: %w", err)}
	}
	return &res, nil
}

// Metadata fetches the item-level metadata (file listing and free-form
// metadata) for identifier.
func (c *Client) Metadata(ctx context.Context, identifier string) (*ItemMetadata, error) {
	u := c.metadataURL + "/" + url.PathEscape(identifier)
	body, err := c.get(ctx, endpointMetadata, u)
	if err != nil {
		return nil, err
	}

	var res ItemMetadata
	if isEmptyBody(body) {
		return &res, nil
	}
	if err := json.Unmarshal(body, &res); err != nil {
		metrics.UpstreamErrors.WithLabelValues(endpointMetadata, "decode").Inc()
		return nil, &TransportError{URL: u, StatusCode: http.StatusOK, Body: string(body), Err: fmt.Errorf("decode item metadata: %w", err)}
	}
	return &res, nil
}

// Ready reports whether upstream calls are currently let through, that is
// the circuit breaker is not open.
func (c *Client) Ready() bool {
	return c.breaker.State() != gobreaker.StateOpen
}

func (c *Client) get(ctx context.Context, endpoint, u string) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{URL: u, Err: err}
	}

	body, err := c.breaker.Execute(func() (json.RawMessage, error) {
		return c.do(ctx, endpoint, u)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.UpstreamErrors.WithLabelValues(endpoint, "rejected").Inc()
		return nil, &TransportError{URL: u, Err: err}
	}
	return body, err
}

func (c *Client) do(ctx context.Context, endpoint, u string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &TransportError{URL: u, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues(endpoint, "network").Inc()
		return nil, &TransportError{URL: u, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	metrics.UpstreamRequestDuration.
		WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).
		Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues(endpoint, "network").Inc()
		return nil, &TransportError{URL: u, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.UpstreamErrors.WithLabelValues(endpoint, "status").Inc()
		return nil, &TransportError{URL: u, StatusCode: resp.StatusCode, Body: string(body)}
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(body) {
		metrics.UpstreamErrors.WithLabelValues(endpoint, "decode").Inc()
		return nil, &TransportError{URL: u, StatusCode: resp.StatusCode, Body: string(body), Err: errMalformedJSON}
	}
	return json.RawMessage(body), nil
}

func withQuery(u, query string) string {
	if query == "" {
		return u
	}
	if strings.Contains(u, "?") {
		return u + "&" + query
	}
	return u + "?" + query
}

// isEmptyBody reports whether a JSON body carries no data at all: null, an
// empty object or array, an empty string, false or zero.
func isEmptyBody(body json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return true
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	}
	return false
}
