package camara

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tjfontaine/rollcall-gateway/internal/domain"
	"github.com/tjfontaine/rollcall-gateway/internal/metrics"
)

const (
	// DefaultBaseURL is the public open-data API root.
	DefaultBaseURL   = "https://dadosabertos.camara.leg.br/api/v2"
	defaultUserAgent = "rollcall-gateway/1.0"
)

// Endpoint labels used for logging and metrics.
const (
	EndpointVote       = "vote"
	EndpointEventVotes = "event_votes"
	EndpointVotesPage  = "votes_page"
)

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets the logger used for per-request debug output.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics records upstream request counts and latencies.
func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// Client is a read-only HTTP client for the open-data API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewClient creates a new open-data API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		userAgent:  defaultUserAgent,
		httpClient: http.DefaultClient,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// VoteURL returns the address describing a single vote.
func (c *Client) VoteURL(id string) string {
	return c.baseURL + "/votacoes/" + url.PathEscape(id)
}

// VotesURL returns the canonical first page of a vote's nominal entries.
func (c *Client) VotesURL(id string) string {
	return c.VoteURL(id) + "/votos"
}

// EventVotesURL returns the address listing the votes of an event.
func (c *Client) EventVotesURL(eventID string) string {
	return c.baseURL + "/eventos/" + url.PathEscape(eventID) + "/votacoes"
}

// GetVote fetches GET /votacoes/{id}.
func (c *Client) GetVote(ctx context.Context, id string) (*Envelope, error) {
	return c.get(ctx, EndpointVote, c.VoteURL(id))
}

// ListEventVotes fetches GET /eventos/{id}/votacoes.
func (c *Client) ListEventVotes(ctx context.Context, eventID string) (*Envelope, error) {
	return c.get(ctx, EndpointEventVotes, c.EventVotesURL(eventID))
}

// GetPage fetches one page of a paginated listing by absolute address.
func (c *Client) GetPage(ctx context.Context, pageURL string) (*Envelope, error) {
	return c.get(ctx, EndpointVotesPage, pageURL)
}

func (c *Client) get(ctx context.Context, endpoint, rawURL string) (*Envelope, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.ObserveUpstream(endpoint, 0, time.Since(start))
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	c.metrics.ObserveUpstream(endpoint, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("upstream request",
		slog.String("endpoint", endpoint),
		slog.String("url", rawURL),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			URL:        rawURL,
			Body:       domain.Excerpt(string(respBody)),
		}
	}

	var result Envelope
	if err := json.NewDecoder(bytes.NewReader(respBody)).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response from %s: %w", rawURL, err)
	}

	return &result, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
}
