package fetcher

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/nao1215/airscrape/internal/config"
)

// Client fetches review pages over HTTP.
type Client struct {
	// http is the underlying resty client. It keeps resty's defaults:
	// no timeout and no retries.
	http *resty.Client

	// urlTemplate contains config.AirlinePlaceholder, replaced by the slug.
	urlTemplate string

	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithURLTemplate sets the review page URL template.
func WithURLTemplate(tmpl string) Option {
	return func(c *Client) {
		c.urlTemplate = tmpl
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.http.SetHeader("User-Agent", ua)
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client with the default URL template and User-Agent.
func New(opts ...Option) *Client {
	c := &Client{
		http:        resty.New(),
		urlTemplate: config.DefaultURLTemplate,
		logger:      slog.Default(),
	}
	c.http.SetHeader("User-Agent", config.DefaultUserAgent)
	c.http.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Slug derives the URL-safe name of an airline: lower-cased, with spaces
// replaced by hyphens. "British Airways" becomes "british-airways".
func Slug(airline string) string {
	return strings.ReplaceAll(strings.ToLower(airline), " ", "-")
}

// URL returns the review page URL of airline.
func (c *Client) URL(airline string) string {
	return strings.ReplaceAll(c.urlTemplate, config.AirlinePlaceholder, Slug(airline))
}

// Fetch issues one GET for the airline's review page and returns the status
// code and body. A transport failure or a status other than 200 is returned
// as a *FetchError; the status code is still returned in the latter case.
func (c *Client) Fetch(ctx context.Context, airline string) (int, []byte, error) {
	u := c.URL(airline)
	c.logger.Debug("fetching review page", "airline", airline, "url", u)

	resp, err := c.http.R().SetContext(ctx).Get(u)
	if err != nil {
		return 0, nil, &FetchError{Airline: airline, URL: u, Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return resp.StatusCode(), nil, &FetchError{Airline: airline, URL: u, StatusCode: resp.StatusCode()}
	}
	return resp.StatusCode(), resp.Body(), nil
}

// RobotsResult is the outcome of a compliance check.
type RobotsResult struct {
	URL        string
	Status     string
	StatusCode int
	Body       string
}

// CheckRobots fetches the crawler policy document at robotsURL.
// The result is informational only; any status is returned without error.
func (c *Client) CheckRobots(ctx context.Context, robotsURL string) (RobotsResult, error) {
	resp, err := c.http.R().SetContext(ctx).Get(robotsURL)
	if err != nil {
		return RobotsResult{URL: robotsURL}, &FetchError{Airline: "robots.txt", URL: robotsURL, Err: err}
	}
	return RobotsResult{
		URL:        robotsURL,
		Status:     resp.Status(),
		StatusCode: resp.StatusCode(),
		Body:       resp.String(),
	}, nil
}
