package searchclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery"
	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery/httpapi"
)

const (
	defaultRetryMax     = 3
	defaultRetryWaitMin = 100 * time.Millisecond
	defaultRetryWaitMax = 2 * time.Second
	defaultTimeout      = 30 * time.Second
	maxErrorBodyBytes   = 64 << 10
	paramPage           = "p"
	paramPageSize       = "ps"
	paramFacets         = "facets"
)

var ErrEmptyBaseURL = errors.New("base url must not be empty")
var ErrInvalidBaseURL = errors.New("base url is not valid")
var ErrInvalidRetryMax = errors.New("retry max must not be negative")
var ErrSearchRequestFailed = errors.New("search request failed")
var ErrUnexpectedStatus = errors.New("unexpected response status")
var ErrDecodingResponseFailed = errors.New("decoding the response failed")

// Client calls the rule search API.
type Client struct {
	baseURL *url.URL
	http    *retryablehttp.Client
	logger  rulesquery.Logger
}

// Option defines a functional option for configuring Client.
type Option func(*Client) error

// WithRetryMax sets how often a failed request is retried.
func WithRetryMax(retryMax int) Option {
	return func(c *Client) error {
		if retryMax < 0 {
			return ErrInvalidRetryMax
		}

		c.http.RetryMax = retryMax

		return nil
	}
}

// WithRetryWait sets the bounds of the exponential backoff between retries.
func WithRetryWait(minWait, maxWait time.Duration) Option {
	return func(c *Client) error {
		c.http.RetryWaitMin = minWait
		c.http.RetryWaitMax = maxWait

		return nil
	}
}

// WithHTTPClient sets the underlying http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) error {
		c.http.HTTPClient = httpClient
		return nil
	}
}

// WithLogger sets the logger for requests and retries.
func WithLogger(logger rulesquery.Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// NewClient creates a Client for the API at baseURL, e.g. "http://localhost:8080".
func NewClient(baseURL string, options ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrEmptyBaseURL
	}

	parsed, parseErr := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if parseErr != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, errors.Join(ErrInvalidBaseURL, parseErr)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = defaultRetryMax
	retryClient.RetryWaitMin = defaultRetryWaitMin
	retryClient.RetryWaitMax = defaultRetryWaitMax
	retryClient.HTTPClient.Timeout = defaultTimeout
	retryClient.Logger = nil
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	c := &Client{baseURL: parsed, http: retryClient}

	for _, option := range options {
		if err := option(c); err != nil {
			return nil, err
		}
	}

	if c.logger != nil {
		retryClient.Logger = retryablehttp.LeveledLogger(c.logger)
	}

	return c, nil
}

// Search fetches one page of rules matching raw, with the counts of the requested facets.
//
// The query is normalized before it is sent, so the request carries no unknown or empty keys.
// Facets that are not requestable are dropped without a request.
func (c *Client) Search(
	ctx context.Context,
	raw rulesquery.RawQuery,
	paging rulesquery.Paging,
	facets ...string,
) (rulesquery.SearchResult, error) {

	var result rulesquery.SearchResult

	endpoint := c.searchURL(raw, paging, RequestableFacets(facets))

	request, requestErr := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if requestErr != nil {
		return result, errors.Join(ErrSearchRequestFailed, requestErr)
	}

	response, doErr := c.http.Do(request)
	if doErr != nil {
		c.logError("search request failed", doErr, "url", endpoint)
		return result, errors.Join(ErrSearchRequestFailed, doErr)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != http.StatusOK {
		statusErr := statusError(response)
		c.logError("search request failed", statusErr, "url", endpoint)

		return result, errors.Join(ErrSearchRequestFailed, statusErr)
	}

	if decodeErr := jsoniter.NewDecoder(response.Body).Decode(&result); decodeErr != nil {
		return rulesquery.SearchResult{}, errors.Join(ErrDecodingResponseFailed, decodeErr)
	}

	c.logDebug("search request succeeded", "url", endpoint, "total", result.Total)

	return result, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.HTTPClient.CloseIdleConnections()
}

func (c *Client) searchURL(raw rulesquery.RawQuery, paging rulesquery.Paging, facets []string) string {
	values := rulesquery.SerializeQuery(rulesquery.ParseQuery(raw)).Values()
	values.Set(paramPage, strconv.Itoa(paging.PageIndex))
	values.Set(paramPageSize, strconv.Itoa(paging.PageSize))

	if len(facets) > 0 {
		values.Set(paramFacets, strings.Join(facets, ","))
	}

	endpoint := *c.baseURL
	endpoint.Path += httpapi.RouteSearch
	endpoint.RawQuery = values.Encode()

	return endpoint.String()
}

// RequestableFacets keeps the facets rulesquery.ShouldRequestFacet allows, in order and without duplicates.
func RequestableFacets(facets []string) []string {
	requestable := make([]string, 0, len(facets))
	seen := make(map[string]struct{}, len(facets))

	for _, facet := range facets {
		if _, ok := seen[facet]; ok || !rulesquery.ShouldRequestFacet(facet) {
			continue
		}

		seen[facet] = struct{}{}
		requestable = append(requestable, facet)
	}

	return requestable
}

// statusError builds an error from a non 200 response, using the API's error messages when present.
func statusError(response *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBodyBytes))

	var errorResponse httpapi.ErrorResponse
	if err := jsoniter.Unmarshal(body, &errorResponse); err == nil && len(errorResponse.Errors) > 0 {
		messages := make([]string, 0, len(errorResponse.Errors))
		for _, message := range errorResponse.Errors {
			messages = append(messages, message.Msg)
		}

		return fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, response.StatusCode, strings.Join(messages, "; "))
	}

	return fmt.Errorf("%w %d", ErrUnexpectedStatus, response.StatusCode)
}

func (c *Client) logDebug(message string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(message, args...)
	}
}

func (c *Client) logError(message string, err error, args ...any) {
	if c.logger != nil {
		c.logger.Error(message, append([]any{"error", err.Error()}, args...)...)
	}
}
