// Package searchclient is an HTTP client for the rule search API served by package httpapi.
//
// Client retries failed requests with go-retryablehttp and only asks for facets that
// rulesquery.ShouldRequestFacet allows. Navigator wraps a Client for interactive browsing:
// it skips the request when the next query denotes the same filter as the previous one.
package searchclient
