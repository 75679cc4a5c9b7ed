package httpapi

import (
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var errRouteNotFound = errors.New("route not found")
var errMethodNotAllowed = errors.New("method not allowed")
var errMissingFacet = errors.New("missing facet parameter")
var errInvalidPagingParam = errors.New("p and ps must be integers")
var errInternal = errors.New("internal server error")

// ErrorMessage is one entry of an error response.
type ErrorMessage struct {
	Msg string `json:"msg"`
}

// ErrorResponse is the body of every non 2xx response.
type ErrorResponse struct {
	Errors []ErrorMessage `json:"errors"`
}

// NormalizeResponse is the canonical form of a query.
type NormalizeResponse struct {
	Query    rulesquery.RawQuery `json:"query"`
	Encoded  string              `json:"encoded"`
	Extras   rulesquery.RawQuery `json:"extras"`
	Open     string              `json:"open,omitempty"`
	Selected string              `json:"selected,omitempty"`
}

// EqualResponse tells whether two queries denote the same filter.
type EqualResponse struct {
	Equal bool `json:"equal"`
}

// FacetPolicy describes how a facet key is handled in facet requests.
type FacetPolicy struct {
	Facet       string                `json:"facet"`
	Requestable bool                  `json:"requestable"`
	ServerFacet string                `json:"serverFacet"`
	Expanded    []rulesquery.FacetKey `json:"expanded"`
}

// FacetPolicyResponse lists the policy of every requested facet, in request order.
type FacetPolicyResponse struct {
	Facets []FacetPolicy `json:"facets"`
}

// HealthResponse is the body of the health check.
type HealthResponse struct {
	Status string `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}

// writeError answers with err as the message. 5xx answers carry a generic message,
// the cause is only logged.
func writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		err = errInternal
	}

	writeJSON(w, status, ErrorResponse{Errors: []ErrorMessage{{Msg: err.Error()}}})
}

// statusForError maps engine errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, rulesquery.ErrInvalidPaging):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
