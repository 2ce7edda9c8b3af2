// Package scenario models test-control overrides for the mock server.
//
// Automated tests force alternate server behaviors (exact status codes,
// empty collections, reservation conflicts) through designated request
// headers. The adapter parses those headers once, at the transport
// boundary, into a Scenario value that is threaded explicitly through
// request dispatch. Handlers never inspect transport headers themselves.
package scenario

import (
	"net/http"
	"strconv"
)

// Test-control headers. Matching is case-insensitive per HTTP semantics.
const (
	HeaderResponseCode        = "X-Test-Response-Code"
	HeaderResponseText        = "X-Test-Response-Text"
	HeaderEmptyResponse       = "X-Test-Empty-Response"
	HeaderTooManyReservations = "X-Test-Too-Many-Reservations"
)

// Scenario carries the overrides requested for a single request.
// The zero value means no override.
type Scenario struct {
	// ForcedStatus, when non-zero, is written as the response status
	// verbatim, bypassing all handler logic. ForcedText is an optional
	// plain-text body accompanying it.
	ForcedStatus int
	ForcedText   string

	// EmptyResponse forces a 200 with an empty collection from list and
	// availability operations.
	EmptyResponse bool

	// TooManyReservations forces a 409 Conflict from reservation creation,
	// leaving the store untouched.
	TooManyReservations bool
}

// FromHeaders extracts a Scenario from request headers.
// A response-code header outside the 100-599 range is ignored rather than
// producing an unwritable status line.
func FromHeaders(h http.Header) Scenario {
	var s Scenario

	if v := h.Get(HeaderResponseCode); v != "" {
		if code, err := strconv.Atoi(v); err == nil && code >= 100 && code <= 599 {
			s.ForcedStatus = code
			s.ForcedText = h.Get(HeaderResponseText)
		}
	}

	if h.Get(HeaderEmptyResponse) != "" {
		s.EmptyResponse = true
	}

	if h.Get(HeaderTooManyReservations) != "" {
		s.TooManyReservations = true
	}

	return s
}

// IsZero reports whether no override is requested.
func (s Scenario) IsZero() bool {
	return s == Scenario{}
}
