package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type LocationErrorKind int

const (
	PositionUnavailable LocationErrorKind = iota
	PermissionDenied
	Timeout
)

func (k LocationErrorKind) String() string {
	switch k {
	case PermissionDenied:
		return "permission_denied"
	case Timeout:
		return "timeout"
	default:
		return "position_unavailable"
	}
}

// ParseLocationErrorKind accepts snake_case names and the numeric codes used by
// the browser Geolocation API (1 denied, 2 unavailable, 3 timeout).
func ParseLocationErrorKind(s string) (LocationErrorKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "permission_denied", "1":
		return PermissionDenied, nil
	case "position_unavailable", "2":
		return PositionUnavailable, nil
	case "timeout", "3":
		return Timeout, nil
	}
	return PositionUnavailable, fmt.Errorf("parse location error kind: unknown kind %q", s)
}

// LocationError is reported by a location source without terminating its subscription.
type LocationError struct {
	Kind    LocationErrorKind
	Message string
	At      time.Time
}

func (e LocationError) Error() string {
	if e.Message == "" {
		return "location: " + e.Kind.String()
	}
	return fmt.Sprintf("location: %s: %s", e.Kind, e.Message)
}

type FetchErrorKind int

const (
	NetworkError FetchErrorKind = iota
	MalformedResponse
	EmptyRoute
)

func (k FetchErrorKind) String() string {
	switch k {
	case MalformedResponse:
		return "malformed_response"
	case EmptyRoute:
		return "empty_route"
	default:
		return "network_error"
	}
}

// FetchError is the only error type a route provider reports.
type FetchError struct {
	Kind FetchErrorKind
	Err  error
}

func NewFetchError(kind FetchErrorKind, err error) *FetchError {
	return &FetchError{Kind: kind, Err: err}
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return "route fetch: " + e.Kind.String()
	}
	return fmt.Sprintf("route fetch: %s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsFetchErrorKind reports whether err wraps a *FetchError of the given kind.
func IsFetchErrorKind(err error, kind FetchErrorKind) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == kind
}
