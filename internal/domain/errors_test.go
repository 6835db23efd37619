package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseLocationErrorKind(t *testing.T) {
	tests := []struct {
		in   string
		want LocationErrorKind
	}{
		{in: "permission_denied", want: PermissionDenied},
		{in: " TIMEOUT ", want: Timeout},
		{in: "position_unavailable", want: PositionUnavailable},
		{in: "1", want: PermissionDenied},
		{in: "2", want: PositionUnavailable},
		{in: "3", want: Timeout},
	}

	for _, tt := range tests {
		got, err := ParseLocationErrorKind(tt.in)
		if err != nil {
			t.Fatalf("ParseLocationErrorKind(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseLocationErrorKind(%q) = %s, want %s", tt.in, got, tt.want)
		}
		if back, _ := ParseLocationErrorKind(got.String()); back != got {
			t.Fatalf("String() of %s does not parse back", got)
		}
	}

	if _, err := ParseLocationErrorKind("lost"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestFetchErrorMatching(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("refresh: %w", NewFetchError(NetworkError, cause))

	if !IsFetchErrorKind(err, NetworkError) {
		t.Fatalf("expected network error kind")
	}
	if IsFetchErrorKind(err, EmptyRoute) {
		t.Fatalf("unexpected empty route kind")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable")
	}
	if IsFetchErrorKind(cause, NetworkError) {
		t.Fatalf("plain errors carry no kind")
	}

	var fe *FetchError
	if !errors.As(err, &fe) || fe.Kind.String() != "network_error" {
		t.Fatalf("unexpected fetch error %+v", fe)
	}
}

func TestLocationErrorMessage(t *testing.T) {
	if got := (LocationError{Kind: Timeout}).Error(); got != "location: timeout" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := (LocationError{Kind: PermissionDenied, Message: "blocked"}).Error(); got != "location: permission_denied: blocked" {
		t.Fatalf("unexpected message %q", got)
	}
}
