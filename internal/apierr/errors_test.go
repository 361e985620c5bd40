package apierr

import (
	"errors"
	"fmt"
	"testing"
)

func TestMessagePrecedence(t *testing.T) {
	const fb = "Failed to schedule orchestration"
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"message wins", &HTTPError{Status: 400, Message: "Bad dates", Detail: "ignored"}, "Bad dates"},
		{"detail fallback", &HTTPError{Status: 404, Detail: "Team not found"}, "Team not found"},
		{"bare status", &HTTPError{Status: 500}, fb},
		{"network", &NetworkError{Op: "schedule", Err: errors.New("connection refused")}, fb},
		{"unknown", errors.New("boom"), fb},
		{"nil", nil, fb},
		{"validation", &ValidationError{Field: "start_date", Reason: "is required"}, "start_date: is required"},
		{"wrapped", fmt.Errorf("call: %w", &HTTPError{Status: 409, Detail: "Run in progress"}), "Run in progress"},
	}
	for _, tc := range cases {
		if got := Message(tc.err, fb); got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.name, got, tc.want)
		}
	}
}

func TestOperationErrorUnwrapsToHTTPError(t *testing.T) {
	err := error(&OperationError{Op: "schedule", Message: "Team not found", Err: &HTTPError{Status: 404, Detail: "Team not found"}})
	var he *HTTPError
	if !errors.As(err, &he) || he.Status != 404 {
		t.Fatalf("expected HTTPError 404 through OperationError, got %v", err)
	}
	if Status(err) != 404 {
		t.Fatalf("Status: got %d", Status(err))
	}
	if Status(&NetworkError{Op: "health", Err: errors.New("x")}) != 0 {
		t.Fatal("network error should carry no status")
	}
}
