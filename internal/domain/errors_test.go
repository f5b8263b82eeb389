package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "kind and message",
			err:      ErrValidation("invalid URL"),
			expected: "invalid_request: invalid URL",
		},
		{
			name:     "upstream context",
			err:      ErrUpstream("vote listing failed").WithUpstream(500, "https://example.test/votacoes/1/votos", "boom"),
			expected: "upstream: vote listing failed (HTTP 500 @ https://example.test/votacoes/1/votos :: boom)",
		},
		{
			name:     "wrapped cause",
			err:      ErrServer("decode failed").WithCause(errors.New("unexpected EOF")),
			expected: "server: decode failed: unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestError_HTTPStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected int
	}{
		{name: "validation", err: ErrValidation("x"), expected: http.StatusBadRequest},
		{name: "not found", err: ErrNotFound("x"), expected: http.StatusNotFound},
		{name: "upstream", err: ErrUpstream("x"), expected: http.StatusBadGateway},
		{name: "server", err: ErrServer("x"), expected: http.StatusInternalServerError},
		{name: "unknown kind", err: &Error{Kind: "weird"}, expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.HTTPStatusCode(); got != tt.expected {
				t.Errorf("HTTPStatusCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestAsError(t *testing.T) {
	notFound := ErrNotFound("no votes for event")
	wrapped := fmt.Errorf("resolve: %w", notFound)

	if got := AsError(wrapped); got != notFound {
		t.Errorf("AsError() = %v, want the wrapped canonical error", got)
	}

	plain := errors.New("connection reset")
	got := AsError(plain)
	if got.Kind != ErrorKindServer {
		t.Errorf("AsError() kind = %q, want %q", got.Kind, ErrorKindServer)
	}
	if !errors.Is(got, plain) {
		t.Error("AsError() should keep the original error as cause")
	}
	if got.Detail() != "unexpected error: connection reset" {
		t.Errorf("Detail() = %q", got.Detail())
	}
}

func TestError_Detail(t *testing.T) {
	err := ErrUpstream("vote listing failed").WithUpstream(503, "https://example.test/v", "down")
	if got, want := err.Detail(), "vote listing failed (HTTP 503 @ https://example.test/v :: down)"; got != want {
		t.Errorf("Detail() = %q, want %q", got, want)
	}
	if got := ErrValidation("missing URL").Detail(); got != "missing URL" {
		t.Errorf("Detail() = %q, want %q", got, "missing URL")
	}
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("outer: %w", ErrValidation("missing session parameter"))
	if !IsKind(err, ErrorKindValidation) {
		t.Error("IsKind() = false, want true for wrapped validation error")
	}
	if IsKind(err, ErrorKindNotFound) {
		t.Error("IsKind() = true for mismatched kind")
	}
	if IsKind(errors.New("plain"), ErrorKindValidation) {
		t.Error("IsKind() = true for non-canonical error")
	}
}

func TestExcerpt(t *testing.T) {
	short := "short body"
	if got := Excerpt(short); got != short {
		t.Errorf("Excerpt() = %q, want %q", got, short)
	}

	long := strings.Repeat("a", 500)
	if got := Excerpt(long); len(got) != MaxBodyExcerpt {
		t.Errorf("len(Excerpt()) = %d, want %d", len(got), MaxBodyExcerpt)
	}

	accented := strings.Repeat("ç", 200)
	if got := []rune(Excerpt(accented)); len(got) != MaxBodyExcerpt {
		t.Errorf("Excerpt() rune count = %d, want %d", len(got), MaxBodyExcerpt)
	}
}

func TestExhaustionReason_String(t *testing.T) {
	if got := ExhaustionComplete.String(); got != "complete" {
		t.Errorf("String() = %q, want complete", got)
	}
	if got := ExhaustionUpstreamAbsent.String(); got != "upstream_absent" {
		t.Errorf("String() = %q, want upstream_absent", got)
	}
}
