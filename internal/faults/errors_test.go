package faults

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapKeepsMarkerAndCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(ErrModelUnavailable, "detecting", "ensure model", "llama3 not pulled", cause)
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("expected marker to match, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to match, got %v", err)
	}
	if !strings.Contains(err.Error(), "detecting: ensure model: llama3 not pulled") {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestWrapWithoutDetail(t *testing.T) {
	err := Wrap(nil, "", "", "", nil)
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "pipeline failure") {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestRecoverable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, true},
		{Wrap(ErrEmptyTextSegment, "classifying", "", "", nil), true},
		{Wrap(ErrBoundaryViolation, "cutting", "", "", nil), true},
		{Wrap(ErrRelocation, "cutting", "", "", errors.New("exdev")), true},
		{Wrap(ErrModelUnavailable, "detecting", "", "", nil), false},
		{&UnparseableResponseError{Raw: "nope"}, false},
		{&ModelRequestError{Backend: "remote", StatusCode: 500}, false},
	}
	for _, tt := range tests {
		if got := Recoverable(tt.err); got != tt.want {
			t.Fatalf("Recoverable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestModelRequestErrorCarriesStatusAndBody(t *testing.T) {
	err := error(&ModelRequestError{Backend: "remote", StatusCode: 429, Body: `{"error":"slow down"}`})
	if !errors.Is(err, ErrModelRequest) {
		t.Fatalf("expected ErrModelRequest")
	}
	msg := err.Error()
	if !strings.Contains(msg, "http 429") || !strings.Contains(msg, "slow down") {
		t.Fatalf("unexpected message: %q", msg)
	}
	var reqErr *ModelRequestError
	if !errors.As(err, &reqErr) || reqErr.StatusCode != 429 {
		t.Fatalf("expected errors.As to expose status")
	}
}

func TestUnparseableResponseErrorKeepsRaw(t *testing.T) {
	err := error(&UnparseableResponseError{Raw: "I cannot help\nwith that", Err: errors.New("invalid character")})
	if !errors.Is(err, ErrUnparseableResponse) {
		t.Fatalf("expected ErrUnparseableResponse")
	}
	var pe *UnparseableResponseError
	if !errors.As(err, &pe) || pe.Raw != "I cannot help\nwith that" {
		t.Fatalf("expected raw text to be retained")
	}
	if !strings.Contains(err.Error(), "I cannot help with that") {
		t.Fatalf("expected snippet in message, got %q", err.Error())
	}
}

func TestSnippet(t *testing.T) {
	if got := Snippet("  ", 10); got != "<empty>" {
		t.Fatalf("got %q", got)
	}
	if got := Snippet("a  b\tc", 10); got != "a b c" {
		t.Fatalf("got %q", got)
	}
	if got := Snippet("abcdefghijkl", 4); got != "abcd..." {
		t.Fatalf("got %q", got)
	}
}
