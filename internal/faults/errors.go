package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrParse               = errors.New("malformed transcript line")
	ErrModelUnavailable    = errors.New("model unavailable")
	ErrModelRequest        = errors.New("model request failed")
	ErrUnparseableResponse = errors.New("unparseable model output")
	ErrEmptyTextSegment    = errors.New("no matching transcript text")
	ErrBoundaryViolation   = errors.New("segment outside media bounds")
	ErrRelocation          = errors.New("clip relocation failed")
	ErrMissingPrerequisite = errors.New("missing prerequisite")
	ErrConfiguration       = errors.New("configuration error")
	ErrExternalTool        = errors.New("external tool error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker so callers can classify it with errors.Is. The
// marker should be one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Recoverable reports whether err only affects a single segment and the
// batch it belongs to should continue.
func Recoverable(err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrParse),
		errors.Is(err, ErrEmptyTextSegment),
		errors.Is(err, ErrBoundaryViolation),
		errors.Is(err, ErrRelocation):
		return true
	default:
		return false
	}
}

// ModelRequestError carries the transport details of a failed backend call.
type ModelRequestError struct {
	Backend    string
	StatusCode int
	Body       string
	Err        error
}

func (e *ModelRequestError) Error() string {
	var b strings.Builder
	b.WriteString(e.Backend)
	b.WriteString(" request")
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, ": http %d", e.StatusCode)
	}
	if body := strings.TrimSpace(e.Body); body != "" {
		b.WriteString(": ")
		b.WriteString(body)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ModelRequestError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrModelRequest}
	}
	return []error{ErrModelRequest, e.Err}
}

// UnparseableResponseError keeps the raw model output for diagnosis.
type UnparseableResponseError struct {
	Raw string
	Err error
}

func (e *UnparseableResponseError) Error() string {
	msg := "unparseable model output"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg + " (raw: " + Snippet(e.Raw, 160) + ")"
}

func (e *UnparseableResponseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUnparseableResponse}
	}
	return []error{ErrUnparseableResponse, e.Err}
}

// Snippet collapses whitespace and truncates s to limit runes.
func Snippet(s string, limit int) string {
	clean := strings.Join(strings.Fields(s), " ")
	if clean == "" {
		return "<empty>"
	}
	runes := []rune(clean)
	if limit > 0 && len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return clean
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
