package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestRetryable(t *testing.T) {
	cases := map[Kind]bool{
		KindMissingInput:       false,
		KindInvalidInput:       false,
		KindUpstream:           true,
		KindUpstreamShape:      true,
		KindResponseParse:      true,
		KindResponseValidation: true,
		KindTransport:          true,
		KindUnavailable:        false,
	}
	for kind, want := range cases {
		if got := kind.Retryable(); got != want {
			t.Errorf("%s.Retryable() = %v, want %v", kind, got, want)
		}
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{New(KindMissingInput, "No text provided"), http.StatusBadRequest},
		{New(KindInvalidInput, "too long"), http.StatusBadRequest},
		{Upstream(429, "", "Error from OpenAI API"), http.StatusTooManyRequests},
		{Upstream(0, "", "x"), http.StatusInternalServerError},
		{New(KindResponseParse, "x"), http.StatusInternalServerError},
		{New(KindUnavailable, "x"), http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		if got := tc.err.HTTPStatus(); got != tc.want {
			t.Errorf("%s: got %d, want %d", tc.err.Kind, got, tc.want)
		}
	}
}

func TestUpstreamFallbackMessage(t *testing.T) {
	if e := Upstream(500, "", "Error from OpenAI API"); e.Message != "Error from OpenAI API" {
		t.Fatalf("fallback not used: %q", e.Message)
	}
	if e := Upstream(401, "Incorrect API key", "Error from OpenAI API"); e.Message != "Incorrect API key" {
		t.Fatalf("upstream message not kept: %q", e.Message)
	}
}

func TestClassificationThroughWrapping(t *testing.T) {
	base := Wrap(KindTransport, "request failed", errors.New("connection refused"))
	wrapped := fmt.Errorf("translate: %w", base)
	if KindOf(wrapped) != KindTransport {
		t.Fatalf("KindOf did not see through wrapping")
	}
	if !IsRetryable(wrapped) {
		t.Fatalf("transport errors are retryable")
	}
	if StatusOf(wrapped) != http.StatusInternalServerError {
		t.Fatalf("unexpected status")
	}
	if MessageOf(wrapped) != "request failed" {
		t.Fatalf("unexpected message %q", MessageOf(wrapped))
	}
	if IsRetryable(errors.New("plain")) {
		t.Fatalf("untagged errors are not retryable")
	}
	if MessageOf(errors.New("plain")) != "Internal Server Error" {
		t.Fatalf("untagged errors should not leak details")
	}
}
