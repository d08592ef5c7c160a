package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"reelmatch/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrTransient, "tmdb", "movie details", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"tmdb", "movie details", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestFailureClass(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{services.Wrap(services.ErrNotFound, "catalog", "recommend", "", nil), "not_found"},
		{services.Wrap(services.ErrMalformedResponse, "tmdb", "decode", "", nil), "malformed_response"},
		{services.Wrap(services.ErrRejected, "tmdb", "", "status 404", nil), "rejected"},
		{fmt.Errorf("outer: %w", services.ErrTimeout), "timeout"},
		{services.ErrConfiguration, "configuration"},
		{errors.New("connection reset"), "transient"},
	}
	for _, tc := range cases {
		if got := services.FailureClass(tc.err); got != tc.want {
			t.Errorf("FailureClass(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithMovieID(ctx, 603)
	ctx = services.WithOperation(ctx, "recommend")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.MovieIDFromContext(ctx); !ok || id != 603 {
		t.Fatalf("unexpected movie id: %v %v", id, ok)
	}
	if op, ok := services.OperationFromContext(ctx); !ok || op != "recommend" {
		t.Fatalf("unexpected operation: %v %v", op, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithOperation(ctx, "")
	ctx = services.WithRequestID(ctx, "")
	if _, ok := services.OperationFromContext(ctx); ok {
		t.Fatal("expected no operation value")
	}
	if _, ok := services.RequestIDFromContext(ctx); ok {
		t.Fatal("expected no request id value")
	}
	if _, ok := services.MovieIDFromContext(ctx); ok {
		t.Fatal("expected no movie id value")
	}
}
