package netx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPing(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		var gotMethod string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			w.WriteHeader(http.StatusNotFound)
		}))
		defer ts.Close()

		if err := Ping(context.Background(), ts.Client(), ts.URL); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotMethod != http.MethodHead {
			t.Fatalf("method = %q, want HEAD", gotMethod)
		}
	})

	t.Run("5xx -> error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer ts.Close()

		err := Ping(context.Background(), nil, ts.URL)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "ping failed: 502") {
			t.Fatalf("error = %q, want to contain 502", err.Error())
		}
	})

	t.Run("network error", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		ts.Close()

		err := Ping(context.Background(), nil, ts.URL)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if strings.Contains(err.Error(), "ping failed") {
			t.Fatalf("got wrong kind of error: %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		defer ts.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := Ping(ctx, nil, ts.URL)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("error = %v, want context.Canceled", err)
		}
	})
}
