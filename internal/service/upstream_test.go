package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tidwall/gjson"
)

func TestInvokeReturnsBodyOn200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name": "test", "valid": true}`))
	}))
	defer srv.Close()

	client := NewUpstreamClient(5 * time.Second)
	payload, isErr := client.Invoke(context.Background(), srv.URL+"/?q={}", "demo")
	if isErr {
		t.Fatalf("unexpected error payload: %s", payload)
	}
	if gjson.GetBytes(payload, "name").String() != "test" {
		t.Fatalf("unexpected payload: %s", payload)
	}
}

func TestInvokeSubstitutesAndEscapesQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewUpstreamClient(5 * time.Second)
	if payload, isErr := client.Invoke(context.Background(), srv.URL+"/?q={}", "a b&c"); isErr {
		t.Fatalf("unexpected error payload: %s", payload)
	}
	if gotQuery != "a b&c" {
		t.Fatalf("query arrived as %q, want %q", gotQuery, "a b&c")
	}
}

func TestInvokeNon200BecomesErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewUpstreamClient(5 * time.Second)
	payload, isErr := client.Invoke(context.Background(), srv.URL+"/?q={}", "demo")
	if !isErr {
		t.Fatalf("expected error payload, got %s", payload)
	}
	if got := gjson.GetBytes(payload, "error").String(); got != "HTTP 500" {
		t.Fatalf("error = %q, want HTTP 500", got)
	}
}

func TestInvokeInvalidJSONBecomesErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	client := NewUpstreamClient(5 * time.Second)
	payload, isErr := client.Invoke(context.Background(), srv.URL+"/?q={}", "demo")
	if !isErr {
		t.Fatalf("expected error payload, got %s", payload)
	}
	if got := gjson.GetBytes(payload, "error").String(); got != "Invalid JSON response" {
		t.Fatalf("error = %q, want Invalid JSON response", got)
	}
}

func TestInvokeTimeoutBecomesErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewUpstreamClient(50 * time.Millisecond)
	payload, isErr := client.Invoke(context.Background(), srv.URL+"/?q={}", "demo")
	if !isErr {
		t.Fatalf("expected error payload, got %s", payload)
	}
	if got := gjson.GetBytes(payload, "error").String(); got != "Request timeout" {
		t.Fatalf("error = %q, want Request timeout", got)
	}
}

func TestInvokeTransportErrorBecomesErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewUpstreamClient(time.Second)
	payload, isErr := client.Invoke(context.Background(), srv.URL+"/?q={}", "demo")
	if !isErr {
		t.Fatalf("expected error payload, got %s", payload)
	}
	if gjson.GetBytes(payload, "error").String() == "" {
		t.Fatalf("transport error lost its message: %s", payload)
	}
}
