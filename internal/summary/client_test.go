package summary

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const validBody = `{"candidates":[{"content":{"parts":[{"text":"  - all good\n"}]}}]}`

func newTestClient(url string) *Client {
	return NewClient(
		WithBaseURL(url),
		WithAPIKey("test-key"),
		WithSleep(func(time.Duration) {}),
	)
}

func TestSummarizeSuccess(t *testing.T) {
	var requests atomic.Int32
	var gotPath, gotKey, gotBody string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, validBody)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	got, err := client.Summarize(context.Background(), "REPORT TEXT HERE")
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if got != "- all good" {
		t.Errorf("summary = %q, want trimmed %q", got, "- all good")
	}
	if requests.Load() != 1 {
		t.Errorf("made %d requests, want 1", requests.Load())
	}
	if want := "/models/" + DefaultModel + ":generateContent"; gotPath != want {
		t.Errorf("path = %q, want %q", gotPath, want)
	}
	if gotKey != "test-key" {
		t.Errorf("key = %q, want %q", gotKey, "test-key")
	}
	if !strings.Contains(gotBody, "REPORT TEXT HERE") {
		t.Errorf("request body does not embed the report: %s", gotBody)
	}
	if !strings.Contains(gotBody, `"role":"user"`) {
		t.Errorf("request body missing user role: %s", gotBody)
	}
}

func TestSummarizeRetriesTransientFailures(t *testing.T) {
	var requests atomic.Int32
	var sleeps atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) <= 2 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, validBody)
	}))
	defer srv.Close()

	client := NewClient(
		WithBaseURL(srv.URL),
		WithAPIKey("test-key"),
		WithSleep(func(time.Duration) { sleeps.Add(1) }),
	)

	got, err := client.Summarize(context.Background(), "report")
	if err != nil {
		t.Fatalf("Summarize returned error after transient failures: %v", err)
	}
	if got != "- all good" {
		t.Errorf("summary = %q", got)
	}
	if requests.Load() != 3 {
		t.Errorf("made %d requests, want exactly 3", requests.Load())
	}
	if sleeps.Load() != 2 {
		t.Errorf("slept %d times, want 2 (between attempts only)", sleeps.Load())
	}
}

func TestSummarizeExhaustsRetries(t *testing.T) {
	var requests atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Summarize(context.Background(), "report")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if requests.Load() != 3 {
		t.Errorf("made %d requests, want 3", requests.Load())
	}
	if !strings.Contains(err.Error(), "after 3 attempts") {
		t.Errorf("error %q does not mention attempt count", err)
	}
	if !strings.Contains(err.Error(), "HTTP 500") {
		t.Errorf("error %q does not carry the last failure", err)
	}
}

func TestSummarizeMissingAPIKey(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		io.WriteString(w, validBody)
	}))
	defer srv.Close()

	t.Setenv(APIKeyEnv, "")

	client := NewClient(WithBaseURL(srv.URL), WithSleep(func(time.Duration) {}))
	_, err := client.Summarize(context.Background(), "report")
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
	if requests.Load() != 0 {
		t.Errorf("made %d network calls without a key, want 0", requests.Load())
	}
}

func TestSummarizeMalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{{{`},
		{"no candidates", `{"candidates":[]}`},
		{"no parts", `{"candidates":[{"content":{"parts":[]}}]}`},
		{"empty text", `{"candidates":[{"content":{"parts":[{"text":"   "}]}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requests atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				requests.Add(1)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			client := newTestClient(srv.URL)
			_, err := client.Summarize(context.Background(), "report")
			if err == nil {
				t.Fatal("expected error for malformed response")
			}
			if requests.Load() != 3 {
				t.Errorf("made %d requests, want 3 (malformed responses are retried)", requests.Load())
			}
		})
	}
}

func TestSummarizeCancelledContext(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		io.WriteString(w, validBody)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newTestClient(srv.URL)
	_, err := client.Summarize(ctx, "report")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if requests.Load() != 0 {
		t.Errorf("made %d requests under cancelled context, want 0", requests.Load())
	}
}

func TestWithModel(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		io.WriteString(w, validBody)
	}))
	defer srv.Close()

	client := NewClient(
		WithBaseURL(srv.URL),
		WithAPIKey("k"),
		WithModel("gemini-2.5-pro"),
		WithSleep(func(time.Duration) {}),
	)
	if _, err := client.Summarize(context.Background(), "r"); err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if want := "/models/gemini-2.5-pro:generateContent"; gotPath != want {
		t.Errorf("path = %q, want %q", gotPath, want)
	}

	// Blank model keeps the default.
	c := NewClient(WithModel("  "))
	if c.model != DefaultModel {
		t.Errorf("blank model changed default to %q", c.model)
	}
}
