package asr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ItzR3NO/R3VIB3-MacOS/internal/logging"
)

func writeTempWav(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "take.wav")
	if err := os.WriteFile(path, []byte("RIFF...."), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTranscribeExtractsText(t *testing.T) {
	var lang atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		lang.Store(r.FormValue("language"))
		_, _ = w.Write([]byte(`{"result":{"segments":[{"text":"hello from remote"}]}}`))
	}))
	defer server.Close()

	client, err := New(Options{
		Endpoint:       server.URL,
		Language:       "en",
		TextPath:       "result.segments[0].text",
		MaxRetry:       1,
		RequestTimeout: 2,
	}, &http.Client{Timeout: time.Second}, logging.Nop())
	if err != nil {
		t.Fatal(err)
	}

	text, raw, err := client.Transcribe(context.Background(), writeTempWav(t))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "hello from remote" {
		t.Fatalf("text = %q", text)
	}
	if len(raw) == 0 {
		t.Fatal("raw body not returned")
	}
	if got, _ := lang.Load().(string); got != "en" {
		t.Fatalf("language form field = %q", got)
	}
}

func TestTranscribeRetryExhausted(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("fail"))
	}))
	defer server.Close()

	client, err := New(Options{
		Endpoint:       server.URL,
		MaxRetry:       2,
		RetryBaseDelay: 0,
		RequestTimeout: 2,
	}, &http.Client{Timeout: time.Second}, logging.Nop())
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = client.Transcribe(context.Background(), writeTempWav(t))
	var re *RetryExhaustedError
	if !errors.As(err, &re) {
		t.Fatalf("expected RetryExhaustedError, got %T: %v", err, err)
	}
	if re.Attempts != 2 || re.MaxRetry != 2 {
		t.Fatalf("attempts=%d maxRetry=%d", re.Attempts, re.MaxRetry)
	}
	if string(re.LastBody) != "fail" {
		t.Fatalf("last body = %q", re.LastBody)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Fatalf("server hit %d times, want 2", got)
	}
}

func TestTranscribeSucceedsAfterRetry(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"text":"second try"}`))
	}))
	defer server.Close()

	client, err := New(Options{
		Endpoint:       server.URL,
		MaxRetry:       3,
		RetryBaseDelay: 0,
		RequestTimeout: 2,
	}, &http.Client{Timeout: time.Second}, logging.Nop())
	if err != nil {
		t.Fatal(err)
	}

	text, _, err := client.Transcribe(context.Background(), writeTempWav(t))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "second try" {
		t.Fatalf("text = %q", text)
	}
}

func TestInvalidExtraJSON(t *testing.T) {
	_, err := New(Options{Endpoint: "http://x", ExtraJSON: "{not json"}, nil, logging.Nop())
	if err == nil {
		t.Fatal("expected error for invalid extra JSON")
	}
}
