package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestHTTPClient_Generate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hola"}}]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL+"/", "key", "gpt-test", time.Second, zap.NewNop())
	out, err := c.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != "hola" {
		t.Fatalf("expected hola, got %q", out)
	}
	if got.Model != "gpt-test" || len(got.Messages) != 1 || got.Messages[0].Content != "prompt" {
		t.Fatalf("unexpected request: %+v", got)
	}
}

func TestHTTPClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "key", "m", time.Second, nil)
	if _, err := c.Generate(context.Background(), "p"); err == nil || !strings.Contains(err.Error(), "status=429") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestGeminiClient_Generate(t *testing.T) {
	var got geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-2.5-flash:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "gkey" {
			t.Errorf("unexpected api key header %q", r.Header.Get("x-goog-api-key"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Sum"},{"text":"mary"}]}}]}`))
	}))
	defer srv.Close()

	c := NewGeminiClient(srv.URL, "gkey", "", time.Second, zap.NewNop())
	out, err := c.Generate(context.Background(), "summarize this")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != "Summary" {
		t.Fatalf("expected joined parts, got %q", out)
	}
	if len(got.Contents) != 1 || got.Contents[0].Parts[0].Text != "summarize this" {
		t.Fatalf("unexpected request: %+v", got)
	}
}

func TestGeminiClient_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := NewGeminiClient(srv.URL, "gkey", "m", time.Second, nil)
	if _, err := c.Generate(context.Background(), "p"); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestGeminiClient_Blocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	}))
	defer srv.Close()

	c := NewGeminiClient(srv.URL, "gkey", "m", time.Second, nil)
	if _, err := c.Generate(context.Background(), "p"); err == nil || !strings.Contains(err.Error(), "SAFETY") {
		t.Fatalf("expected blocked error, got %v", err)
	}
}
