package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pkt.systems/promptdeck/core"
)

func TestOllamaAdapterSend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req ollamaGenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Stream {
			t.Errorf("expected stream disabled")
		}
		if req.Model != "llama3.2" || req.Prompt != "hello" {
			t.Errorf("unexpected request %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "hi there"})
	}))
	defer server.Close()

	adapter, err := NewOllamaAdapter(OllamaConfig{Endpoint: server.URL, Model: "llama3.2"})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	result, err := adapter.Send(context.Background(), core.SendRequest{Prompt: "hello"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if result.Content != "hi there" {
		t.Fatalf("unexpected content %q", result.Content)
	}
}

func TestOllamaAdapterServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "model not found"})
	}))
	defer server.Close()

	adapter, err := NewOllamaAdapter(OllamaConfig{Endpoint: server.URL, Model: "missing"})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	_, err = adapter.Send(context.Background(), core.SendRequest{Prompt: "hello"})
	if err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Fatalf("expected model error, got %v", err)
	}
}

func TestOllamaAdapterRequiresModel(t *testing.T) {
	if _, err := NewOllamaAdapter(OllamaConfig{}); err == nil {
		t.Fatalf("expected model requirement error")
	}
}

func TestOllamaAdapterUnreachable(t *testing.T) {
	adapter, err := NewOllamaAdapter(OllamaConfig{Endpoint: "http://127.0.0.1:1", Model: "llama3.2"})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	if _, err := adapter.Send(context.Background(), core.SendRequest{Prompt: "hello"}); err == nil {
		t.Fatalf("expected request failure")
	}
}
