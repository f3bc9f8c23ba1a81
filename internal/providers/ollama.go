package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pkt.systems/promptdeck/core"
	"pkt.systems/pslog"
)

// DefaultOllamaEndpoint is used when a provider omits one.
const DefaultOllamaEndpoint = "http://localhost:11434"

// OllamaConfig controls the ollama HTTP adapter.
type OllamaConfig struct {
	Endpoint string
	Model    string
	Client   *http.Client
}

// OllamaAdapter sends prompts to a local ollama server via /api/generate.
type OllamaAdapter struct {
	endpoint string
	model    string
	client   *http.Client
}

// NewOllamaAdapter constructs an OllamaAdapter.
func NewOllamaAdapter(cfg OllamaConfig) (*OllamaAdapter, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("ollama adapter: model is required")
	}
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		endpoint = DefaultOllamaEndpoint
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	return &OllamaAdapter{endpoint: endpoint, model: cfg.Model, client: client}, nil
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// Send performs one generate round-trip.
func (a *OllamaAdapter) Send(ctx context.Context, req core.SendRequest) (core.SendResult, error) {
	log := pslog.Ctx(ctx)
	body, err := json.Marshal(ollamaGenerateRequest{
		Model:  a.model,
		Prompt: req.Prompt,
		Stream: false,
	})
	if err != nil {
		return core.SendResult{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return core.SendResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := a.client.Do(httpReq)
	if err != nil {
		log.Warn("provider ollama request failed", "err", err)
		return core.SendResult{}, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return core.SendResult{}, fmt.Errorf("ollama response parse failed: %w", err)
	}
	if decoded.Error != "" {
		log.Warn("provider ollama error", "err", decoded.Error)
		return core.SendResult{}, fmt.Errorf("ollama: %s", decoded.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return core.SendResult{}, fmt.Errorf("ollama: unexpected status %d", resp.StatusCode)
	}
	log.Debug("provider ollama done", "model", a.model, "ms", time.Since(start).Milliseconds())
	return core.SendResult{Content: decoded.Response}, nil
}
