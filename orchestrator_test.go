package promptdeck

import (
	"context"
	"testing"
	"time"

	"pkt.systems/promptdeck/internal/appconfig"
	"pkt.systems/promptdeck/internal/eventbus"
	"pkt.systems/promptdeck/schema"
)

func testConfig(t *testing.T) appconfig.Config {
	t.Helper()
	return appconfig.Config{
		ConfigVersion: appconfig.CurrentConfigVersion,
		StateDir:      t.TempDir(),
		Service: appconfig.ServiceConfig{
			MaxConcurrent:   2,
			DefaultProvider: "demo",
		},
		Providers: []appconfig.ProviderConfig{
			{Name: "demo", Kind: "scripted"},
		},
	}
}

func TestOrchestratorEndToEnd(t *testing.T) {
	orch, err := New(testConfig(t), Deps{})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	events, cancel := orch.Subscribe()
	defer cancel()

	svc := orch.Service()
	created, err := svc.CreateSession(context.Background(), schema.CreateSessionRequest{Name: "alpha"})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if created.Session.Provider != "demo" {
		t.Fatalf("expected default provider, got %q", created.Session.Provider)
	}
	if _, err := svc.SendPrompt(context.Background(), schema.SendPromptRequest{
		SessionID: created.Session.ID,
		Prompt:    "hello",
	}); err != nil {
		t.Fatalf("send prompt: %v", err)
	}

	deadline := time.After(5 * time.Second)
	var sawAssistant bool
	for !sawAssistant {
		select {
		case event := <-events:
			if event.Type == eventbus.EventMessage && event.Message.Message.Role == schema.RoleAssistant {
				sawAssistant = true
			}
		case <-deadline:
			t.Fatalf("timed out waiting for assistant message event")
		}
	}

	// The transcript write trails the event emit slightly.
	waitDeadline := time.Now().Add(2 * time.Second)
	for {
		transcript, ok, err := orch.Transcript(created.Session.ID)
		if err != nil {
			t.Fatalf("transcript: %v", err)
		}
		if ok && len(transcript.Messages) >= 2 {
			break
		}
		if time.Now().After(waitDeadline) {
			t.Fatalf("expected persisted transcript, ok=%v", ok)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestOrchestratorProviders(t *testing.T) {
	orch, err := New(testConfig(t), Deps{})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	names := orch.Providers()
	if len(names) != 1 || names[0] != "demo" {
		t.Fatalf("unexpected providers %v", names)
	}
}
