package providers

import (
	"context"
	"errors"
	"testing"

	"pkt.systems/promptdeck/core"
	"pkt.systems/promptdeck/internal/appconfig"
	"pkt.systems/promptdeck/schema"
)

func TestRegistryAdapterFor(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Register("demo", &ScriptedAdapter{})

	if _, err := registry.AdapterFor(context.Background(), "demo"); err != nil {
		t.Fatalf("adapter for demo: %v", err)
	}
	_, err := registry.AdapterFor(context.Background(), "ghost")
	if !errors.Is(err, schema.ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestFromConfigBuildsAdapters(t *testing.T) {
	registry, err := FromConfig([]appconfig.ProviderConfig{
		{Name: "codex", Kind: "exec", Command: "cat"},
		{Name: "demo", Kind: "scripted"},
		{Name: "auto", Kind: "auto"},
	}, "demo", nil)
	if err != nil {
		t.Fatalf("from config: %v", err)
	}
	for _, name := range []schema.ProviderID{"codex", "demo", "auto"} {
		if _, err := registry.AdapterFor(context.Background(), name); err != nil {
			t.Fatalf("adapter for %q: %v", name, err)
		}
	}
}

func TestFromConfigRejectsAutoWithoutConcreteProvider(t *testing.T) {
	_, err := FromConfig([]appconfig.ProviderConfig{
		{Name: "auto", Kind: "auto"},
	}, "auto", nil)
	if err == nil {
		t.Fatalf("expected error for auto-only config")
	}
}

func TestAutoAdapterRoutesByTask(t *testing.T) {
	registry, err := FromConfig([]appconfig.ProviderConfig{
		{Name: "codex", Kind: "scripted"},
		{Name: "demo", Kind: "scripted"},
		{Name: "auto", Kind: "auto"},
	}, "demo", nil)
	if err != nil {
		t.Fatalf("from config: %v", err)
	}
	adapter, err := registry.AdapterFor(context.Background(), "auto")
	if err != nil {
		t.Fatalf("adapter for auto: %v", err)
	}
	auto, ok := adapter.(*AutoAdapter)
	if !ok {
		t.Fatalf("expected auto adapter, got %T", adapter)
	}
	if _, err := auto.Send(context.Background(), core.SendRequest{Prompt: "implement a stack"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := auto.Send(context.Background(), core.SendRequest{Prompt: "hello there"}); err != nil {
		t.Fatalf("send fallback: %v", err)
	}
	stats := auto.Stats()
	if stats.TotalRouted != 2 {
		t.Fatalf("expected two decisions, got %d", stats.TotalRouted)
	}
	if stats.ByProvider["codex"] != 1 || stats.ByProvider["demo"] != 1 {
		t.Fatalf("unexpected routing split %+v", stats.ByProvider)
	}
}
