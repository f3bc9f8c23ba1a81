package logx

import (
	"context"
	"testing"

	"pkt.systems/promptdeck/schema"
)

func TestContextWithSessionRoundTrip(t *testing.T) {
	ctx := ContextWithSession(context.Background(), "s1")
	if got, ok := ctx.Value(sessionKey).(schema.SessionID); !ok || got != "s1" {
		t.Fatalf("expected session marker, got %v", ctx.Value(sessionKey))
	}
	if ctx := ContextWithSession(context.Background(), ""); ctx.Value(sessionKey) != nil {
		t.Fatalf("expected no marker for empty session")
	}
}

func TestWithSessionReturnsLogger(t *testing.T) {
	if WithSession(context.Background(), "s1") == nil {
		t.Fatalf("expected logger")
	}
	ctx := ContextWithSession(context.Background(), "s1")
	if WithSession(ctx, "s1") == nil {
		t.Fatalf("expected logger for marked context")
	}
}

func TestWithProviderReturnsLogger(t *testing.T) {
	log := Ctx(context.Background())
	if WithProvider(log, "ollama") == nil {
		t.Fatalf("expected logger")
	}
	if WithProvider(log, "") == nil {
		t.Fatalf("expected logger for empty provider")
	}
}
