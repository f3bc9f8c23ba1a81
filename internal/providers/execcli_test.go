package providers

import (
	"context"
	"runtime"
	"strings"
	"testing"

	"pkt.systems/promptdeck/core"
)

func requireUnixShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a unix shell")
	}
}

func TestExecAdapterEchoesStdout(t *testing.T) {
	requireUnixShell(t)
	adapter, err := NewExecAdapter(ExecConfig{Command: "cat"})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	result, err := adapter.Send(context.Background(), core.SendRequest{Prompt: "hello world"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if result.Content != "hello world" {
		t.Fatalf("unexpected content %q", result.Content)
	}
}

func TestExecAdapterSurfacesStderr(t *testing.T) {
	requireUnixShell(t)
	adapter, err := NewExecAdapter(ExecConfig{
		Command: "sh",
		Args:    []string{"-c", "echo boom >&2; exit 1"},
	})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	_, err = adapter.Send(context.Background(), core.SendRequest{Prompt: "hello"})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}

func TestExecAdapterMissingBinary(t *testing.T) {
	adapter, err := NewExecAdapter(ExecConfig{Command: "definitely-not-a-binary-xyz"})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	if _, err := adapter.Send(context.Background(), core.SendRequest{Prompt: "hello"}); err == nil {
		t.Fatalf("expected start failure")
	}
}

func TestExecAdapterRequiresCommand(t *testing.T) {
	if _, err := NewExecAdapter(ExecConfig{}); err == nil {
		t.Fatalf("expected command requirement error")
	}
}
