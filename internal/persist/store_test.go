package persist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pkt.systems/promptdeck/schema"
)

func TestStoreSaveAndLoad(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	transcript := Transcript{
		SessionID: "s1",
		Name:      "alpha",
		Provider:  "ollama",
		Messages: []schema.Message{
			{ID: "m1", Role: schema.RoleUser, Content: "hello", Timestamp: time.Now().UTC()},
			{ID: "m2", Role: schema.RoleAssistant, Content: "hi", Timestamp: time.Now().UTC()},
		},
		SavedAt: time.Now().UTC(),
	}
	if err := store.Save(transcript); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, ok, err := store.Load("s1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatalf("expected transcript found")
	}
	if loaded.Name != "alpha" || len(loaded.Messages) != 2 {
		t.Fatalf("unexpected transcript %+v", loaded)
	}
	if loaded.Messages[1].Content != "hi" {
		t.Fatalf("unexpected message %+v", loaded.Messages[1])
	}
}

func TestStoreLoadMissing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	_, ok, err := store.Load("ghost")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok {
		t.Fatalf("expected no transcript")
	}
}

func TestStoreSaveOverwritesAtomically(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	for i := 0; i < 3; i++ {
		transcript := Transcript{SessionID: "s1", Name: schema.SessionName(strings.Repeat("x", i+1))}
		if err := store.Save(transcript); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	loaded, ok, err := store.Load("s1")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if loaded.Name != "xxx" {
		t.Fatalf("expected last write to win, got %q", loaded.Name)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected no leftover temp files, got %d entries", len(entries))
	}
}

func TestStoreSanitizesSessionID(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Save(Transcript{SessionID: "../evil/id"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "..")); err != nil {
		t.Fatalf("stat parent: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || strings.Contains(entries[0].Name(), "/") {
		t.Fatalf("expected one sanitized file, got %v", entries)
	}
}
