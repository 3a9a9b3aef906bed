package store

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	if err := s.Save(ctx, StoredAgent{ID: "a1", Blob: []byte(`{}`), CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, StoredAgent{ID: "a2", Blob: []byte(`{}`), CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("save: %v", err)
	}

	all, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 records, got %d", len(all))
	}

	if err := s.Delete(ctx, "a1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	all, err = s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if len(all) != 1 || all[0].ID != "a2" {
		t.Fatalf("expected only a2 remaining, got %#v", all)
	}
}

func TestMemoryStoreSaveOverwrites(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	s.Save(ctx, StoredAgent{ID: "a1", Blob: []byte(`{"v":1}`), CreatedAt: now, UpdatedAt: now})
	s.Save(ctx, StoredAgent{ID: "a1", Blob: []byte(`{"v":2}`), CreatedAt: now, UpdatedAt: now})

	all, _ := s.LoadAll(ctx)
	if len(all) != 1 {
		t.Fatalf("expected single record after overwrite, got %d", len(all))
	}
	if string(all[0].Blob) != `{"v":2}` {
		t.Fatalf("expected latest blob, got %s", all[0].Blob)
	}
}
