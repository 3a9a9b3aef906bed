package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.db")
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	now := time.Now().Truncate(time.Second)

	if err := s.Save(ctx, StoredAgent{ID: "a1", Blob: []byte(`{"name":"QA"}`), CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("save: %v", err)
	}

	all, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if len(all) != 1 || all[0].ID != "a1" {
		t.Fatalf("unexpected records: %#v", all)
	}
	if string(all[0].Blob) != `{"name":"QA"}` {
		t.Fatalf("unexpected blob: %s", all[0].Blob)
	}

	if err := s.Delete(ctx, "a1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	all, err = s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load all after delete: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected no records after delete, got %d", len(all))
	}
}

func TestSQLiteStoreSaveUpserts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.db")
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	now := time.Now().Truncate(time.Second)

	s.Save(ctx, StoredAgent{ID: "a1", Blob: []byte(`{"v":1}`), CreatedAt: now, UpdatedAt: now})
	s.Save(ctx, StoredAgent{ID: "a1", Blob: []byte(`{"v":2}`), CreatedAt: now, UpdatedAt: now})

	all, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if len(all) != 1 || string(all[0].Blob) != `{"v":2}` {
		t.Fatalf("expected single upserted record, got %#v", all)
	}
}
