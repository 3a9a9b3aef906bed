package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func setupMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresStoreDB(db), mock
}

func TestPostgresStoreSaveUpserts(t *testing.T) {
	store, mock := setupMockStore(t)
	now := time.Now()

	mock.ExpectExec("INSERT INTO agents").
		WithArgs("agent-1", []byte(`{"name":"QA"}`), now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Save(context.Background(), StoredAgent{
		ID: "agent-1", Blob: []byte(`{"name":"QA"}`), CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresStoreLoadAll(t *testing.T) {
	store, mock := setupMockStore(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "blob", "created_at", "updated_at"}).
		AddRow("agent-1", []byte(`{"name":"QA"}`), now, now).
		AddRow("agent-2", []byte(`{"name":"Dev"}`), now, now)
	mock.ExpectQuery("SELECT id, blob, created_at, updated_at FROM agents").WillReturnRows(rows)

	got, err := store.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 agents, got %d", len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresStoreDelete(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectExec("DELETE FROM agents WHERE id = \\$1").
		WithArgs("agent-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Delete(context.Background(), "agent-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
