// Package store implements the persistence collaborator: loadAll/save/
// delete against an Agent's JSON-blob representation. A nil AgentStore
// is a valid, tolerated configuration — the kernel then runs in
// in-memory mode with no durability.
package store

import (
	"context"
	"time"
)

// AgentStore is the narrow persistence contract the kernel calls against:
// loadAll at startup, save fire-and-forget after every mutation, delete
// when an agent is removed.
type AgentStore interface {
	LoadAll(ctx context.Context) ([]StoredAgent, error)
	Save(ctx context.Context, agent StoredAgent) error
	Delete(ctx context.Context, id string) error
}

// StoredAgent is the persistence-layer view of an agent: the full record
// serialised as a single JSON blob, alongside the id and timestamps used
// for indexing. The credential travels inside Blob in clear text, at the
// same trust boundary as the store itself.
type StoredAgent struct {
	ID        string
	Blob      []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}
