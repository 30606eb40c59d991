package usecase

import (
	"context"
	"time"

	snaps "github.com/stellarsnaps/stellarsnaps-go"
)

// SnapRepository defines persistence for snaps.
type SnapRepository interface {
	Create(ctx context.Context, snap snaps.Snap) error
	Get(ctx context.Context, id string) (snaps.Snap, error)
	ListByCreator(ctx context.Context, creator string) ([]snaps.Snap, error)
	Delete(ctx context.Context, id string) error
}

// RegistryRepository defines persistence for registered domains.
type RegistryRepository interface {
	List(ctx context.Context) ([]snaps.RegistryEntry, error)
	Get(ctx context.Context, domain string) (snaps.RegistryEntry, error)
	Upsert(ctx context.Context, entry snaps.RegistryEntry) error
}

// EventPublisher broadcasts snap lifecycle events to interested listeners.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, event Event) error
}

// Cache is a string cache with per-entry TTL.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Event is one snap lifecycle notification.
type Event struct {
	Type string     `json:"type"` // snap.created, snap.deleted
	Snap snaps.Snap `json:"snap"`
}
