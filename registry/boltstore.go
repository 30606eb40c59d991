package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	snaps "github.com/stellarsnaps/stellarsnaps-go"
)

var (
	bucketRegistry = []byte("registry")

	keyListing   = []byte("listing")
	keyFetchedAt = []byte("fetched_at")
)

// BoltStore persists the registry listing in a bbolt database so trust
// decisions survive restarts in offline-capable deployments.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("registry: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("registry: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRegistry)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("registry: create bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// Load returns the persisted listing and when it was fetched. A database that
// has never been written returns an empty listing and zero time.
func (s *BoltStore) Load() (snaps.RegistryListing, time.Time, error) {
	var listing snaps.RegistryListing
	var fetchedAt time.Time

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRegistry)

		if data := b.Get(keyListing); data != nil {
			if err := json.Unmarshal(data, &listing); err != nil {
				return fmt.Errorf("boltstore: decode listing: %w", err)
			}
		}
		if data := b.Get(keyFetchedAt); data != nil {
			if err := fetchedAt.UnmarshalText(data); err != nil {
				return fmt.Errorf("boltstore: decode fetched_at: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return snaps.RegistryListing{}, time.Time{}, err
	}
	return listing, fetchedAt, nil
}

// Save overwrites the persisted listing.
func (s *BoltStore) Save(listing snaps.RegistryListing, fetchedAt time.Time) error {
	data, err := json.Marshal(listing)
	if err != nil {
		return fmt.Errorf("boltstore: encode listing: %w", err)
	}
	ts, err := fetchedAt.MarshalText()
	if err != nil {
		return fmt.Errorf("boltstore: encode fetched_at: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRegistry)
		if err := b.Put(keyListing, data); err != nil {
			return fmt.Errorf("boltstore: put listing: %w", err)
		}
		if err := b.Put(keyFetchedAt, ts); err != nil {
			return fmt.Errorf("boltstore: put fetched_at: %w", err)
		}
		return nil
	})
}
