package models

import (
	"fmt"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// Database wraps the bolthold store holding the library collection.
type Database struct {
	store *bolthold.Store
}

// NewDatabase creates a new database connection
func NewDatabase(path string) (*Database, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{store: store}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.store.Close()
}

// GetAllItems retrieves the full collection
func (db *Database) GetAllItems() ([]*LibraryItem, error) {
	var items []*LibraryItem
	err := db.store.Find(&items, nil)
	return items, err
}

// GetItem retrieves a single item by its external id
func (db *Database) GetItem(externalID string) (*LibraryItem, error) {
	var item LibraryItem
	if err := db.store.Get(externalID, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpsertItem inserts or overwrites a single item
func (db *Database) UpsertItem(item *LibraryItem) error {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	item.UpdatedAt = time.Now()
	return db.store.Upsert(item.ExternalID, item)
}

// UpdateItems patches a subset of items in a single transaction.
// Used by the re-enrichment job; the collection is never half-written.
func (db *Database) UpdateItems(items []*LibraryItem) error {
	return db.store.Bolt().Update(func(tx *bbolt.Tx) error {
		for _, item := range items {
			item.UpdatedAt = time.Now()
			if err := db.store.TxUpsert(tx, item.ExternalID, item); err != nil {
				return fmt.Errorf("failed to update %s: %w", item.ExternalID, err)
			}
		}
		return nil
	})
}

// ReplaceAllItems atomically replaces the whole collection with the merged
// result of a sync run. Runs in one bbolt transaction so readers never see
// a partially written collection.
func (db *Database) ReplaceAllItems(items []*LibraryItem) error {
	return db.store.Bolt().Update(func(tx *bbolt.Tx) error {
		if err := db.store.TxDeleteMatching(tx, &LibraryItem{}, nil); err != nil {
			return fmt.Errorf("failed to clear collection: %w", err)
		}
		now := time.Now()
		for _, item := range items {
			if item.CreatedAt.IsZero() {
				item.CreatedAt = now
			}
			item.UpdatedAt = now
			if err := db.store.TxInsert(tx, item.ExternalID, item); err != nil {
				return fmt.Errorf("failed to insert %s: %w", item.ExternalID, err)
			}
		}
		return nil
	})
}

// GetLocalItems retrieves items that did not originate from the remote
// provider. These survive every sync merge unless a remote record shares
// their key.
func (db *Database) GetLocalItems() ([]*LibraryItem, error) {
	var items []*LibraryItem
	err := db.store.Find(&items,
		bolthold.Where("Provenance").In(ProvenanceLocalManual, ProvenanceManualEntry))
	return items, err
}

// CountItems returns the number of items in the collection
func (db *Database) CountItems() (int, error) {
	count, err := db.store.Count(&LibraryItem{}, nil)
	return int(count), err
}
