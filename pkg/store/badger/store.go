// Package badger provides the embedded key-value MetadataStore
// implementation, backed by BadgerDB.
package badger

import (
	"context"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

// BadgerMetadataStore implements store.MetadataStore using BadgerDB for
// persistence.
//
// This backend suits single-node deployments that need metadata to survive
// restarts without running a separate database. Folder and file records are
// stored as JSON values under namespaced keys, with separate index entries
// for parent-child relationships and for the (depth, name, owner) lookup
// (see keys.go for the key schema).
//
// Thread Safety:
// Safe for concurrent use. Every operation runs inside a single BadgerDB
// transaction, so multi-key updates (a folder record plus its index
// entries) commit or fail together.
type BadgerMetadataStore struct {
	db *badger.DB
}

// BadgerMetadataStoreConfig contains configuration for creating a BadgerDB
// metadata store.
type BadgerMetadataStoreConfig struct {
	// DBPath is the directory where BadgerDB stores its files. Ignored when
	// InMemory is set.
	DBPath string `mapstructure:"db_path"`

	// InMemory keeps the whole database in memory. Nothing survives Close.
	InMemory bool `mapstructure:"in_memory"`

	// BadgerOptions allows customization of BadgerDB behavior.
	// If nil, defaults tuned for small metadata records are used.
	BadgerOptions *badger.Options
}

// NewBadgerMetadataStore opens (creating if necessary) a BadgerDB database
// per the given configuration.
//
// The returned store is immediately ready for use and safe for concurrent
// access from multiple goroutines.
func NewBadgerMetadataStore(ctx context.Context, config BadgerMetadataStoreConfig) (*BadgerMetadataStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var opts badger.Options
	if config.BadgerOptions != nil {
		opts = *config.BadgerOptions
	} else {
		// Badger rejects a directory in disk-less mode.
		dir := config.DBPath
		if config.InMemory {
			dir = ""
		}
		opts = badger.DefaultOptions(dir)
		opts = opts.WithInMemory(config.InMemory)
		opts = opts.WithLoggingLevel(badger.WARNING)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", config.DBPath, err)
	}

	return &BadgerMetadataStore{db: db}, nil
}

// Healthcheck reports whether the database is still open and the context
// still live.
func (s *BadgerMetadataStore) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return fmt.Errorf("badger database is closed")
	}
	return nil
}

// Close closes the BadgerDB database and releases all resources. After
// calling Close, the store must not be used.
func (s *BadgerMetadataStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close BadgerDB: %w", err)
	}
	return nil
}
