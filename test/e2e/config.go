package e2e

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/codeSantiago/nospace/pkg/config"
)

// StoreType identifies a metadata store backend under test.
type StoreType string

const (
	StoreMemory StoreType = "memory"
	StoreSQLite StoreType = "sqlite"
	StoreBadger StoreType = "badger"
)

// TestConfig describes one backend combination the suite runs against.
// Every combination mirrors the physical tree onto a local filesystem
// directory; the S3 mirror needs a real bucket and keeps its coverage in
// the mirror package's integration tests.
type TestConfig struct {
	// Name is the subtest name for this combination.
	Name string

	// Store selects the metadata store backend.
	Store StoreType

	// Persistent reports whether metadata survives a store close and
	// reopen. Only persistent combinations run the reopen scenarios.
	Persistent bool
}

// String returns a human-readable description of the configuration.
func (c *TestConfig) String() string {
	return fmt.Sprintf("%s/filesystem", c.Store)
}

// StoreSection builds the store configuration the factory consumes,
// pointing disk-backed stores at paths under dir.
func (c *TestConfig) StoreSection(t *testing.T, dir string) *config.StoreConfig {
	t.Helper()

	section := &config.StoreConfig{Type: string(c.Store)}
	switch c.Store {
	case StoreMemory:
		// No settings needed.
	case StoreSQLite:
		section.SQLite = map[string]any{"path": filepath.Join(dir, "metadata.db")}
	case StoreBadger:
		section.Badger = map[string]any{"db_path": filepath.Join(dir, "badger")}
	default:
		t.Fatalf("Unknown store type: %s", c.Store)
	}
	return section
}

// AllConfigurations returns the backend combinations every scenario runs on.
func AllConfigurations() []*TestConfig {
	return []*TestConfig{
		{Name: "memory-filesystem", Store: StoreMemory},
		{Name: "sqlite-filesystem", Store: StoreSQLite, Persistent: true},
		{Name: "badger-filesystem", Store: StoreBadger, Persistent: true},
	}
}

// PersistentConfigurations returns the combinations whose metadata
// survives a close and reopen of the store.
func PersistentConfigurations() []*TestConfig {
	var configs []*TestConfig
	for _, c := range AllConfigurations() {
		if c.Persistent {
			configs = append(configs, c)
		}
	}
	return configs
}
