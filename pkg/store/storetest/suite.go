// Package storetest provides a reusable conformance suite for
// store.MetadataStore implementations. It tests the interface contract, not
// implementation details, so every backend runs the same assertions.
package storetest

import (
	"testing"

	"github.com/codeSantiago/nospace/pkg/store"
)

// StoreTestSuite exercises a MetadataStore implementation against the full
// interface contract.
type StoreTestSuite struct {
	// NewStore is a factory that creates a fresh store for each test,
	// ensuring test isolation. The caller owns cleanup.
	NewStore func() store.MetadataStore
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(t *testing.T) {
	t.Run("Folders", suite.RunFolderTests)
	t.Run("Files", suite.RunFileTests)
	t.Run("Delete", suite.RunDeleteTests)
	t.Run("Healthcheck", suite.RunHealthcheckTests)
}
