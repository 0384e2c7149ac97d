// Package mirrortest provides a reusable conformance suite for
// mirror.PhysicalMirror implementations. It tests the interface contract,
// not implementation details, so every backend runs the same assertions.
package mirrortest

import (
	"context"
	"testing"

	"github.com/codeSantiago/nospace/pkg/mirror"
)

// MirrorTestSuite exercises a PhysicalMirror implementation against the
// full interface contract.
type MirrorTestSuite struct {
	// NewMirror is a factory that creates a fresh, empty mirror for each
	// test, ensuring test isolation. The caller owns cleanup.
	NewMirror func() mirror.PhysicalMirror
}

// Run executes all tests in the suite.
func (suite *MirrorTestSuite) Run(t *testing.T) {
	t.Run("Directories", suite.RunDirectoryTests)
	t.Run("Moves", suite.RunMoveTests)
	t.Run("Archives", suite.RunArchiveTests)
	t.Run("Healthcheck", suite.RunHealthcheckTests)
}

// testContext returns a standard test context.
func testContext() context.Context {
	return context.Background()
}
