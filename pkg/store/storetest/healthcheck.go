package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// RunHealthcheckTests executes the health and lifecycle tests.
func (suite *StoreTestSuite) RunHealthcheckTests(t *testing.T) {
	t.Run("Healthy", suite.testHealthcheckHealthy)
	t.Run("CancelledContext", suite.testHealthcheckCancelledContext)
}

func (suite *StoreTestSuite) testHealthcheckHealthy(t *testing.T) {
	store := suite.NewStore()

	require.NoError(t, store.Healthcheck(context.Background()))
}

func (suite *StoreTestSuite) testHealthcheckCancelledContext(t *testing.T) {
	store := suite.NewStore()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, store.Healthcheck(ctx))
}
