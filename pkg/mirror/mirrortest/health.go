package mirrortest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// RunHealthcheckTests executes the lifecycle tests.
func (suite *MirrorTestSuite) RunHealthcheckTests(t *testing.T) {
	t.Run("Healthy", suite.testHealthcheckHealthy)
	t.Run("CancelledContext", suite.testHealthcheckCancelledContext)
}

func (suite *MirrorTestSuite) testHealthcheckHealthy(t *testing.T) {
	m := suite.NewMirror()

	require.NoError(t, m.Healthcheck(testContext()))
}

func (suite *MirrorTestSuite) testHealthcheckCancelledContext(t *testing.T) {
	m := suite.NewMirror()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, m.Healthcheck(ctx))
}
