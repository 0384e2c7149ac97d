package e2e

import (
	"testing"
)

// runOnAllConfigs runs a test on every backend combination.
func runOnAllConfigs(t *testing.T, testFunc func(t *testing.T, tc *TestContext)) {
	t.Helper()

	for _, testConfig := range AllConfigurations() {
		t.Run(testConfig.Name, func(t *testing.T) {
			tc := NewTestContext(t, testConfig)
			defer tc.Cleanup()

			testFunc(t, tc)
		})
	}
}

// runOnPersistentConfigs runs a test on the combinations that survive a
// store close and reopen.
func runOnPersistentConfigs(t *testing.T, testFunc func(t *testing.T, tc *TestContext)) {
	t.Helper()

	for _, testConfig := range PersistentConfigurations() {
		t.Run(testConfig.Name, func(t *testing.T) {
			tc := NewTestContext(t, testConfig)
			defer tc.Cleanup()

			testFunc(t, tc)
		})
	}
}
