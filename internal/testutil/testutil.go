// Package testutil provides shared helpers for configuring the resolution
// pipeline in tests.
package testutil

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/sekitap/kitaplik/internal/config"
)

// SetTestConfig installs the production defaults with the cascade delay
// shrunk so tests do not sleep between query variants. Viper is reset when
// the test completes.
func SetTestConfig(t *testing.T) {
	t.Helper()

	viper.Reset()
	config.SetDefaults()
	viper.Set(config.KeyDelay, "1ms")

	t.Cleanup(viper.Reset)
}

// SetViperValue sets a viper configuration value and schedules restoration
// of the previous value when the test completes.
func SetViperValue(t *testing.T, key string, value any) {
	t.Helper()

	oldValue := viper.Get(key)
	hadValue := viper.IsSet(key)

	viper.Set(key, value)

	t.Cleanup(func() {
		if hadValue {
			viper.Set(key, oldValue)
		}
		// viper has no Unset, so a previously unset key stays set.
	})
}
