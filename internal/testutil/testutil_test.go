package testutil

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/sekitap/kitaplik/internal/config"
)

func TestSetTestConfig(t *testing.T) {
	SetTestConfig(t)

	assert.Equal(t, time.Millisecond, config.RequestDelay())
	assert.Equal(t, 0.35, config.SimilarityThreshold())
	assert.Equal(t, 168*time.Hour, config.CacheTTL())
}

func TestSetViperValue(t *testing.T) {
	SetTestConfig(t)

	SetViperValue(t, config.KeyCacheDB, "/tmp/test.db")
	assert.Equal(t, "/tmp/test.db", viper.GetString(config.KeyCacheDB))
}
