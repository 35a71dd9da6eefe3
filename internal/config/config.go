// Package config exposes the externally supplied tuning knobs of the
// resolution pipeline through viper. The core consumes these values; it
// never writes them.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Configuration keys. All overridable via config file, environment or CLI.
const (
	KeySimilarity = "resolver.similarity"
	KeyTokenMatch = "resolver.tokenmatch"
	KeyDelay      = "resolver.delay"
	KeyTimeout    = "resolver.timeout"
	KeyCacheTTL   = "cache.ttl"
	KeyCacheDB    = "cache.dbfile"
)

// SetDefaults registers the default values. The thresholds are tuned
// constants carried over from production; they are configuration, not
// derived values.
func SetDefaults() {
	viper.SetDefault(KeySimilarity, 0.35)
	viper.SetDefault(KeyTokenMatch, 0.65)
	viper.SetDefault(KeyDelay, "500ms")
	viper.SetDefault(KeyTimeout, "15s")
	viper.SetDefault(KeyCacheTTL, "168h")
	viper.SetDefault(KeyCacheDB, "./kitaplik.db")
}

// SimilarityThreshold is the character-level ratio above which a candidate
// is accepted by the validator.
func SimilarityThreshold() float64 {
	return viper.GetFloat64(KeySimilarity)
}

// TokenMatchThreshold is the token-containment ratio above which a
// candidate is accepted by the validator.
func TokenMatchThreshold() float64 {
	return viper.GetFloat64(KeyTokenMatch)
}

// RequestDelay is the pause enforced between sequential calls to the
// primary catalog during the query cascade.
func RequestDelay() time.Duration {
	d := viper.GetDuration(KeyDelay)
	if d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// RequestTimeout is the per-HTTP-call timeout for adapter requests.
func RequestTimeout() time.Duration {
	d := viper.GetDuration(KeyTimeout)
	if d <= 0 {
		return 15 * time.Second
	}
	return d
}

// CacheTTL is how long a cached resolution stays fresh. Expiry is checked
// at read time; nothing evicts in the background.
func CacheTTL() time.Duration {
	d := viper.GetDuration(KeyCacheTTL)
	if d <= 0 {
		return 168 * time.Hour
	}
	return d
}

// CacheDBFile is the path of the sqlite cache database.
func CacheDBFile() string {
	return viper.GetString(KeyCacheDB)
}
