package output

import "time"

// ConfigPort reads settings. Typed getters fall back to defaultValue when the key is
// unset or does not parse.
type ConfigPort interface {
	Get(key string) string
	GetWithDefault(key string, defaultValue string) string
	GetBool(key string, defaultValue bool) bool
	GetInt(key string, defaultValue int) int
	GetDuration(key string, defaultValue time.Duration) time.Duration
}
