// internal/workers/application/check-duplicate-application/config.go
package checkduplicateapplication

import "time"

type Config struct {
	// Delay simulates the latency of reading the application collection.
	Delay time.Duration
}

func LoadConfig() *Config {
	return &Config{}
}
