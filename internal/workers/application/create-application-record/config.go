// internal/workers/application/create-application-record/config.go
package createapplicationrecord

import "time"

type Config struct {
	// Delay simulates the latency of the persistence call.
	Delay time.Duration
}

func LoadConfig() *Config {
	return &Config{}
}
