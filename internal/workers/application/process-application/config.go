// internal/workers/application/process-application/config.go
package processapplication

import "time"

type Config struct {
	EstimatedProcessingTime string
	// UpdateDelay and StatusDelay simulate the latency of a status update and lookup.
	UpdateDelay time.Duration
	StatusDelay time.Duration
	Now         func() time.Time
}

func LoadConfig() *Config {
	return &Config{
		EstimatedProcessingTime: "2-3 business days",
		Now:                     func() time.Time { return time.Now().UTC() },
	}
}
