// internal/workers/application/schedule-follow-up-tasks/config.go
package schedulefollowuptasks

import "time"

type Config struct {
	// Weekend lists the days skipped by business-day arithmetic.
	Weekend            []time.Weekday
	ReviewOffsetDays   int
	DecisionOffsetDays int
	// DecisionAssignee receives the decision email task.
	DecisionAssignee string
	// Delay simulates the latency of the scheduling call.
	Delay time.Duration
	Now   func() time.Time
}

func LoadConfig() *Config {
	return &Config{
		Weekend:            []time.Weekday{time.Saturday, time.Sunday},
		ReviewOffsetDays:   2,
		DecisionOffsetDays: 3,
		DecisionAssignee:   "admissions@brightfutureacademy.edu",
		Now:                func() time.Time { return time.Now().UTC() },
	}
}
