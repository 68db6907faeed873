// internal/workers/application/validate-application-data/config.go
package validateapplicationdata

import "time"

type Config struct {
	// Now supplies "today" for the date-of-birth check.
	Now func() time.Time
	// EarliestBirthDate is the oldest accepted date of birth.
	EarliestBirthDate time.Time
}

func LoadConfig() *Config {
	return &Config{
		Now:               time.Now,
		EarliestBirthDate: time.Date(1950, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}
