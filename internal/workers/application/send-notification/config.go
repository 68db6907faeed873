// internal/workers/application/send-notification/config.go
package sendnotification

import "time"

type Config struct {
	FromEmail  string
	SchoolName string
	// Simulated latency of each delivery.
	ConfirmationDelay time.Duration
	AdminDelay        time.Duration
	Now               func() time.Time
}

func LoadConfig() *Config {
	return &Config{
		FromEmail:  "admissions@brightfutureacademy.edu",
		SchoolName: "Bright Future Academy",
		Now:        func() time.Time { return time.Now().UTC() },
	}
}
