// internal/workers/application/check-priority-routing/config.go
package checkpriorityrouting

// Config holds the static grade to admissions officer table.
type Config struct {
	OfficersByGrade map[string]string
	DefaultOfficer  string
}

const DefaultOfficer = "admissions@brightfutureacademy.edu"

func LoadConfig() *Config {
	officers := map[string]string{
		"kindergarten": "sarah.johnson@brightfutureacademy.edu",
		"grade1":       "sarah.johnson@brightfutureacademy.edu",
		"grade2":       "sarah.johnson@brightfutureacademy.edu",
	}
	for _, g := range []string{"grade3", "grade4", "grade5"} {
		officers[g] = "michael.brown@brightfutureacademy.edu"
	}
	for _, g := range []string{"grade6", "grade7", "grade8"} {
		officers[g] = "lisa.davis@brightfutureacademy.edu"
	}
	for _, g := range []string{"grade9", "grade10", "grade11", "grade12"} {
		officers[g] = "robert.wilson@brightfutureacademy.edu"
	}

	return &Config{
		OfficersByGrade: officers,
		DefaultOfficer:  DefaultOfficer,
	}
}
