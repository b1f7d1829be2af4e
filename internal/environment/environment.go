// Package environment exposes the active deployment profiles of the running
// process, e.g. "prod,aws". Profiles come from configuration and never
// change after startup.
package environment

import "strings"

// Service reports the active deployment profiles
type Service struct {
	profiles []string
}

// New creates a Service from the configured profile list
func New(profiles []string) *Service {
	clean := make([]string, 0, len(profiles))
	for _, p := range profiles {
		if p = strings.TrimSpace(p); p != "" {
			clean = append(clean, p)
		}
	}
	return &Service{profiles: clean}
}

// ActiveProfiles returns the active profiles joined with commas
func (s *Service) ActiveProfiles() string {
	return strings.Join(s.profiles, ",")
}
