// Package instance identifies the running process for diagnostic output in
// notification bodies.
package instance

import (
	"fmt"
	"os"
	"runtime"
)

// instanceIDEnv overrides the detected instance id, for deployments where
// the platform assigns one (e.g. an EC2 instance id or container name).
const instanceIDEnv = "KLAXON_INSTANCE_ID"

// Metadata holds identifying attributes of the running instance
type Metadata struct {
	ID       string
	Hostname string
	PID      int
	Runtime  string
	OS       string
	Arch     string
}

// Collect gathers metadata about the current process
func Collect() *Metadata {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	id := os.Getenv(instanceIDEnv)
	if id == "" {
		id = hostname
	}

	return &Metadata{
		ID:       id,
		Hostname: hostname,
		PID:      os.Getpid(),
		Runtime:  runtime.Version(),
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
	}
}

// InstanceID returns the instance identifier
func (m *Metadata) InstanceID() string {
	return m.ID
}

// Detail returns a one-line description of the instance
func (m *Metadata) Detail() string {
	return fmt.Sprintf("host=%s pid=%d runtime=%s os=%s arch=%s",
		m.Hostname, m.PID, m.Runtime, m.OS, m.Arch)
}
