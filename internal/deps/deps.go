// Package deps verifies the external binaries the pipeline shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names one external binary the pipeline needs.
type Requirement struct {
	Name        string
	Command     string
	Description string
}

// Status reports the availability of one requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Available   bool
	Detail      string
}

// CheckBinaries resolves each requirement on PATH and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		command := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     command,
			Description: strings.TrimSpace(req.Description),
		}
		switch {
		case command == "":
			status.Detail = "command not configured"
		default:
			if _, err := exec.LookPath(command); err != nil {
				status.Detail = fmt.Sprintf("binary %q not found", command)
			} else {
				status.Available = true
			}
		}
		results = append(results, status)
	}
	return results
}

// Missing returns an error naming every unavailable requirement, or nil when
// all are resolvable.
func Missing(requirements []Requirement) error {
	var missing []string
	for _, status := range CheckBinaries(requirements) {
		if !status.Available {
			missing = append(missing, fmt.Sprintf("%s (%s)", status.Name, status.Detail))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing external tools: %s", strings.Join(missing, ", "))
}
