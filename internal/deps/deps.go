// Package deps reports the availability of external binaries the pipeline
// shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"reelsmith/internal/config"
)

// Requirement defines an external dependency reelsmith relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements returns the external binaries a render needs.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Renders the composited video",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Probes clip durations and streams",
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the names of required binaries that are unavailable.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status.Name)
		}
	}
	return missing
}
