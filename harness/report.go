package harness

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Report is the machine-readable record of a run.
type Report struct {
	RunID      string        `json:"run_id"`
	Platform   string        `json:"platform"`
	Executable string        `json:"executable"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration_ns"`
	Summary    Summary       `json:"summary"`
	ExitCode   int           `json:"exit_code"`
	Cases      []CaseResult  `json:"cases"`
}

// NewReport creates a report with a fresh run identifier.
func NewReport(platform Platform, executable string, started time.Time) *Report {
	return &Report{
		RunID:      uuid.NewString(),
		Platform:   platform.String(),
		Executable: executable,
		StartedAt:  started.UTC(),
	}
}

// WriteFile writes the report as indented JSON, creating parent directories
// as needed.
func (r *Report) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
