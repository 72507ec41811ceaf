package app

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// RunRecord captures the outcome of the most recent invocation.
type RunRecord struct {
	SchemaVersion string    `json:"schema_version"`
	RunID         string    `json:"run_id"`
	Image         string    `json:"image"`
	File          string    `json:"file"`
	Args          []string  `json:"args,omitempty"`
	ExitCode      int64     `json:"exit_code"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

const (
	StateFileName      = ".pyrun.state.json"
	StateSchemaVersion = "1.0"
)

// loadRecord reads the last run record from the state file.
// Returns nil if the file doesn't exist (no run recorded yet).
func loadRecord() (*RunRecord, error) {
	if _, err := os.Stat(StateFileName); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(StateFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var record RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}

	return &record, nil
}

// saveRecord persists the run record to the state file.
func saveRecord(record *RunRecord) error {
	record.SchemaVersion = StateSchemaVersion

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize run record: %w", err)
	}

	if err := os.WriteFile(StateFileName, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}
