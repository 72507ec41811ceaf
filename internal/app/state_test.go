package app

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(originalDir) })

	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}
}

func TestLoadRecord_MissingFileIsFreshStart(t *testing.T) {
	chdirTemp(t)

	record, err := loadRecord()
	if err != nil {
		t.Fatalf("loadRecord() with no state file failed: %v", err)
	}
	if record != nil {
		t.Errorf("loadRecord() = %+v, want nil for a fresh start", record)
	}
}

func TestSaveAndLoadRecord(t *testing.T) {
	chdirTemp(t)

	saved := &RunRecord{
		RunID:      uuid.New().String(),
		Image:      "python:3.13",
		File:       "demo.py",
		Args:       []string{"--flag"},
		ExitCode:   2,
		StartedAt:  time.Now().Add(-time.Second),
		FinishedAt: time.Now(),
	}

	if err := saveRecord(saved); err != nil {
		t.Fatalf("saveRecord() failed: %v", err)
	}

	loaded, err := loadRecord()
	if err != nil {
		t.Fatalf("loadRecord() failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("loadRecord() returned nil after save")
	}

	if loaded.SchemaVersion != StateSchemaVersion {
		t.Errorf("SchemaVersion = %q, want %q", loaded.SchemaVersion, StateSchemaVersion)
	}
	if loaded.RunID != saved.RunID {
		t.Errorf("RunID = %q, want %q", loaded.RunID, saved.RunID)
	}
	if loaded.Image != "python:3.13" {
		t.Errorf("Image = %q, want %q", loaded.Image, "python:3.13")
	}
	if loaded.ExitCode != 2 {
		t.Errorf("ExitCode = %d, want 2", loaded.ExitCode)
	}
	if len(loaded.Args) != 1 || loaded.Args[0] != "--flag" {
		t.Errorf("Args = %v, want [--flag]", loaded.Args)
	}
}

func TestSaveRecord_OverwritesPreviousRun(t *testing.T) {
	chdirTemp(t)

	first := &RunRecord{RunID: uuid.New().String(), Image: "python:latest", File: "a.py"}
	second := &RunRecord{RunID: uuid.New().String(), Image: "python:3.12", File: "b.py"}

	if err := saveRecord(first); err != nil {
		t.Fatalf("saveRecord(first) failed: %v", err)
	}
	if err := saveRecord(second); err != nil {
		t.Fatalf("saveRecord(second) failed: %v", err)
	}

	loaded, err := loadRecord()
	if err != nil {
		t.Fatalf("loadRecord() failed: %v", err)
	}
	if loaded.RunID != second.RunID {
		t.Errorf("RunID = %q, want the latest run %q", loaded.RunID, second.RunID)
	}
	if loaded.File != "b.py" {
		t.Errorf("File = %q, want %q", loaded.File, "b.py")
	}
}

func TestLoadRecord_CorruptedFile(t *testing.T) {
	chdirTemp(t)

	if err := os.WriteFile(StateFileName, []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write corrupted state file: %v", err)
	}

	_, err := loadRecord()
	if err == nil {
		t.Error("loadRecord() should fail on a corrupted state file")
	}
}
