package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"pyrun/internal/errors"
	"pyrun/internal/parser"
	"pyrun/internal/runner"
	"pyrun/internal/runtime"
	"pyrun/internal/ui"
	pkgruntime "pyrun/pkg/runtime"
	"pyrun/pkg/settings"
)

// SettingsFileName is the optional per-directory configuration file.
const SettingsFileName = ".pyrun.yaml"

// Run executes a Python file in a versioned container. It returns the
// process exit code: the container's own status on a completed run, 1 on
// any failure before the interpreter got to run.
func Run(inv runner.Invocation) (int, error) {
	s, containerRuntime, err := setup()
	if err != nil {
		return 1, err
	}

	startedAt := time.Now()

	result, err := runner.New(containerRuntime, s).Run(context.Background(), inv)
	if err != nil {
		// The daemon's output is the user-visible result; no suggestion
		// wrapping for container-phase failures.
		return 1, err
	}

	record := &RunRecord{
		RunID:      uuid.New().String(),
		Image:      result.Image,
		File:       inv.File,
		Args:       inv.Args,
		ExitCode:   result.ExitCode,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	}
	if err := saveRecord(record); err != nil {
		// The run itself succeeded; losing the record is only worth a warning
		slog.Warn("Failed to save run record", "error", err)
	}

	return int(result.ExitCode), nil
}

// Images prints the locally present images of the configured repository.
func Images() error {
	s, containerRuntime, err := setup()
	if err != nil {
		return err
	}

	images, err := containerRuntime.ListImages(context.Background(), s.Repository)
	if err != nil {
		return errors.NewImageError(
			fmt.Sprintf("Could not list local %s images", s.Repository),
			err.Error(),
			"Check that the Docker daemon is running",
			err,
		)
	}

	console := ui.NewConsole()
	if len(images) == 0 {
		console.PrintInfo(fmt.Sprintf("No local %s images. They are pulled on first use.", s.Repository))
		return nil
	}

	for _, img := range images {
		fmt.Printf("%s:%-12s %8.1f MB  %s\n",
			s.Repository, img.Tag,
			float64(img.Size)/(1024*1024),
			img.Created.Format("2006-01-02"))
	}

	return nil
}

// Last prints the recorded previous invocation, if any.
func Last() error {
	record, err := loadRecord()
	if err != nil {
		return errors.NewStateError(
			"Could not read the last run record",
			err.Error(),
			fmt.Sprintf("Remove %s if it is corrupted", StateFileName),
			err,
		)
	}

	console := ui.NewConsole()
	if record == nil {
		console.PrintInfo("No previous run recorded in this directory.")
		return nil
	}

	fmt.Printf("run:      %s\n", record.RunID)
	fmt.Printf("image:    %s\n", record.Image)
	fmt.Printf("file:     %s\n", record.File)
	if len(record.Args) > 0 {
		fmt.Printf("args:     %v\n", record.Args)
	}
	fmt.Printf("exit:     %d\n", record.ExitCode)
	fmt.Printf("finished: %s\n", record.FinishedAt.Format(time.RFC3339))

	return nil
}

// setup loads the settings and connects to the container daemon.
func setup() (*settings.Settings, pkgruntime.ContainerRuntime, error) {
	s, err := parser.Load(SettingsFileName)
	if err != nil {
		return nil, nil, errors.NewSettingsError(
			fmt.Sprintf("Could not load %s", SettingsFileName),
			err.Error(),
			"Fix or remove the settings file; defaults apply when it is absent",
			err,
		)
	}

	containerRuntime, err := runtime.NewDockerRuntime()
	if err != nil {
		return nil, nil, errors.NewDaemonError(
			"Could not connect to the container runtime",
			err.Error(),
			"Check that the Docker daemon is installed and running",
			err,
		)
	}

	return s, containerRuntime, nil
}
