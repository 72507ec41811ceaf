package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"pyrun/pkg/runtime"
	"pyrun/pkg/settings"
)

// Interpreter is the executable invoked inside the container.
const Interpreter = "python"

// Invocation is the transient input of a single run: the file to execute,
// the optional minor-version selector, and the pass-through interpreter
// arguments in their original order.
type Invocation struct {
	File    string
	Version string
	Args    []string
}

// Result carries the observable outcome of a run.
type Result struct {
	Tag      string
	Image    string
	Command  []string
	ExitCode int64
}

// PythonRunner executes a Python file inside a versioned container image.
type PythonRunner struct {
	containerRuntime runtime.ContainerRuntime
	settings         *settings.Settings
	stdout           io.Writer
}

// New creates a PythonRunner backed by the given container runtime.
func New(containerRuntime runtime.ContainerRuntime, s *settings.Settings) *PythonRunner {
	return &PythonRunner{
		containerRuntime: containerRuntime,
		settings:         s,
		stdout:           os.Stdout,
	}
}

// ResolveTag maps the minor-version selector to an image tag. An empty
// selector means the latest image; anything else is taken verbatim as a
// Python 3 minor version, with no validation against available tags.
func ResolveTag(version string) string {
	if version == "" {
		return "latest"
	}
	return "3." + version
}

// BuildCommand assembles the in-container command: the interpreter, the
// pass-through arguments in original order, and the file path as the final
// token.
func BuildCommand(inv Invocation) []string {
	cmd := make([]string, 0, len(inv.Args)+2)
	cmd = append(cmd, Interpreter)
	cmd = append(cmd, inv.Args...)
	cmd = append(cmd, inv.File)
	return cmd
}

// containerName returns the configured fixed name, or a uuid-suffixed one
// when unique naming is enabled. The fixed default preserves the original
// first-invocation-wins collision behavior.
func (r *PythonRunner) containerName() string {
	if r.settings.UniqueName {
		return r.settings.ContainerName + "-" + uuid.New().String()
	}
	return r.settings.ContainerName
}

// Run resolves the image tag, announces the resolved version and the
// pass-through arguments, and executes the file in a container with the
// current working directory bind-mounted. The returned exit code is the
// contained interpreter's own status.
func (r *PythonRunner) Run(ctx context.Context, inv Invocation) (*Result, error) {
	tag := ResolveTag(inv.Version)
	imageRef := r.settings.Repository + ":" + tag
	cmd := BuildCommand(inv)

	// Announce before touching the runtime, as the wrappers always did
	fmt.Fprintf(r.stdout, "python version: %s\n", tag)
	fmt.Fprintf(r.stdout, "args: %s\n", strings.Join(inv.Args, " "))

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}

	if err := r.containerRuntime.EnsureImage(ctx, imageRef); err != nil {
		return nil, fmt.Errorf("failed to ensure image %s: %w", imageRef, err)
	}

	opts := runtime.RunOptions{
		Image:            imageRef,
		Name:             r.containerName(),
		Command:          cmd,
		VolumeMounts:     map[string]string{workDir: r.settings.Workdir},
		EnvVars:          r.settings.Env,
		WorkingDirectory: r.settings.Workdir,
		Interactive:      true,
	}

	handle, err := r.containerRuntime.RunContainer(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to run container: %w", err)
	}

	exitCode, runErr := r.stream(ctx, handle)

	if err := handle.Close(ctx); err != nil {
		slog.Error("Failed to clean up container", "error", err)
	}

	if runErr != nil {
		return nil, runErr
	}

	slog.Info("Container finished", "image", imageRef, "exitCode", exitCode)

	return &Result{
		Tag:      tag,
		Image:    imageRef,
		Command:  cmd,
		ExitCode: exitCode,
	}, nil
}

// stream copies the container output to stdout, then waits for the exit
// status.
func (r *PythonRunner) stream(ctx context.Context, handle runtime.Handle) (int64, error) {
	output, err := handle.Output(ctx)
	if err != nil {
		return -1, fmt.Errorf("failed to attach to container output: %w", err)
	}

	// The program's own output goes through verbatim; with a TTY the
	// stream carries no multiplex headers to scrub.
	if _, err := io.Copy(r.stdout, output); err != nil {
		output.Close()
		return -1, fmt.Errorf("error reading container output: %w", err)
	}
	output.Close()

	exitCode, err := handle.Wait(ctx)
	if err != nil {
		return exitCode, fmt.Errorf("failed waiting for container: %w", err)
	}

	return exitCode, nil
}
