package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"

	"pyrun/pkg/runtime"
)

// DockerRuntime implements the ContainerRuntime interface using Docker client.
type DockerRuntime struct {
	client *client.Client
}

// NewDockerRuntime creates a new DockerRuntime instance using client.FromEnv.
func NewDockerRuntime() (*DockerRuntime, error) {
	dockerClient, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	// Check if Docker daemon is accessible
	ctx := context.Background()
	_, err = dockerClient.Ping(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Docker daemon: %w", err)
	}

	return &DockerRuntime{
		client: dockerClient,
	}, nil
}

// EnsureImage pulls an image unless it is already present in the local
// store. docker run itself only pulls on a local miss, so a missing tag
// surfaces here exactly as it would from the CLI.
func (d *DockerRuntime) EnsureImage(ctx context.Context, imageName string) error {
	if _, err := d.client.ImageInspect(ctx, imageName); err == nil {
		slog.Info("Image present locally", "image", imageName)
		return nil
	}

	slog.Info("Pulling image", "image", imageName)

	reader, err := d.client.ImagePull(ctx, imageName, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", imageName, err)
	}
	defer reader.Close()

	// Drain the pull progress stream; the JSON chatter is not for the user
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("failed to stream image pull output: %w", err)
	}

	slog.Info("Successfully pulled image", "image", imageName)
	return nil
}

// RunContainer creates and starts a container and returns a handle for
// streaming its output and collecting its exit status.
func (d *DockerRuntime) RunContainer(ctx context.Context, opts runtime.RunOptions) (runtime.Handle, error) {
	slog.Info("Running container", "image", opts.Image, "name", opts.Name, "command", opts.Command)

	var mounts []mount.Mount
	for hostPath, containerPath := range opts.VolumeMounts {
		mounts = append(mounts, mount.Mount{
			Type:   mount.TypeBind,
			Source: hostPath,
			Target: containerPath,
		})
	}

	var envVars []string
	for key, value := range opts.EnvVars {
		envVars = append(envVars, fmt.Sprintf("%s=%s", key, value))
	}

	// Tty keeps the output stream free of the log multiplex headers and
	// matches the interactive behavior of `docker run -it`.
	containerConfig := &container.Config{
		Image:      opts.Image,
		Cmd:        opts.Command,
		Env:        envVars,
		WorkingDir: opts.WorkingDirectory,
		Tty:        true,
		OpenStdin:  opts.Interactive,
	}

	hostConfig := &container.HostConfig{
		Mounts: mounts,
	}

	// A non-empty name is passed through as-is; a clash with a live
	// container of the same name is the daemon's error to report.
	resp, err := d.client.ContainerCreate(ctx, containerConfig, hostConfig, nil, nil, opts.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	containerID := resp.ID

	if err := d.client.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		// Clean up on start failure
		if removeErr := d.client.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true}); removeErr != nil {
			slog.Error("Failed to remove container after start failure", "containerID", containerID, "error", removeErr)
		}
		return nil, fmt.Errorf("failed to start container: %w", err)
	}

	return &dockerHandle{
		client:      d.client,
		containerID: containerID,
	}, nil
}

// ListImages returns the locally stored images of the given repository,
// one entry per tag.
func (d *DockerRuntime) ListImages(ctx context.Context, repository string) ([]runtime.LocalImage, error) {
	summaries, err := d.client.ImageList(ctx, image.ListOptions{
		Filters: filters.NewArgs(filters.Arg("reference", repository)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list images for %s: %w", repository, err)
	}

	var images []runtime.LocalImage
	for _, summary := range summaries {
		for _, repoTag := range summary.RepoTags {
			tag := strings.TrimPrefix(repoTag, repository+":")
			images = append(images, runtime.LocalImage{
				Tag:     tag,
				Size:    summary.Size,
				Created: time.Unix(summary.Created, 0),
			})
		}
	}

	return images, nil
}

// dockerHandle is the runtime.Handle for a started Docker container.
type dockerHandle struct {
	client      *client.Client
	containerID string
}

// Output follows the container's combined output stream.
func (h *dockerHandle) Output(ctx context.Context) (io.ReadCloser, error) {
	logs, err := h.client.ContainerLogs(ctx, h.containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get container logs: %w", err)
	}
	return logs, nil
}

// Wait blocks until the container stops and returns its exit status.
func (h *dockerHandle) Wait(ctx context.Context) (int64, error) {
	statusCh, errCh := h.client.ContainerWait(ctx, h.containerID, container.WaitConditionNotRunning)

	select {
	case err := <-errCh:
		return -1, fmt.Errorf("failed to wait for container: %w", err)
	case status := <-statusCh:
		if status.Error != nil {
			return status.StatusCode, fmt.Errorf("container wait error: %s", status.Error.Message)
		}
		return status.StatusCode, nil
	case <-ctx.Done():
		return -1, ctx.Err()
	}
}

// Close force-removes the container, the equivalent of a `--rm` run.
func (h *dockerHandle) Close(ctx context.Context) error {
	if err := h.client.ContainerRemove(ctx, h.containerID, container.RemoveOptions{Force: true}); err != nil {
		slog.Error("Failed to remove container", "containerID", h.containerID, "error", err)
		return err
	}
	return nil
}
