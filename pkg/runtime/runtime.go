package runtime

import (
	"context"
	"io"
	"time"
)

// RunOptions defines the parameters for running a container.
type RunOptions struct {
	Image            string
	Name             string
	Command          []string
	VolumeMounts     map[string]string
	EnvVars          map[string]string
	WorkingDirectory string
	Interactive      bool
}

// Handle represents a started container. Output streams the combined
// stdout/stderr of the contained process; Wait blocks until it exits and
// returns its status code; Close removes the container.
type Handle interface {
	Output(ctx context.Context) (io.ReadCloser, error)
	Wait(ctx context.Context) (int64, error)
	Close(ctx context.Context) error
}

// LocalImage describes an image present in the local daemon store.
type LocalImage struct {
	Tag     string
	Size    int64
	Created time.Time
}

// ContainerRuntime defines the contract for container operations.
type ContainerRuntime interface {
	EnsureImage(ctx context.Context, image string) error
	RunContainer(ctx context.Context, opts RunOptions) (Handle, error)
	ListImages(ctx context.Context, repository string) ([]LocalImage, error)
}
