package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"

	runtimePkg "pyrun/pkg/runtime"
	"pyrun/pkg/settings"
)

// MockContainerRuntime is a mock implementation of the ContainerRuntime interface
type MockContainerRuntime struct {
	*mock.Mock
}

func NewMockContainerRuntime() *MockContainerRuntime {
	return &MockContainerRuntime{Mock: &mock.Mock{}}
}

func (m *MockContainerRuntime) EnsureImage(ctx context.Context, image string) error {
	args := m.Called(ctx, image)
	return args.Error(0)
}

func (m *MockContainerRuntime) RunContainer(ctx context.Context, opts runtimePkg.RunOptions) (runtimePkg.Handle, error) {
	args := m.Called(ctx, opts)
	if h := args.Get(0); h != nil {
		return h.(runtimePkg.Handle), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockContainerRuntime) ListImages(ctx context.Context, repository string) ([]runtimePkg.LocalImage, error) {
	args := m.Called(ctx, repository)
	if imgs := args.Get(0); imgs != nil {
		return imgs.([]runtimePkg.LocalImage), args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeHandle is a runtime.Handle with canned output and exit status
type fakeHandle struct {
	output   string
	exitCode int64
	waitErr  error
}

func (h *fakeHandle) Output(ctx context.Context) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(h.output)), nil
}

func (h *fakeHandle) Wait(ctx context.Context) (int64, error) {
	return h.exitCode, h.waitErr
}

func (h *fakeHandle) Close(ctx context.Context) error {
	return nil
}

func TestResolveTag(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		expected string
	}{
		{"Empty version resolves to latest", "", "latest"},
		{"Minor version 13", "13", "3.13"},
		{"Minor version 9", "9", "3.9"},
		{"Non-numeric value is not validated", "banana", "3.banana"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveTag(tt.version); got != tt.expected {
				t.Errorf("ResolveTag(%q) = %q, want %q", tt.version, got, tt.expected)
			}
		})
	}
}

func TestBuildCommand(t *testing.T) {
	tests := []struct {
		name     string
		inv      Invocation
		expected []string
	}{
		{
			name:     "File only",
			inv:      Invocation{File: "demo.py"},
			expected: []string{"python", "demo.py"},
		},
		{
			name:     "Interpreter args come before the file",
			inv:      Invocation{File: "demo.py", Args: []string{"--flag"}},
			expected: []string{"python", "--flag", "demo.py"},
		},
		{
			name:     "Argument order is preserved",
			inv:      Invocation{File: "demo.py", Args: []string{"-B", "-W", "error"}},
			expected: []string{"python", "-B", "-W", "error", "demo.py"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildCommand(tt.inv)
			if len(got) != len(tt.expected) {
				t.Fatalf("BuildCommand() = %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("BuildCommand()[%d] = %q, want %q", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestContainerName(t *testing.T) {
	fixed := New(NewMockContainerRuntime(), settings.Default())
	if name := fixed.containerName(); name != "pyrun" {
		t.Errorf("containerName() = %q, want fixed default %q", name, "pyrun")
	}

	s := settings.Default()
	s.UniqueName = true
	unique := New(NewMockContainerRuntime(), s)

	first := unique.containerName()
	second := unique.containerName()

	if !strings.HasPrefix(first, "pyrun-") {
		t.Errorf("unique containerName() = %q, want pyrun- prefix", first)
	}
	if first == second {
		t.Errorf("unique names should differ across invocations, got %q twice", first)
	}
}

func TestPythonRunner_Run_WithMock(t *testing.T) {
	tests := []struct {
		name          string
		inv           Invocation
		setupMock     func(*MockContainerRuntime)
		expectError   bool
		errorContains string
		expectedCode  int64
		expectedImage string
	}{
		{
			name: "Versioned run resolves 3.13",
			inv:  Invocation{File: "demo.py", Version: "13"},
			setupMock: func(m *MockContainerRuntime) {
				m.On("EnsureImage", mock.Anything, "python:3.13").Return(nil)
				m.On("RunContainer", mock.Anything, mock.MatchedBy(func(opts runtimePkg.RunOptions) bool {
					return opts.Image == "python:3.13" &&
						len(opts.Command) == 2 &&
						opts.Command[0] == "python" &&
						opts.Command[1] == "demo.py"
				})).Return(&fakeHandle{output: "hello\n"}, nil)
			},
			expectedCode:  0,
			expectedImage: "python:3.13",
		},
		{
			name: "Empty version falls back to latest with flag before file",
			inv:  Invocation{File: "demo.py", Version: "", Args: []string{"--flag"}},
			setupMock: func(m *MockContainerRuntime) {
				m.On("EnsureImage", mock.Anything, "python:latest").Return(nil)
				m.On("RunContainer", mock.Anything, mock.MatchedBy(func(opts runtimePkg.RunOptions) bool {
					return opts.Image == "python:latest" &&
						len(opts.Command) == 3 &&
						opts.Command[1] == "--flag" &&
						opts.Command[2] == "demo.py"
				})).Return(&fakeHandle{}, nil)
			},
			expectedCode:  0,
			expectedImage: "python:latest",
		},
		{
			name: "Interpreter exit code propagates",
			inv:  Invocation{File: "broken.py"},
			setupMock: func(m *MockContainerRuntime) {
				m.On("EnsureImage", mock.Anything, "python:latest").Return(nil)
				m.On("RunContainer", mock.Anything, mock.Anything).
					Return(&fakeHandle{output: "Traceback...\n", exitCode: 1}, nil)
			},
			expectedCode:  1,
			expectedImage: "python:latest",
		},
		{
			name: "Pull failure",
			inv:  Invocation{File: "demo.py", Version: "99"},
			setupMock: func(m *MockContainerRuntime) {
				m.On("EnsureImage", mock.Anything, "python:3.99").Return(errors.New("manifest unknown"))
			},
			expectError:   true,
			errorContains: "manifest unknown",
		},
		{
			name: "Container create failure",
			inv:  Invocation{File: "demo.py"},
			setupMock: func(m *MockContainerRuntime) {
				m.On("EnsureImage", mock.Anything, "python:latest").Return(nil)
				m.On("RunContainer", mock.Anything, mock.Anything).
					Return(nil, errors.New("name already in use"))
			},
			expectError:   true,
			errorContains: "name already in use",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRuntime := NewMockContainerRuntime()
			tt.setupMock(mockRuntime)

			r := New(mockRuntime, settings.Default())
			var out bytes.Buffer
			r.stdout = &out

			result, err := r.Run(context.Background(), tt.inv)

			if tt.expectError {
				if err == nil {
					t.Fatal("Run() expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("Run() error = %q, want it to contain %q", err.Error(), tt.errorContains)
				}
				return
			}

			if err != nil {
				t.Fatalf("Run() unexpected error: %v", err)
			}
			if result.ExitCode != tt.expectedCode {
				t.Errorf("Run() exit code = %d, want %d", result.ExitCode, tt.expectedCode)
			}
			if result.Image != tt.expectedImage {
				t.Errorf("Run() image = %q, want %q", result.Image, tt.expectedImage)
			}

			// The resolved tag and pass-through args are announced before the
			// container output
			if !strings.Contains(out.String(), "python version: "+result.Tag) {
				t.Errorf("Run() output %q should announce the resolved tag %q", out.String(), result.Tag)
			}

			mockRuntime.AssertExpectations(t)
		})
	}
}

func TestPythonRunner_Run_AnnouncesArgs(t *testing.T) {
	mockRuntime := NewMockContainerRuntime()
	mockRuntime.On("EnsureImage", mock.Anything, "python:latest").Return(nil)
	mockRuntime.On("RunContainer", mock.Anything, mock.Anything).Return(&fakeHandle{}, nil)

	r := New(mockRuntime, settings.Default())
	var out bytes.Buffer
	r.stdout = &out

	_, err := r.Run(context.Background(), Invocation{File: "demo.py", Args: []string{"-B", "--flag"}})
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	if !strings.Contains(out.String(), "args: -B --flag") {
		t.Errorf("Run() output %q should announce the pass-through args", out.String())
	}
}
