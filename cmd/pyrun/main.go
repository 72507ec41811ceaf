package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pyrun/internal/app"
	"pyrun/internal/errors"
	"pyrun/internal/runner"
)

// version is set at build time via ldflags
var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "pyrun",
	Short:   "pyrun - run Python files inside versioned containers",
	Version: version,
	Long: `pyrun executes a Python file inside a versioned python container image,
bind-mounting the current directory so the file and its neighbors are visible
to the interpreter. Trailing arguments are passed to the interpreter verbatim.`,
}

// Flag parsing is disabled on the run commands: everything after the leading
// positionals belongs to the interpreter, in its original order.
var runCmd = &cobra.Command{
	Use:   "run <file> [interpreter-args...]",
	Short: "Run a Python file with the latest python image",
	Long: `Run executes the given file with the python:latest image. All arguments
after the file path are forwarded to the interpreter unchanged.`,
	DisableFlagParsing: true,
	Run: func(cmd *cobra.Command, args []string) {
		if wantsHelp(args) {
			printHelp(cmd)
			return
		}
		inv, ok := parseRunArgs(args)
		if !ok {
			printUsage(cmd)
			os.Exit(1)
		}
		os.Exit(execute(inv))
	},
}

var runvCmd = &cobra.Command{
	Use:   "runv <minor-version> <file> [interpreter-args...]",
	Short: "Run a Python file with a specific python 3 minor version",
	Long: `Runv executes the given file with the python:3.<minor-version> image.
An empty version selector falls back to the latest image. All arguments
after the file path are forwarded to the interpreter unchanged.`,
	DisableFlagParsing: true,
	Run: func(cmd *cobra.Command, args []string) {
		if wantsHelp(args) {
			printHelp(cmd)
			return
		}
		inv, ok := parseRunvArgs(args)
		if !ok {
			printUsage(cmd)
			os.Exit(1)
		}
		os.Exit(execute(inv))
	},
}

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "List locally present python images",
	Run: func(cmd *cobra.Command, args []string) {
		if err := app.Images(); err != nil {
			errors.HandleError(err)
			os.Exit(1)
		}
	},
}

var lastCmd = &cobra.Command{
	Use:   "last",
	Short: "Show the previous run recorded in this directory",
	Run: func(cmd *cobra.Command, args []string) {
		if err := app.Last(); err != nil {
			errors.HandleError(err)
			os.Exit(1)
		}
	},
}

// execute runs the invocation and maps it to a process exit code: the
// container's own status for a completed run, 1 for anything that failed
// before the interpreter ran.
func execute(inv runner.Invocation) int {
	code, err := app.Run(inv)
	if err != nil {
		errors.HandleError(err)
	}
	return code
}

// parseRunArgs consumes the file path and treats everything after it as
// pass-through interpreter arguments. ok is false below the one-argument
// minimum.
func parseRunArgs(args []string) (runner.Invocation, bool) {
	if len(args) < 1 {
		return runner.Invocation{}, false
	}
	return runner.Invocation{
		File: args[0],
		Args: args[1:],
	}, true
}

// parseRunvArgs consumes the version selector and the file path; an empty
// selector is treated the same as no selector at all.
func parseRunvArgs(args []string) (runner.Invocation, bool) {
	if len(args) < 2 {
		return runner.Invocation{}, false
	}
	return runner.Invocation{
		Version: args[0],
		File:    args[1],
		Args:    args[2:],
	}, true
}

func wantsHelp(args []string) bool {
	return len(args) > 0 && (args[0] == "-h" || args[0] == "--help")
}

func printHelp(cmd *cobra.Command) {
	cmd.SetOut(os.Stdout)
	if err := cmd.Help(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

// printUsage writes the usage line to standard output, as the original
// wrappers did on an argument-count failure.
func printUsage(cmd *cobra.Command) {
	fmt.Printf("Usage: pyrun %s\n", cmd.Use)
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(runvCmd)
	rootCmd.AddCommand(imagesCmd)
	rootCmd.AddCommand(lastCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
