package ui

import (
	"fmt"
	"os"
	"strings"
)

type Style int

const (
	StyleError Style = iota
	StyleWarning
	StyleSuccess
	StyleInfo
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorBold   = "\033[1m"
)

var styleColors = map[Style]string{
	StyleError:   colorRed + colorBold,
	StyleWarning: colorYellow,
	StyleSuccess: colorGreen,
	StyleInfo:    colorBlue,
}

// Console renders user-facing messages, with ANSI colors when stderr is a
// terminal and NO_COLOR is unset.
type Console struct {
	useColors bool
}

func NewConsole() *Console {
	return &Console{
		useColors: isTerminal() && os.Getenv("NO_COLOR") == "",
	}
}

func isTerminal() bool {
	stat, _ := os.Stderr.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

func (c *Console) stylize(style Style, message string) string {
	if !c.useColors {
		return message
	}

	color, ok := styleColors[style]
	if !ok {
		return message
	}

	return color + message + colorReset
}

func (c *Console) PrintError(message string) {
	fmt.Fprintf(os.Stderr, "%s\n", c.stylize(StyleError, "Error: "+message))
}

func (c *Console) PrintWarning(message string) {
	fmt.Fprintf(os.Stderr, "%s\n", c.stylize(StyleWarning, "Warning: "+message))
}

func (c *Console) PrintSuccess(message string) {
	fmt.Printf("%s\n", c.stylize(StyleSuccess, message))
}

func (c *Console) PrintInfo(message string) {
	fmt.Printf("%s\n", c.stylize(StyleInfo, message))
}

// FormatErrorMessage joins the context, cause, and suggestion of a failure
// into the multi-line form PrintError expects.
func (c *Console) FormatErrorMessage(context, cause, suggestion string) string {
	var parts []string

	if context != "" {
		parts = append(parts, context)
	}

	if cause != "" {
		parts = append(parts, fmt.Sprintf("Cause: %s", cause))
	}

	if suggestion != "" {
		parts = append(parts, fmt.Sprintf("Suggestion: %s", suggestion))
	}

	return strings.Join(parts, "\n")
}
