package output

import (
	"os"

	"github.com/fatih/color"
)

var (
	// Message colors
	OK      = color.New(color.FgGreen, color.Bold)
	Warning = color.New(color.FgYellow, color.Bold)
	Error   = color.New(color.FgRed, color.Bold)
	Info    = color.New(color.FgMagenta, color.Bold)
	Dim     = color.New(color.Faint)

	// Data colors
	Data = color.New(color.FgBlue, color.Bold)
	Old  = color.New(color.FgRed, color.Bold)
	New  = color.New(color.FgGreen, color.Bold)

	// Structural colors
	Header = color.New(color.FgWhite, color.Bold)
)

// NoColor disables color output
func NoColor() {
	color.NoColor = true
}

// ForceColor enables color output even when not a TTY
func ForceColor() {
	color.NoColor = false
}

// IsTerminal returns true if stdout is a terminal
func IsTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// Tag formats a bracketed status tag like "[WARN]" with the given color
func Tag(c *color.Color, label string) string {
	return c.Sprintf("[%s]", label)
}

// WarnTag returns the colored "[WARN]" prefix
func WarnTag() string { return Tag(Warning, "WARN") }

// InfoTag returns the colored "[INFO]" prefix
func InfoTag() string { return Tag(Info, "INFO") }

// ErrorTag returns the colored "[ERROR]" prefix
func ErrorTag() string { return Tag(Error, "ERROR") }

// OKTag returns the colored "[OK]" prefix
func OKTag() string { return Tag(OK, "OK") }

// Skipping returns the colored ". Skipping" trailer used on warning lines
func Skipping() string {
	return ". " + Warning.Sprint("Skipping")
}

// Sprintf returns a colored string without printing
func Sprintf(c *color.Color, format string, args ...interface{}) string {
	return c.Sprintf(format, args...)
}

// Sprint returns a colored string without printing
func Sprint(c *color.Color, a ...interface{}) string {
	return c.Sprint(a...)
}

// Printf prints with color
func Printf(c *color.Color, format string, args ...interface{}) {
	c.Printf(format, args...)
}

// Println prints with color and newline
func Println(c *color.Color, a ...interface{}) {
	c.Println(a...)
}

// PrintOK prints a success message
func PrintOK(format string, args ...interface{}) {
	OK.Printf("✓ "+format+"\n", args...)
}

// PrintError prints an error message to stderr
func PrintError(format string, args ...interface{}) {
	Error.Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	Warning.Printf("⚠ "+format+"\n", args...)
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	Info.Printf("→ "+format+"\n", args...)
}
