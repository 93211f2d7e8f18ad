package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// DebugMode controls whether PrintDebug output is visible.
var DebugMode = false

// QuietMode controls whether verbose messages are suppressed (errors/warnings still shown)
var QuietMode = false

// projectPrefix is the standard tag for all logs.
const projectPrefix = "[CDIST]"

// ---------------------------------------------------------
// 1. Private Color Definitions
//    (We hide these so we don't use raw colors in logic)
// ---------------------------------------------------------

var (
	red         = color.New(color.FgRed).SprintFunc()
	green       = color.New(color.FgGreen).SprintFunc()
	yellow      = color.New(color.FgYellow).SprintFunc()
	blueBold    = color.New(color.FgBlue, color.Bold).SprintFunc()
	magenta     = color.New(color.FgMagenta).SprintFunc()
	magentaBold = color.New(color.FgMagenta, color.Bold).SprintFunc()
	cyan        = color.New(color.FgCyan).SprintFunc()
	cyanBold    = color.New(color.FgCyan, color.Bold).SprintFunc()
	gray        = color.New(color.FgWhite).SprintFunc() // FgWhite = Gray in ANSI
	bold        = color.New(color.Bold).SprintFunc()
)

// ---------------------------------------------------------
// 2. Semantic Styles (The "Style..." API)
//    Use these for formatting specific types of data.
// ---------------------------------------------------------

// StyleError formats critical failure messages (Red).
func StyleError(msg string) string { return red(msg) }

// StyleSuccess formats success messages (Green).
func StyleSuccess(msg string) string { return green(msg) }

// StyleWarning formats non-critical warnings (Yellow).
func StyleWarning(msg string) string { return yellow(msg) }

// StyleHint formats helpful tips or suggestions (Cyan).
func StyleHint(msg string) string { return cyan(msg) }

// StyleNote formats neutral notes or annotations (Magenta).
func StyleNote(msg string) string { return magenta(msg) }

// StyleInfo formats status labels or properties (Magenta)
func StyleInfo(msg string) string { return magenta(msg) }

// StyleDebug formats low-level technical info (Gray).
func StyleDebug(msg string) string { return gray(msg) }

// StyleCommand formats shell commands or flags (Gray/Faint).
func StyleCommand(cmd string) string { return gray(cmd) }

// StyleTitle
func StyleTitle(title string) string { return bold(cyan(title)) }

// StyleNumber formats counts, sizes, or IDs (Magenta).
func StyleNumber(num interface{}) string {
	return magenta(fmt.Sprintf("%v", num))
}

// StylePath formats file paths with context-aware coloring.
func StylePath(path string) string {
	// 1. Job scripts -> Bold Magenta
	if IsJobScript(path) {
		return magentaBold(path)
	}
	// 2. Sample lists -> Bold Cyan
	if IsSampleList(path) {
		return cyanBold(path)
	}
	// 3. Everything else -> Bold Blue
	return blueBold(path)
}

// ---------------------------------------------------------
// 3. Log Printers
//    High-level functions that print entire lines with tags.
//    Informational lines go to Stdout and are muted by QuietMode;
//    warnings, errors and debug lines go to Stderr.
// ---------------------------------------------------------

// Stdout and Stderr are the printers' destinations. Tests may replace them.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// logLine writes one tagged line: "[CDIST]<tag> message".
func logLine(w io.Writer, tag string, format string, a ...interface{}) {
	fmt.Fprintf(w, "%s%s %s\n", projectPrefix, tag, fmt.Sprintf(format, a...))
}

// PrintMessage prints a standard info message.
// Output: [CDIST] Message...
func PrintMessage(format string, a ...interface{}) {
	if !QuietMode {
		logLine(Stdout, "", format, a...)
	}
}

// PrintSuccess prints a success message with a Green tag.
// Output: [CDIST][PASS] Wrote 3 job scripts.
func PrintSuccess(format string, a ...interface{}) {
	if !QuietMode {
		logLine(Stdout, StyleSuccess("[PASS]"), format, a...)
	}
}

// PrintHint prints a helpful hint with a Cyan tag.
// Output: [CDIST][HINT] Try running with --dry-run.
func PrintHint(format string, a ...interface{}) {
	if !QuietMode {
		logLine(Stdout, StyleHint("[HINT]"), format, a...)
	}
}

// PrintNote prints a note with a Magenta tag.
// Output: [CDIST][NOTE] Run manifest written to jobs/run_manifest.yaml
func PrintNote(format string, a ...interface{}) {
	if !QuietMode {
		logLine(Stdout, StyleNote("[NOTE]"), format, a...)
	}
}

// PrintError prints an error message with a Red tag to Stderr.
// Output: [CDIST][ERR]  Something failed.
func PrintError(format string, a ...interface{}) {
	logLine(Stderr, StyleError("[ERR] "), format, a...)
}

// PrintWarning prints a warning with a Yellow tag to Stderr.
// Output: [CDIST][WARN] Log file could not be read.
func PrintWarning(format string, a ...interface{}) {
	logLine(Stderr, StyleWarning("[WARN]"), format, a...)
}

// PrintDebug prints a debug message with a Gray tag (only if DebugMode is true).
// Output: [CDIST][DBG]  Writing run_1.pbs
func PrintDebug(format string, a ...interface{}) {
	if DebugMode {
		logLine(Stderr, StyleDebug("[DBG] "), format, a...)
	}
}

// ---------------------------------------------------------
// 4. Terminal Detection
// ---------------------------------------------------------

// IsInteractiveShell checks if stdin is connected to a TTY (interactive terminal).
// Parameter prompts are only printed when this returns true.
func IsInteractiveShell() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
