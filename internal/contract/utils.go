package contract

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Z-score band label constants.
const (
	EssentialValue = "Essential" // Essential site
	HighValue      = "High"      // High z-score
	NeutralValue   = "Neutral"   // Near-average z-score
	LowValue       = "Low"       // Below-average z-score
)

// Color variables for console output.
var (
	EssentialColor = color.New(color.FgRed, color.Bold)     // strongest signal
	HighColor      = color.New(color.FgMagenta, color.Bold) // strong signal
	NeutralColor   = color.New(color.FgYellow)              // unremarkable
	LowColor       = color.New(color.FgCyan)                // below average
)

// GetPlainLabel returns a plain text label for a residue's essentiality
// z-score. This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(zscore float64) string {
	switch {
	case zscore >= 2:
		return EssentialValue
	case zscore >= 1:
		return HighValue
	case zscore >= 0:
		return NeutralValue
	default:
		return LowValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the
// appropriate color.
func GetColorLabel(zscore float64) string {
	text := GetPlainLabel(zscore)

	switch text {
	case EssentialValue:
		return EssentialColor.Sprint(text)
	case HighValue:
		return HighColor.Sprint(text)
	case NeutralValue:
		return NeutralColor.Sprint(text)
	default: // "Low"
		return LowColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. It falls back to os.Stdout on an empty path.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: %s: %v\n", msg, err)
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
}

// LogProgress writes a transient progress line to stderr.
func LogProgress(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
}
