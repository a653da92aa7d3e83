package outwriter

import (
	"os"

	"golang.org/x/term"

	"github.com/essalab/essa/internal/contract"
)

// GetTerminalWidth returns the width available for table output, preferring
// the configured override and falling back to a conservative default when
// the terminal size can't be detected.
func GetTerminalWidth(cfg *contract.Config) int {
	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		return cfg.Width
	}

	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		// Conservative default for narrow terminals and CI
		return 80
	}
	return detectedWidth
}
