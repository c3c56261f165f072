// Package outwriter has output and writer logic.
package outwriter

import (
	"os"

	"github.com/huangsam/lochist/internal/contract"
	"golang.org/x/term"
)

// GetMaxTableNameWidth calculates the maximum width for repository names in table output
// based on terminal width and the number of month columns.
func GetMaxTableNameWidth(cfg *contract.Config, months int) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Conservative default for narrow terminals and CI
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Each month column holds up to 9,999,999 plus borders and padding
	baseWidth := months * 12

	// Created column and table borders
	baseWidth += 16

	available := termWidth - baseWidth
	if available < 12 {
		return 12
	}
	if available > 40 {
		return 40
	}
	return available
}
