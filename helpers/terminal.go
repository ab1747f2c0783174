package helpers

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
)

func PrintTitle(title string) {
	fmt.Println()
	figure.NewFigure(title, "small", true).Print()
	fmt.Println()
}

// IsInteractive reports whether stdin is attached to a terminal.
func IsInteractive() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
