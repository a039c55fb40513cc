package utils

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var errorPrefix = color.New(color.FgRed, color.Bold).SprintFunc()

// CheckErrorAndExit prints the formatted message with err to stderr and
// exits with status 1, nil is a no-op.
func CheckErrorAndExit(err error, format string, a ...any) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s: %s\n", errorPrefix("Error:"), fmt.Sprintf(format, a...), err)
		os.Exit(1)
	}
}

func CheckEqualAndExit(ok bool, format string, a ...any) {
	if !ok {
		fmt.Fprintf(os.Stderr, "%s %s\n", errorPrefix("Error:"), fmt.Sprintf(format, a...))
		os.Exit(1)
	}
}
