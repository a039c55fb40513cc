package utils

import (
	"encoding/hex"
	"fmt"
)

var verbose bool

func SetVerbose(v bool) {
	verbose = v
}

func VerbosePrintln(format string, a ...any) {
	if !verbose {
		return
	}
	fmt.Printf(format, a...)
	fmt.Println()
}

// VerboseHexdump prints data in `hexdump -C` layout under a title line.
func VerboseHexdump(data []byte, format string, a ...any) {
	if !verbose {
		return
	}
	fmt.Printf(format, a...)
	fmt.Printf(" %d bytes\n%s", len(data), hex.Dump(data))
}
