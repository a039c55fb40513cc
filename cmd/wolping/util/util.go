package util

import (
	"github.com/spf13/cobra"
	"github.com/zxhio/wolping/internal/errcode"
	"github.com/zxhio/wolping/pkg/utils"
)

func DisableSortFlags(cmds ...*cobra.Command) {
	for _, cmd := range cmds {
		cmd.InheritedFlags().SortFlags = false
		cmd.PersistentFlags().SortFlags = false
		cmd.Flags().SortFlags = false
	}
}

// Hint returns a remedy for well known failures, empty if none applies.
func Hint(err error) string {
	code, _ := errcode.KindOf(err)
	switch code {
	case errcode.UnsupportedChannel:
		return "raw sockets need root or CAP_NET_RAW"
	case errcode.InvalidHardwareAddress:
		return "select another interface with --interface or --index"
	case errcode.NoInterfaceFound:
		return "list candidates with `wolping ifaces`"
	default:
		return ""
	}
}

// CheckErrorAndExit is utils.CheckErrorAndExit with the hint for err appended.
func CheckErrorAndExit(err error, format string, a ...any) {
	if hint := Hint(err); hint != "" {
		format += " (" + hint + ")"
	}
	utils.CheckErrorAndExit(err, format, a...)
}
