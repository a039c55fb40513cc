package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/zxhio/wolping/cmd/wolping/ifaces"
	"github.com/zxhio/wolping/cmd/wolping/probe"
	"github.com/zxhio/wolping/cmd/wolping/wake"
	"github.com/zxhio/wolping/pkg/builder"
	"github.com/zxhio/wolping/pkg/utils"
)

var (
	verbose bool
	version bool
	logFile string
)

const logoAscii = `
          |         o
 \ \ / _ \| |_ \ | |_ \ / _|
  \_/\___/|_| _/ |_| _| \_ |
             |           _/`

var rootCmd = &cobra.Command{
	Use:   "wolping <mac>",
	Short: "Wake-on-LAN sender and link-layer prober\n\n" + color.HiBlueString(logoAscii),
	Args:  cobra.MaximumNArgs(1),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.SetVerbose(verbose)
		setupLogging()
	},
	Run: func(cmd *cobra.Command, args []string) {
		if version {
			fmt.Println(builder.BuildInfo())
			os.Exit(0)
		}
		if len(args) == 1 {
			wake.Run(args[0])
			return
		}
		cmd.Help()
	},
}

func setupLogging() {
	logrus.SetLevel(logrus.WarnLevel)
	if logFile != "" {
		logrus.SetLevel(logrus.InfoLevel)
		logrus.SetOutput(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     30,
			Compress:   true,
		})
	}
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

func main() {
	cobra.EnableTraverseRunHooks = true
	wake.Export(rootCmd)
	probe.Export(rootCmd)
	ifaces.Export(rootCmd)
	wake.AddFlags(rootCmd)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to a rotated file")
	rootCmd.Flags().BoolVarP(&version, "version", "V", false, "Print version")
	rootCmd.Execute()
}
