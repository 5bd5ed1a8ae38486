package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

var (
	// Global flags
	engineConfigFile  string
	channelConfigFile string
)

// log is the CLI's own console logger — colorized, human-facing output,
// separate from the engine's internal/clog structured logging (which goes
// to slog and is meant for operators tailing a log file, not a terminal).
var log = logrus.New()

// rootCmd is the base command when cyre is invoked without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "cyre",
	Short: "cyre - a reactive event manager with load-shedding under pressure",
	Long: `cyre runs a declarative set of channels behind a protection pipeline
(schema validation, conditions, transforms, change detection), a TimeKeeper
scheduler for debounce/throttle/interval timing, and a breathing/stress
system that sheds low-priority calls when the process is under load.`,
	Version: "0.1.0",
}

// Execute adds all child commands to rootCmd and runs it. Called once from
// main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	log.SetFormatter(&prefixed.TextFormatter{
		FullTimestamp:   true,
		ForceColors:     true,
		TimestampFormat: "15:04:05",
	})

	rootCmd.PersistentFlags().StringVarP(&engineConfigFile, "config", "c", "",
		"engine config file (YAML, optional — defaults are used if omitted)")
	rootCmd.PersistentFlags().StringVarP(&channelConfigFile, "channels", "f", "",
		"channel definitions file (YAML, required by serve/validate)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(statusCmd)
}
