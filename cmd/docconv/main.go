package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/flanksource/commons/logger"
	"github.com/spf13/cobra"

	"docconv/contracts"
)

// Exit codes.
const (
	exitOK         = 0
	exitFailure    = 1
	exitValidation = 2
)

var logFlags = logger.Flags{
	Level:       "info",
	LogToStderr: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		logger.Errorf("%v", err)
	}
	stop()
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, contracts.ErrValidation), errors.Is(err, contracts.ErrUnsupportedMode):
		return exitValidation
	}
	return exitFailure
}

func newRootCommand() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "docconv",
		Short:         "Convert HTML, Word documents and images to PDF or JPEG",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Configure(logFlags)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default: ./docconv.yaml or ~/.config/docconv/docconv.yaml)")
	flags.CountVarP(&logFlags.LevelCount, "loglevel", "v", "Increase logging level")
	flags.StringVar(&logFlags.Level, "log-level", "info", "Set the default log level")
	flags.BoolVar(&logFlags.JsonLogs, "json-logs", false, "Print logs in json format to stderr")

	rootCmd.AddCommand(newConvertCommand(&configFile), newModesCommand())
	return rootCmd
}

func newModesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List the supported conversion modes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, m := range contracts.Modes() {
				fmt.Fprintln(cmd.OutOrStdout(), m)
			}
		},
	}
}
