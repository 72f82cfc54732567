// clipotp: hand a secret to exactly one X11 clipboard paste.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"go.klb.dev/clipotp/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := newRootCmd()
	root.AddCommand(
		newConfigCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "clipotp %s\n", Version)
		},
	}
}

// resolveLogging builds the logger after flags are parsed. The broker is
// quiet by default; --debug or an explicit level turns it up.
func resolveLogging(debug bool, formatStr, levelStr string) *slog.Logger {
	level := logging.ParseLevel(levelStr, slog.LevelWarn)
	if debug {
		level = slog.LevelDebug
	}
	return logging.Setup(logging.ParseFormat(formatStr), level)
}
