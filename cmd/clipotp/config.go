package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipotp/internal/config"
)

// bindViper wires a command's flags into a viper instance with the standard
// config file location and CLIPOTP_* env var prefix.
//
// Precedence (lowest → highest): defaults → config file → CLIPOTP_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	configFlag, _ := cmd.Flags().GetString("config")
	if err := config.ReadInConfig(v, configFlag); err != nil {
		return err
	}

	v.SetEnvPrefix("CLIPOTP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// addPolicyFlags adds the flags that mirror configuration file keys.
func addPolicyFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSlice("allow", nil, "executables that get the secret without a prompt (replaces the config list)")
	f.StringSlice("deny", nil, "executables that are always refused (replaces the config list)")
	f.Int("timeout", 0, "give up after this many milliseconds (0 = wait forever)")
	f.String("display", "", "X11 display to use (default: $DISPLAY)")
	f.Bool("trim-newline", false, "strip one trailing newline from piped input")
	f.BoolP("quiet", "q", false, "do not print a status line on exit")
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("debug", false, "log at debug level")
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", "", "log level: debug|info|warn|error (default: warn)")
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (default: "+config.Path()+")")
}

// setupLogging reads logging flags from viper and configures slog.
func setupLogging(v *viper.Viper) *slog.Logger {
	return resolveLogging(v.GetBool("debug"), v.GetString("log-format"), v.GetString("log-level"))
}
