package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipotp/internal/config"
)

func newConfigCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Loads the configuration exactly as a run would (file, CLIPOTP_* env vars
and flags), validates it and prints the result in config file syntax.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runConfig(cmd.OutOrStdout(), v) },
	}

	addPolicyFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runConfig(w io.Writer, v *viper.Viper) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	source := v.ConfigFileUsed()
	if source == "" {
		source = "defaults"
		if p := config.Path(); p != "" {
			source += " (" + p + " not found)"
		}
	}
	if _, err := fmt.Fprintf(w, "# source: %s\n", source); err != nil {
		return err
	}
	return cfg.WriteTOML(w)
}
