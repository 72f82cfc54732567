package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipotp/internal/config"
	"go.klb.dev/clipotp/internal/prompt"
	"go.klb.dev/clipotp/internal/secret"
	"go.klb.dev/clipotp/internal/selection"
)

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "clipotp",
		Short: "Offer a secret to exactly one clipboard paste",
		Long: `clipotp reads a secret from stdin, takes ownership of the X11 CLIPBOARD
selection and hands the secret to the first application that is allowed to
paste it. Then it exits.

Each paste request is matched against the requesting process's executable:
  deny-list   refused without asking
  allow-list  served without asking
  otherwise   a desktop notification offers Share, Clear or Reject

Reject refuses the paste and denies that executable for the rest of the run.
Clear gives up the secret without disclosing it. Closing the notification
refuses the paste and keeps waiting.

The run also ends when another application copies something, or when
--timeout milliseconds pass.

Config file: $XDG_CONFIG_HOME/clipotp/config.toml (keys: allow, deny, timeout, ...)
Precedence (lowest → highest): defaults → config file → CLIPOTP_* env vars → flags`,
		Example: `  pass show email/work | head -n1 | clipotp --trim-newline --timeout 30000`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PreRunE:      func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:         func(cmd *cobra.Command, _ []string) error { return runShare(cmd.Context(), v) },
	}

	addPolicyFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runShare(ctx context.Context, v *viper.Viper) error {
	log := setupLogging(v)

	// Configuration problems surface before anything is read from stdin.
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	sec, err := secret.Read(os.Stdin, secret.ReadOptions{
		TrimNewline: cfg.TrimNewline,
		Prompt:      os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("read secret: %w", err)
	}
	defer sec.Wipe()
	log.Debug("secret loaded", "secret", sec)

	x, err := selection.Open(cfg.Display, log)
	if err != nil {
		return err
	}
	defer x.Close()

	waiter := selection.NewEventWaiter(x, log)
	defer waiter.Close()

	var asker selection.Prompter
	if n, err := prompt.Connect(log); err != nil {
		log.Warn("notification service unavailable, requests outside the allow-list will be refused", "err", err)
	} else {
		defer n.Close()
		asker = n
	}

	owner := selection.NewOwner(selection.Options{
		Display:    x,
		Waiter:     waiter,
		Identifier: &selection.ProcessIdentifier{PIDs: x},
		Prompter:   asker,
		Lists:      cfg.Lists(),
		Secret:     sec.Bytes(),
		Deadline:   cfg.Deadline(time.Now()),
		Logger:     log,
	})

	res, err := owner.Run(ctx)
	if err != nil {
		return err
	}
	if !cfg.Quiet {
		printStatus(os.Stderr, res)
	}
	return nil
}
