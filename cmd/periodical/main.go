package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/periodical/internal/cli"
	"github.com/terraincognita07/periodical/internal/config"
	"github.com/terraincognita07/periodical/internal/models"
)

type rootOptions struct {
	configFile string
	cfg        *config.Config
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	secretCmd := newSecretCommand()

	root := &cobra.Command{
		Use:          "periodical",
		Short:        "Menstrual cycle tracker and predictor",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default ./config.yaml or ./data/config.yaml)")
	root.PersistentFlags().String("db", "", "path to the SQLite database, overrides database.path")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// generating a secret must work before any config exists
		if cmd.Name() == secretCmd.Name() {
			return nil
		}
		return opts.load(cmd)
	}

	root.AddCommand(
		newServeCommand(opts),
		newPredictCommand(opts),
		newPeriodCommand(opts),
		newTokenCommand(opts),
		secretCmd,
	)
	return root
}

func (opts *rootOptions) load(cmd *cobra.Command) error {
	v, err := config.New(opts.configFile)
	if err != nil {
		return err
	}
	if flag := cmd.Flags().Lookup("db"); flag != nil && flag.Changed {
		if err := v.BindPFlag("database.path", flag); err != nil {
			return fmt.Errorf("bind --db: %w", err)
		}
	}

	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}
	opts.cfg = cfg
	return nil
}

func newPredictCommand(opts *rootOptions) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Print the calculated calendar and cycle statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fromDate, err := optionalDate("from", from)
			if err != nil {
				return err
			}
			toDate, err := optionalDate("to", to)
			if err != nil {
				return err
			}
			return cli.RunPredictCommand(opts.cfg.Database.Path, opts.cfg.Calendar.Preferences(), fromDate, toDate, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first date to print (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last date to print (YYYY-MM-DD)")
	return cmd
}

func newPeriodCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "period",
		Short: "Add or remove recorded periods",
	}
	for _, action := range []string{"add", "remove"} {
		cmd.AddCommand(&cobra.Command{
			Use:   action + " <date>",
			Short: "Period " + action + " at the given date (YYYY-MM-DD)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				date, err := models.ParseDate(args[0])
				if err != nil {
					return fmt.Errorf("invalid date %q: %w", args[0], err)
				}
				return cli.RunPeriodCommand(opts.cfg.Database.Path, opts.cfg.Calendar.Preferences(), action, date, cmd.OutOrStdout())
			},
		})
	}
	return cmd
}

func newTokenCommand(opts *rootOptions) *cobra.Command {
	var subject string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := opts.cfg.Auth.ResolveSecretKey()
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = opts.cfg.Auth.TokenTTL
			}
			return cli.RunIssueTokenCommand(secret, subject, ttl, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "owner", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default auth.token_ttl)")
	return cmd
}

func newSecretCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "secret",
		Short: "Print a random value for auth.secret_key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunGenerateSecretCommand(cmd.OutOrStdout())
		},
	}
}

func optionalDate(name string, raw string) (models.Date, error) {
	if raw == "" {
		return models.Date{}, nil
	}
	date, err := models.ParseDate(raw)
	if err != nil {
		return models.Date{}, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return date, nil
}
