package main

import (
	"os"

	"apiary-api-server/config"
	"apiary-api-server/internal/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configDir string
	endpoint  string
	token     string

	cfg config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "apiaryctl",
		Short:         "Operate the apiary API: dashboard, tokens and data maintenance",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(opts.configDir)
			if err != nil {
				return err
			}
			if opts.endpoint != "" {
				cfg.Client.Endpoint = opts.endpoint
			}
			if opts.token != "" {
				cfg.Client.Token = opts.token
			}
			log, err := logger.New(cfg.Log, os.Stderr)
			if err != nil {
				return err
			}
			opts.cfg, opts.log = cfg, log
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configDir, "config", "./config", "directory holding config.yaml")
	cmd.PersistentFlags().StringVar(&opts.endpoint, "endpoint", "", "GraphQL endpoint (overrides client.endpoint)")
	cmd.PersistentFlags().StringVar(&opts.token, "token", "", "bearer token (overrides client.token)")

	cmd.AddCommand(
		newDashboardCmd(opts),
		newTokenCmd(opts),
		newSeedCmd(opts),
		newBackfillOwnerCmd(opts),
	)
	return cmd
}
