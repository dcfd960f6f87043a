package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/transitdesk/console/internal/app"
)

type configKey struct{}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "consolectl",
		Short: "Maintenance commands for the transit admin console",
		Long: `consolectl talks to the same Redis, backend and PDF service as the console.

Configuration is read from the environment, exactly as the console and worker
read it.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newWarmupCmd())
	root.AddCommand(newPingCmd())
	root.AddCommand(newQueueCmd())
	return root
}

func configFrom(cmd *cobra.Command) (*app.Config, error) {
	cfg, ok := cmd.Context().Value(configKey{}).(*app.Config)
	if !ok || cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	return cfg, nil
}
