package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/transitdesk/console/internal/app"
	"github.com/transitdesk/console/internal/backend"
	"github.com/transitdesk/console/report"
)

// check is one dependency probe.
type check struct {
	name string
	run  func(ctx context.Context) error
}

func newPingCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the backend API and PDF service answer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			checks, err := pingChecks(cfg)
			if err != nil {
				return err
			}
			failed := 0
			for _, c := range checks {
				ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
				start := time.Now()
				err := c.run(ctx)
				cancel()
				if err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%-8s FAIL %s\n", c.name, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s ok   %s\n", c.name, time.Since(start).Round(time.Millisecond))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d checks failed", failed, len(checks))
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "timeout per check")
	return cmd
}

func pingChecks(cfg *app.Config) ([]check, error) {
	client, err := backend.NewClient(backend.Options{
		BaseURL:     cfg.BackendURL,
		Timeout:     cfg.BackendTimeout,
		Credentials: backend.StaticToken(cfg.ServiceToken),
	})
	if err != nil {
		return nil, err
	}
	pdf := report.NewClient(cfg.GotenbergURL, 10*time.Second)
	return []check{
		{name: "backend", run: func(ctx context.Context) error {
			_, err := client.Do(ctx, http.MethodGet, "/operators", url.Values{"page": {"1"}, "limit": {"1"}}, nil)
			if err != nil {
				return errors.New(backend.Message(err))
			}
			return nil
		}},
		{name: "pdf", run: pdf.Ping},
	}, nil
}
