package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"apiary-api-server/internal/client"
	"apiary-api-server/internal/dashboard"

	"github.com/spf13/cobra"
)

func newDashboardCmd(root *rootOptions) *cobra.Command {
	var (
		watch    bool
		follow   bool
		interval time.Duration
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Compute headline metrics and alerts from the live data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interval <= 0 {
				interval = root.cfg.Dashboard.PollInterval
			}
			if !cmd.Flags().Changed("limit") && root.cfg.Dashboard.AlertLimit > 0 {
				limit = root.cfg.Dashboard.AlertLimit
			}
			c := client.New(root.cfg.Client.Endpoint,
				client.WithTokenSource(client.StaticToken(root.cfg.Client.Token)),
				client.WithLogger(root.log))

			out := cmd.OutOrStdout()
			w := client.NewWatcher(c, client.WatcherConfig{
				Interval: interval,
				Follow:   follow,
				Options:  dashboard.Options{RequireResolvedHive: root.cfg.Dashboard.RequireResolvedHive},
				OnUpdate: func(s dashboard.Summary) { renderSummary(out, s, limit) },
				OnError:  func(err error) { fmt.Fprintf(cmd.ErrOrStderr(), "refresh failed: %v\n", err) },
			})

			if !watch && !follow {
				return w.Refresh(cmd.Context())
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "keep refreshing on an interval")
	cmd.Flags().BoolVar(&follow, "follow", false, "also refresh on change events from the server (implies --watch)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "refresh interval (default dashboard.pollInterval)")
	cmd.Flags().IntVar(&limit, "limit", 5, "alerts to show; 0 shows all")
	return cmd
}

func renderSummary(w io.Writer, s dashboard.Summary, limit int) {
	fmt.Fprintf(w, "%s\n", s.ComputedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "  active hives:      %d\n", s.ActiveHiveCount)
	fmt.Fprintf(w, "  honey this month:  %.1f kg\n", s.MonthlyHoneyKg)

	top, rest := s.Top(limit)
	if len(top) == 0 {
		fmt.Fprintln(w, "  no alerts")
		return
	}
	fmt.Fprintf(w, "  alerts (%d):\n", len(s.Alerts))
	for _, a := range top {
		fmt.Fprintf(w, "    [%-8s] %s: %s (%s/%s)\n", a.Severity, a.Title, a.Description, a.TargetPage, a.TargetID)
	}
	if rest > 0 {
		fmt.Fprintf(w, "    ... and %d more\n", rest)
	}
}
