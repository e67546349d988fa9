package main

import (
	"fmt"
	"time"

	"apiary-api-server/internal/auth"
	"apiary-api-server/internal/database"

	"github.com/spf13/cobra"
)

func newTokenCmd(root *rootOptions) *cobra.Command {
	var userID, email string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development JWT signed with jwt.secret",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if root.cfg.JWT.Secret == "" {
				return fmt.Errorf("jwt.secret is not configured")
			}
			if ttl <= 0 {
				ttl = root.cfg.JWT.Expiration
			}
			token, err := auth.GenerateJWT(root.cfg.JWT.Secret, userID, email, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id placed in the token subject")
	cmd.Flags().StringVar(&email, "email", "", "optional email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default jwt.expiration)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newSeedCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert a demo apiary when the store has no hives",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := database.Open(ctx, root.cfg)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			seeded, err := database.SeedDemo(ctx, st, time.Now(), root.log)
			if err != nil {
				return err
			}
			if seeded {
				fmt.Fprintln(cmd.OutOrStdout(), "demo apiary seeded")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "store already has hives, nothing to do")
			}
			return nil
		},
	}
}

func newBackfillOwnerCmd(root *rootOptions) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "backfill-owner",
		Short: "Set userId on every record that has none",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := database.Connect(ctx, root.cfg.Mongo)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			updated, err := database.BackfillOwner(ctx, st.DB, userID, root.log)
			if err != nil {
				return err
			}
			for name, n := range updated {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d updated\n", name, n)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "owner to assign")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
