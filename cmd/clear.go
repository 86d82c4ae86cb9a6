package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var clearHashIDs []string

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear verification statuses, attribute snapshots and batch links",
	Long:  "Clears verification state for the given hash IDs, or for every respondent when none are given. The verified-panelist ledger is never cleared.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.store.ClearVerificationData(ctx, clearHashIDs); err != nil {
			return err
		}
		zap.L().Info("verification data cleared", zap.Int("hash_ids", len(clearHashIDs)))
		return nil
	},
}

func init() {
	clearCmd.Flags().StringSliceVar(&clearHashIDs, "hash-id", nil, "hash IDs to clear (repeatable; empty clears all)")
	rootCmd.AddCommand(clearCmd)
}
