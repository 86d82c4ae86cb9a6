package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/proofpanel/proofpanel/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load respondents from the configured panel source into the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		respondents, err := a.panel.FetchRespondents(ctx, store.RespondentFilter{})
		if err != nil {
			return err
		}
		n, err := a.store.UpsertRespondents(ctx, respondents)
		if err != nil {
			return err
		}

		zap.L().Info("panel seeded",
			zap.String("driver", cfg.Panel.Driver),
			zap.Int("respondents", n),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
