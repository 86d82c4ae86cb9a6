package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/proofpanel/proofpanel/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "proofpanel",
	Short: "Survey-research panelist verification platform",
	Long:  "Verifies survey respondents' professional attributes through LinkedIn sign-in, tracks verification status per panelist, and aggregates verified attributes for insight companies.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
