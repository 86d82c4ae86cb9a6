package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/proofpanel/proofpanel/internal/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the verification API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		addr := cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		srv := httpapi.NewServer(
			a.store,
			a.orchestrator,
			a.idp,
			a.mailer,
			a.reporter,
			a.accounts,
			a.studies,
			httpapi.Options{
				Addr:           addr,
				AllowedOrigins: cfg.Server.AllowedOrigins,
			},
		)
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
