package main

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/proofpanel/proofpanel/internal/dashboard"
	"github.com/proofpanel/proofpanel/internal/store"
)

var (
	dashboardAPIBase  string
	dashboardCache    string
	dashboardQueries  []string
	dashboardSend     bool
	dashboardLoadMore bool
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the verification dashboard for the stored respondents",
	Long: `Loads the respondent roster from the store, reconciles the cached
dashboard session against the verification API, and prints the displayed
batch. Use --send to dispatch verification emails for the displayed batch
and --load-more to advance to the next page.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		respondents, err := st.ListRespondents(ctx, store.RespondentFilter{})
		if err != nil {
			return eris.Wrap(err, "list respondents")
		}
		if len(respondents) == 0 {
			return eris.New("no respondents in store; run seed or import first")
		}

		backend := dashboard.NewHTTPBackend(dashboardAPIBase, 0)
		m := dashboard.NewManager(backend, dashboard.NewFileCache(dashboardCache))
		if err := m.Init(ctx, respondents, dashboardQueries); err != nil {
			return eris.Wrap(err, "init dashboard")
		}
		if err := m.RefreshStatuses(ctx); err != nil {
			return eris.Wrap(err, "refresh statuses")
		}

		if dashboardSend {
			manifest, err := m.SendVerificationEmails(ctx)
			if err != nil {
				return eris.Wrap(err, "send verification emails")
			}
			cmd.Printf("sent %d, failed %d\n", len(manifest.Sent), len(manifest.Failed))
		}
		if dashboardLoadMore {
			if err := m.LoadMore(); err != nil {
				if errors.Is(err, dashboard.ErrBatchGate) {
					cmd.Println("displayed batch still has pending emails; send first")
				} else {
					return err
				}
			}
		}

		out := struct {
			BatchIndex int              `json:"batchIndex"`
			HasMore    bool             `json:"hasMore"`
			Items      []dashboard.Item `json:"items"`
		}{
			BatchIndex: m.BatchIndex(),
			HasMore:    m.HasMoreItems(),
			Items:      m.DisplayedItems(),
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(out), "encode dashboard")
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardAPIBase, "api-base", "http://localhost:8080", "verification API base URL")
	dashboardCmd.Flags().StringVar(&dashboardCache, "cache", ".proofpanel-dashboard.json", "dashboard session cache file")
	dashboardCmd.Flags().StringSliceVar(&dashboardQueries, "queries", nil, "selected verification queries (e.g. jobTitle,industry)")
	dashboardCmd.Flags().BoolVar(&dashboardSend, "send", false, "send verification emails for the displayed batch")
	dashboardCmd.Flags().BoolVar(&dashboardLoadMore, "load-more", false, "advance to the next batch")
	rootCmd.AddCommand(dashboardCmd)
}
