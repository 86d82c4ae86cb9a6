package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/proofpanel/proofpanel/internal/account"
	"github.com/proofpanel/proofpanel/internal/mailer"
	"github.com/proofpanel/proofpanel/internal/panelapi"
	"github.com/proofpanel/proofpanel/internal/report"
	"github.com/proofpanel/proofpanel/internal/store"
	"github.com/proofpanel/proofpanel/internal/study"
	"github.com/proofpanel/proofpanel/internal/verification"
	"github.com/proofpanel/proofpanel/pkg/linkedin"
)

// app bundles the wired services shared by the commands.
type app struct {
	store        store.Store
	idp          *linkedin.Client
	orchestrator *verification.Orchestrator
	mailer       *mailer.Mailer
	reporter     *report.Reporter
	accounts     *account.Service
	studies      *study.Service
	panel        panelapi.Source
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "proofpanel.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initApp(ctx context.Context) (*app, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	idp := linkedin.NewClient(cfg.LinkedIn)
	resolver := verification.NewResolver(st)

	m := mailer.New(st, mailer.NewSMTPSender(cfg.SMTP), mailer.Options{
		FrontendBaseURL: cfg.Mail.FrontendBaseURL,
		RatePerSecond:   cfg.Mail.RatePerSecond,
		MaxConcurrent:   cfg.Mail.MaxConcurrent,
		MaxRetries:      cfg.Mail.MaxRetries,
	})

	panel, err := initPanel()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return &app{
		store:        st,
		idp:          idp,
		orchestrator: verification.NewOrchestrator(st, idp, resolver),
		mailer:       m,
		reporter:     report.NewReporter(st),
		accounts: account.NewService(st, account.Options{
			SigningKey: []byte(cfg.Auth.SigningKey),
			SessionTTL: time.Duration(cfg.Auth.SessionTTLHours) * time.Hour,
		}),
		studies: study.NewService(st),
		panel:   panel,
	}, nil
}

func initPanel() (panelapi.Source, error) {
	switch cfg.Panel.Driver {
	case "mock":
		vocab := panelapi.DefaultVocabulary()
		if cfg.Panel.VocabPath != "" {
			loaded, err := panelapi.LoadVocabulary(cfg.Panel.VocabPath)
			if err != nil {
				return nil, err
			}
			vocab = loaded
		}
		gen := panelapi.NewGenerator(vocab, cfg.Panel.MockSeed)
		return panelapi.NewMockSource(gen, cfg.Panel.MockCount, cfg.Panel.AnchorEvery), nil
	case "http":
		return panelapi.NewClient(panelapi.ClientOptions{
			BaseURL: cfg.Panel.BaseURL,
			APIKey:  cfg.Panel.APIKey,
		}), nil
	default:
		return nil, eris.Errorf("unsupported panel driver: %s", cfg.Panel.Driver)
	}
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		zap.L().Warn("store close failed", zap.Error(err))
	}
}
