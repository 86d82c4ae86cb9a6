// Package httpapi exposes the verification platform over HTTP: the OAuth
// callback surface, verification status reads and resets, bulk email
// dispatch, the aggregation report, and the account/study endpoints.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/proofpanel/proofpanel/internal/account"
	"github.com/proofpanel/proofpanel/internal/mailer"
	"github.com/proofpanel/proofpanel/internal/report"
	"github.com/proofpanel/proofpanel/internal/store"
	"github.com/proofpanel/proofpanel/internal/study"
	"github.com/proofpanel/proofpanel/internal/verification"
)

// Verifier completes an OAuth callback.
type Verifier interface {
	CompleteVerification(ctx context.Context, code, state string) (*verification.Result, error)
}

// AuthURLBuilder constructs the provider authorization URL for a respondent.
type AuthURLBuilder interface {
	AuthorizeURL(hashID string) (string, error)
}

// EmailDispatcher performs the bulk verification send.
type EmailDispatcher interface {
	SendVerificationEmails(ctx context.Context, recipients []mailer.Recipient) (*mailer.Manifest, error)
	SendWithCredentials(ctx context.Context, creds mailer.Credentials, recipients []mailer.Recipient) (*mailer.Manifest, error)
}

// Options configures the HTTP server.
type Options struct {
	Addr            string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// Server composes the platform services behind a chi router.
type Server struct {
	store    store.Store
	verifier Verifier
	authURL  AuthURLBuilder
	mailer   EmailDispatcher
	reporter *report.Reporter
	accounts *account.Service
	studies  *study.Service
	opts     Options
}

// NewServer wires the server to its services.
func NewServer(
	st store.Store,
	verifier Verifier,
	authURL AuthURLBuilder,
	dispatcher EmailDispatcher,
	reporter *report.Reporter,
	accounts *account.Service,
	studies *study.Service,
	opts Options,
) *Server {
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	return &Server{
		store:    st,
		verifier: verifier,
		authURL:  authURL,
		mailer:   dispatcher,
		reporter: reporter,
		accounts: accounts,
		studies:  studies,
		opts:     opts,
	}
}

// Router assembles the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/linkedin/auth-url", s.handleAuthURL)
		r.Post("/linkedin/callback", s.handleCallback)

		r.Post("/verification-statuses", s.handleVerificationStatuses)
		r.Get("/verification-status/{hashId}", s.handleVerificationStatus)
		r.Post("/clear-verification-statuses", s.handleClearStatuses)
		r.Post("/send-verification-emails", s.handleSendEmails)
		r.Get("/verified-panelists/aggregated", s.handleAggregated)

		r.Get("/respondents", s.handleListRespondents)

		r.Post("/auth/signup", s.handleSignUp)
		r.Post("/auth/signin", s.handleSignIn)

		r.Route("/studies", func(r chi.Router) {
			r.Use(s.requireAccount)
			r.Post("/", s.handleCreateStudy)
			r.Get("/", s.handleListStudies)
			r.Get("/{id}", s.handleGetStudy)
			r.Put("/{id}", s.handleUpdateStudy)
			r.Post("/{id}/status", s.handleStudyStatus)
			r.Delete("/{id}", s.handleDeleteStudy)
		})
	})

	return r
}

// Run serves until the context is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("http server listening", zap.String("addr", s.opts.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return eris.Wrap(err, "httpapi: serve")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "httpapi: shutdown")
	}
	zap.L().Info("http server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// requestLogger logs one line per request with latency and status.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	})
}
