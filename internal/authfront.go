package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/panelkit/authfront/internal/config"
	"github.com/panelkit/authfront/internal/idp"
	"github.com/panelkit/authfront/internal/log"
	"github.com/panelkit/authfront/internal/server"
	"github.com/panelkit/authfront/internal/session"
	"github.com/panelkit/authfront/internal/state"
	"github.com/panelkit/authfront/internal/urlutil"
)

const (
	stateSweepInterval = time.Minute
	shutdownTimeout    = 30 * time.Second
)

// AuthFront is the assembled application: provider registry, stores,
// handlers and HTTP server.
type AuthFront struct {
	config     config.Config
	httpServer *server.HTTPServer
	sweeper    *state.Sweeper
}

// NewAuthFront builds the application with all dependencies wired.
func NewAuthFront(cfg config.Config) (*AuthFront, error) {
	registry := idp.NewRegistry(cfg.Providers)
	if len(registry.Names()) == 0 {
		// Not fatal: the service still answers /user and /logout, logins
		// just have nowhere to go until credentials are supplied.
		log.LogWarnWithFields("authfront", "No identity providers configured", nil)
	}

	states := state.NewStore(cfg.StateTTL)
	sessions := session.NewStore(cfg.SessionTTL)

	handler, err := buildHTTPHandler(cfg, registry, states, sessions)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP handler: %w", err)
	}

	log.LogInfoWithFields("authfront", "Application assembled", map[string]any{
		"providers":   registry.Names(),
		"panelAppURL": cfg.PanelAppURL,
		"addr":        cfg.Addr,
	})

	return &AuthFront{
		config:     cfg,
		httpServer: server.NewHTTPServer(handler, cfg.Addr),
		sweeper:    state.NewSweeper(states, stateSweepInterval),
	}, nil
}

// buildHTTPHandler registers all routes with their middleware chains.
func buildHTTPHandler(
	cfg config.Config,
	registry *idp.Registry,
	states *state.Store,
	sessions *session.Store,
) (http.Handler, error) {
	metricsHandler, err := server.RegisterMetrics(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	authHandlers := server.NewAuthHandlers(
		registry,
		states,
		sessions,
		[]byte(cfg.SigningKey),
		cfg.PanelAppURL,
		cfg.SessionTTL,
	)

	corsMiddleware := server.NewCORSMiddleware(panelOrigins(cfg.PanelAppURL))
	authMiddleware := []server.MiddlewareFunc{
		corsMiddleware,
		server.NewLoggerMiddleware("auth"),
		server.NewMetricsMiddleware(),
		server.NewRecoverMiddleware("auth"),
	}

	mux := http.NewServeMux()
	mux.Handle("/health", server.NewHealthHandler())
	mux.Handle("/metrics", metricsHandler)
	mux.Handle("/login/{provider}", server.ChainMiddleware(http.HandlerFunc(authHandlers.LoginHandler), authMiddleware...))
	mux.Handle("/auth/callback/{provider}", server.ChainMiddleware(http.HandlerFunc(authHandlers.CallbackHandler), authMiddleware...))
	mux.Handle("/user", server.ChainMiddleware(http.HandlerFunc(authHandlers.UserHandler), authMiddleware...))
	mux.Handle("/logout", server.ChainMiddleware(http.HandlerFunc(authHandlers.LogoutHandler), authMiddleware...))

	return mux, nil
}

// panelOrigins derives the CORS allowlist from the panel app URL.
func panelOrigins(panelAppURL string) []string {
	origin, err := urlutil.Origin(panelAppURL)
	if err != nil {
		log.LogWarnWithFields("authfront", "Panel app URL has no usable origin, CORS allowlist is empty", map[string]any{
			"panelAppURL": panelAppURL,
			"error":       err.Error(),
		})
		return nil
	}
	return []string{origin}
}

// Run starts the HTTP server and state sweeper and blocks until a shutdown
// signal, a server error, or context cancellation.
func (a *AuthFront) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.sweeper.Start(ctx)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.httpServer.Start()
	})

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			log.LogInfoWithFields("authfront", "Received shutdown signal", map[string]any{
				"signal": sig.String(),
			})
		case <-gctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			return err
		}
		return nil
	})

	err := g.Wait()
	a.sweeper.Stop()

	log.LogInfoWithFields("authfront", "Application shutdown complete", nil)
	return err
}
