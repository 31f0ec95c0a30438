package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MGallo-Code/hermes/internal/auth"
	"github.com/MGallo-Code/hermes/internal/config"
	"github.com/MGallo-Code/hermes/internal/oauth"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

// newRootCmd builds the CLI. With no subcommand it serves the relay.
func newRootCmd() *cobra.Command {
	var envFiles []string

	// loadConfig reads .env files (if present) then the environment.
	loadConfig := func() (*config.Config, error) {
		if err := config.LoadDotEnv(envFiles...); err != nil {
			return nil, err
		}
		return config.LoadConfig()
	}

	root := &cobra.Command{
		Use:           "hermes",
		Short:         "OAuth2 login relay for Discord, Google, and Spotify",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			setupLogging(cfg)

			// Cancel ctx on SIGINT/SIGTERM; run() shuts down when ctx is done.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, nil)
		},
	}
	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load before reading the environment (default .env)")

	root.AddCommand(
		&cobra.Command{
			Use:   "routes",
			Short: "Print the provider listing served at GET /",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				reg, err := cfg.Registry()
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(auth.Listing(reg))
			},
		},
		&cobra.Command{
			Use:   "authorize-url <provider>",
			Short: "Print the consent page URL the relay redirects to",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := oauth.ParseID(args[0])
				if err != nil {
					return err
				}
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				reg, err := cfg.Registry()
				if err != nil {
					return err
				}
				p, ok := reg.Lookup(id)
				if !ok {
					return fmt.Errorf("%w: %q", oauth.ErrUnknownProvider, id)
				}
				fmt.Fprintln(cmd.OutOrStdout(), oauth.AuthorizeURL(p))
				return nil
			},
		},
	)
	return root
}

// setupLogging installs a JSON slog handler at the configured level.
func setupLogging(cfg *config.Config) {
	// Include source location in log entries at debug level only.
	addSrc := cfg.LogLevel == slog.LevelDebug

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     cfg.LogLevel,
		AddSource: addSrc,
	})))
}

// run holds all server logic and returns error instead of calling os.Exit.
// Shuts down when ctx is cancelled (signal handling is the caller's concern).
// If ready is non-nil, the server's base URL is sent on it once the listener is bound.
func run(ctx context.Context, cfg *config.Config, ready chan<- string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	providers, err := cfg.Registry()
	if err != nil {
		return fmt.Errorf("failed to build providers: %w", err)
	}

	// Fresh registry per run so repeated runs in one process don't collide.
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := auth.NewMetrics(promReg)
	if err != nil {
		return fmt.Errorf("failed to set up metrics: %w", err)
	}

	// One client for all outbound provider calls; each call inherits the request context.
	client := oauth.NewClient(&http.Client{Timeout: cfg.UpstreamTimeout}, oauth.WithObserver(metrics))

	h := auth.AuthHandler{Providers: providers, Flow: client, Metrics: metrics}

	// Bind listener; ":0" picks a free port (useful in tests).
	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	server := &http.Server{
		Handler:           buildRouter(&h, cfg.RequestTimeout),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine; run() continues past this.
	errCh := make(chan error, 1)
	go func() {
		slog.Info("hermes listening", "addr", ln.Addr().String(), "providers", len(providers.All()))
		// Send error only if server stops for a reason other than explicit shutdown.
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Signal readiness to caller (used by tests; nil in production).
	if ready != nil {
		ready <- "http://" + ln.Addr().String()
	}

	// Wait for server error or shutdown signal from ctx.
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")
	// Stop accepting, then give in-flight callbacks up to 30s to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// buildRouter wires all routes and middleware.
// Called from run() and directly from smoke tests. requestTimeout must exceed
// the time two upstream calls can take (see config.Validate).
func buildRouter(h *auth.AuthHandler, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(auth.AccessLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(h.Metrics.Middleware)

	r.Get("/", h.ListProviders)
	r.Get("/health", h.CheckHealth)
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics.Handler())
	}

	r.Get("/{provider}/auth", h.Authorize)
	r.Get("/{provider}/auth/callback", h.Callback)

	return r
}
