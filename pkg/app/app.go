package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"spareparts/pkg/config"
	"spareparts/pkg/httpapi"
	"spareparts/pkg/ingest"
	"spareparts/pkg/logger"
	"spareparts/pkg/metrics"
	"spareparts/pkg/query"
	"spareparts/pkg/version"
)

// flags captures command line overrides; only flags the user actually set win over config.
type flags struct {
	showVersion bool
	port        int
	dataPath    string
	logLevel    string
	logFormat   string
}

// Run parses args, loads the catalog and serves HTTP until ctx is cancelled.
func Run(ctx context.Context, args []string, out io.Writer) error {
	cmd := NewCommand()
	cmd.SetArgs(args)
	if out != nil {
		cmd.SetOut(out)
	}
	return cmd.ExecuteContext(ctx)
}

// NewCommand builds the root command so every entry point shares flags and behaviour.
func NewCommand() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "spareparts",
		Short:         "Serve the spare parts catalog over HTTP",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.showVersion {
				fmt.Fprintf(cmd.OutOrStdout(), "spareparts version %s\n", version.Version())
				return nil
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("unable to load config: %w", err)
			}
			applyFlags(cmd, f, &cfg)

			log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}, cmd.OutOrStdout())
			slog.SetDefault(log)
			return serve(cmd.Context(), cfg, log)
		},
	}

	set := cmd.Flags()
	set.BoolVar(&f.showVersion, "version", false, "Show the application version")
	set.IntVar(&f.port, "port", 0, "Port for the HTTP server (default from config, 3000)")
	set.StringVar(&f.dataPath, "data", "", "Path of the tab separated catalog export (default from config, ./LE.csv)")
	set.StringVar(&f.logLevel, "log-level", "", "Log level: DEBUG, INFO, WARN or ERROR")
	set.StringVar(&f.logFormat, "log-format", "", "Log format: text or json")
	return cmd
}

// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(cmd *cobra.Command, f flags, cfg *config.Config) {
	set := cmd.Flags()
	if set.Changed("port") {
		cfg.HTTP.Port = f.port
	}
	if set.Changed("data") {
		cfg.Data.Path = f.dataPath
	}
	if set.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if set.Changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
}

// newHandler loads the catalog and composes the query engine and HTTP layer on top of it.
// The catalog is fully built before any handler exists, so requests never see a partial table.
func newHandler(cfg config.Config, log *slog.Logger) (http.Handler, error) {
	table, err := ingest.Load(cfg.Data.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to load catalog: %w", err)
	}
	metrics.CatalogRecords.Set(float64(table.Len()))
	log.Info("catalog loaded", "path", cfg.Data.Path, "records", table.Len())

	engine := query.NewEngine(table)
	var querier httpapi.Querier = engine
	if cfg.Cache.Size > 0 {
		cache, err := query.NewCache(engine, cfg.Cache.Size)
		if err != nil {
			return nil, err
		}
		querier = cache
	}

	srv := httpapi.New(querier, log, httpapi.Options{
		CORSOrigin:     cfg.CORS.Origin,
		RateLimitRPM:   cfg.RateLimit.RPM,
		RateLimitBurst: cfg.RateLimit.Burst,
		TrustedProxies: cfg.HTTP.Proxies,
	})
	return srv.Handler(), nil
}

// serve runs the HTTP server until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	gin.SetMode(gin.ReleaseMode)
	handler, err := newHandler(cfg, log)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", address(cfg))
	if err != nil {
		return fmt.Errorf("unable to listen: %w", err)
	}
	return serveListener(ctx, ln, handler, log)
}

// serveListener serves handler on ln until ctx is cancelled or the server fails.
func serveListener(ctx context.Context, ln net.Listener, handler http.Handler, log *slog.Logger) error {
	server := &http.Server{
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("spare parts service is running", "addr", ln.Addr().String())
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped unexpectedly: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// address converts the port configuration into a binding string; PORT wins for PaaS deployments.
func address(cfg config.Config) string {
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return ":" + strconv.Itoa(cfg.HTTP.Port)
}
