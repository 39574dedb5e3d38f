package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bonejoint/clinic/internal/config"
	"github.com/bonejoint/clinic/internal/domain/clinic"
	"github.com/bonejoint/clinic/internal/platform/codec"
	"github.com/bonejoint/clinic/internal/platform/logging"
	"github.com/bonejoint/clinic/internal/platform/middleware"
	"github.com/bonejoint/clinic/internal/platform/sandbox"
	"github.com/bonejoint/clinic/internal/platform/telemetry"
	"github.com/bonejoint/clinic/internal/platform/validate"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "clinic-server",
		Short:        "Bone & Joint clinic record API server",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd())
	root.AddCommand(versionCmd())
	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the clinic API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port, _ = cmd.Flags().GetString("port")
			}
			if cmd.Flags().Changed("seed-demo") {
				cfg.SeedDemoPatients, _ = cmd.Flags().GetInt("seed-demo")
			}
			return runServer(cfg)
		},
	}
	cmd.Flags().String("port", "", "Port to listen on (overrides PORT)")
	cmd.Flags().Int("seed-demo", 0, "Seed N synthetic patients at startup (overrides SEED_DEMO_PATIENTS)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func runServer(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Logger
	logger, closer, err := logging.New(os.Stdout, logging.Options{
		Level:      cfg.LogLevel,
		Console:    cfg.IsDev(),
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	e, svc, err := newServer(cfg, logger)
	if err != nil {
		return err
	}

	if cfg.SeedDemoPatients > 0 {
		seedCfg := sandbox.DefaultSeedConfig()
		seedCfg.PatientCount = cfg.SeedDemoPatients
		if _, err := sandbox.NewSeeder(svc, seedCfg, logger).Generate(context.Background()); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("version", version).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newServer wires the store, service and HTTP stack. The returned service is
// the one behind the routes.
func newServer(cfg *config.Config, logger zerolog.Logger) (*echo.Echo, *clinic.Service, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}
	bodyLimit, err := cfg.BodyLimitBytes()
	if err != nil {
		return nil, nil, err
	}

	repo := clinic.NewMemRepository(clinic.WithLocation(loc))
	svc := clinic.NewService(repo, logger, clinic.WithTransitionEnforcement(cfg.EnforceVisitTransitions))

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validate.New()
	e.JSONSerializer = codec.JSONSerializer{}

	metrics := telemetry.NewMetrics(version)

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(metrics.Middleware())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	e.Use(middleware.Sanitize(logger))
	e.Use(middleware.BodyLimit(bodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, middleware.RequestIDHeader},
	}))
	e.Use(middleware.Audit(logger))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/metrics", metrics.Handler())

	api := e.Group("/api")
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}))
	clinic.NewHandler(svc, logger).RegisterRoutes(api)
	apiDocs(e, "http://localhost:"+cfg.Port).RegisterRoutes(api)

	return e, svc, nil
}
