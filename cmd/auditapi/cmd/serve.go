package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/cmd/cmdutil"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/db/bunx"
	auditmiddleware "github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/middleware"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/repository"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/server"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/services/company"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/services/engagement"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/services/master"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/services/validation"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/telemetry"
)

const (
	shutdownTimeout = 10 * time.Second
	schemaCacheSize = 32
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the audit API server",
	Long:  `Starts the HTTP server with the company, engagement and reference data endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		shutdownTracing, err := telemetry.Init(ctx, cfg.Observability, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := shutdownTracing(sctx); err != nil {
				logger.WithError(err).Warn("tracing shutdown failed")
			}
		}()

		var metricsSrv *http.Server
		if cfg.MetricsAddr != "" {
			metricsHandler, shutdownMetrics, err := telemetry.InitMetrics(cfg.Observability)
			if err != nil {
				return fmt.Errorf("failed to initialize metrics: %w", err)
			}
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				_ = shutdownMetrics(sctx)
			}()

			mux := http.NewServeMux()
			mux.Handle("/metrics", metricsHandler)
			metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
			go func() {
				logger.WithField("addr", cfg.MetricsAddr).Info("starting metrics listener")
				if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.WithError(err).Error("metrics listener stopped")
				}
			}()
		}

		serverMetrics, err := telemetry.NewServerMetrics()
		if err != nil {
			return fmt.Errorf("failed to create server metrics: %w", err)
		}
		dbMetrics, err := telemetry.NewDatabaseMetrics()
		if err != nil {
			return fmt.Errorf("failed to create database metrics: %w", err)
		}
		authMetrics, err := telemetry.NewAuthMetrics()
		if err != nil {
			return fmt.Errorf("failed to create auth metrics: %w", err)
		}

		// Connect to database
		db, err := bunx.NewDB(cfg.DatabaseURL,
			bunx.WithMaxOpenConns(cfg.MaxDBConnections),
			bunx.WithQueryHook(bunx.NewMetricsHook(dbMetrics)),
		)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)
		logger.WithField("database", string(bunx.DetectDatabaseType(cfg.DatabaseURL))).Info("connected to database")

		clk := clock.New()

		// Repositories and services
		companies := company.NewService(repository.NewBunCompanyRepository(db), logger)
		engagements := engagement.NewService(repository.NewBunEngagementRepository(db), clk, logger)
		masterData := master.NewService(repository.NewBunMasterRepository(db), master.Config{
			CacheTTL:  cfg.Master.CacheTTL,
			CacheSize: cfg.Master.CacheSize,
		}, clk)

		validator, err := validation.NewSchemaValidator(schemaCacheSize)
		if err != nil {
			return fmt.Errorf("failed to create payload validator: %w", err)
		}

		// Authentication and authorization
		bundle, err := cmdutil.NewAuthBundle(cfg, clk, logger)
		if err != nil {
			return err
		}

		authorizer, err := auditmiddleware.NewAuthzMiddleware(auditmiddleware.AuthzDependencies{
			Verifier: bundle.Verifier,
			Policy:   bundle.Policy,
			Logger:   logger,
			Metrics:  authMetrics,
		})
		if err != nil {
			return fmt.Errorf("configure authorization middleware: %w", err)
		}

		healthHandler := func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := db.PingContext(r.Context()); err != nil {
				logger.WithError(err).Warn("health check: database unreachable")
				w.WriteHeader(http.StatusServiceUnavailable)
				fmt.Fprint(w, `{"status":"unavailable"}`)
				return
			}
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, `{"status":"ok"}`)
		}

		handler, err := server.NewH2CHandler(server.RouterOptions{
			Companies:   companies,
			Engagements: engagements,
			Master:      masterData,
			Validator:   validator,
			AuthnDeps: auditmiddleware.AuthnDependencies{
				Verifier: bundle.Verifier,
				Logger:   logger,
				Metrics:  authMetrics,
			},
			Authorizer:    authorizer,
			Logger:        logger,
			Middleware:    []func(http.Handler) http.Handler{serverMetrics.Middleware},
			HealthHandler: healthHandler,
		})
		if err != nil {
			return fmt.Errorf("build router: %w", err)
		}

		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      otelhttp.NewHandler(handler, server.ServiceName),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
			ConnState:    serverMetrics.ConnState,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.WithField("addr", cfg.ServerAddr).Info("starting server")
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// SIGHUP drops cached reference data so seed changes show up without a restart.
		purge := make(chan os.Signal, 1)
		signal.Notify(purge, syscall.SIGHUP)

		for {
			select {
			case err := <-serverErrors:
				return fmt.Errorf("server error: %w", err)

			case sig := <-purge:
				masterData.Purge()
				logger.WithField("signal", sig.String()).Info("reference data cache purged")

			case sig := <-shutdown:
				logger.WithField("signal", sig.String()).Info("shutting down gracefully")

				sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()

				if metricsSrv != nil {
					_ = metricsSrv.Shutdown(sctx)
				}
				if err := srv.Shutdown(sctx); err != nil {
					_ = srv.Close()
					return fmt.Errorf("graceful shutdown failed: %w", err)
				}

				logger.Info("server stopped")
				return nil
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
