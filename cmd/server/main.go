package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcapi "clubhub-backend/internal/api/grpc"
	httpapi "clubhub-backend/internal/api/http"
	"clubhub-backend/internal/bootstrap"
	"clubhub-backend/internal/config"
	"clubhub-backend/internal/jobs"
	"clubhub-backend/internal/logger"
	"clubhub-backend/internal/poller"
	"clubhub-backend/internal/scheduler"
	"clubhub-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func run(configPath string) error {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting ClubHub membership backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http_address", cfg.GetServerAddress(), "grpc_address", cfg.GetGRPCAddress())
	logger.Info("GitHub configuration", "org", cfg.GitHub.Org, "base_url", cfg.GitHub.BaseURL, "requests_per_second", cfg.GitHub.RequestsPerSecond)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize store and external clients
	deps, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.Close()

	return serve(ctx, cfg, deps)
}

// serve runs the HTTP API, the gRPC health server, the poller and the cron
// jobs until ctx is cancelled or a listener fails. Both listeners are bound
// before any background work starts.
func serve(ctx context.Context, cfg *config.Config, deps *bootstrap.Deps) error {
	authn, err := deps.Authenticator(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize authenticator: %w", err)
	}

	httpLis, err := net.Listen("tcp", cfg.GetServerAddress())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.GetServerAddress(), err)
	}
	grpcLis, err := net.Listen("tcp", cfg.GetGRPCAddress())
	if err != nil {
		httpLis.Close()
		return fmt.Errorf("failed to listen on %s: %w", cfg.GetGRPCAddress(), err)
	}

	// Initialize Email Service
	emailSvc := service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName, cfg.GitHub.Org)

	// Initialize Services
	membershipSvc := service.NewMembershipService(deps.Requests, deps.GitHub)

	var statusPoller *poller.Poller
	var watcher service.PollWatcher
	if !cfg.Poller.Disabled {
		statusPoller = poller.New(membershipSvc, cfg.PollInterval())
		watcher = statusPoller
		if _, err := statusPoller.Resume(ctx); err != nil {
			logger.Error("Failed to resume status polling", "error", err)
		}
	} else {
		logger.Info("In-process status poller disabled")
	}
	adminSvc := service.NewAdminService(deps.Requests, deps.GitHub, emailSvc, watcher)

	// Scheduled jobs
	var resumer jobs.PollResumer
	if statusPoller != nil {
		resumer = statusPoller
	}
	cronScheduler := scheduler.NewScheduler(jobs.NewJobRunner(membershipSvc, resumer, cfg))
	cronScheduler.Start()

	serveErr := make(chan error, 2)

	// Set up HTTP server
	router := httpapi.NewRouter(membershipSvc, adminSvc, authn, httpapi.Options{
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
		RateLimitBurst:     cfg.Server.RateLimitBurst,
	})
	httpServer := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP server listening", "address", httpLis.Addr().String())
		if err := httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("http server: %w", err)
		}
	}()

	// Set up gRPC health server
	healthServer := grpcapi.NewHealthServer()
	go func() {
		if err := healthServer.Serve(grpcLis); err != nil {
			serveErr <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serveErr:
		logger.Error("Server error", "error", runErr)
	}

	// Graceful shutdown
	logger.Info("Shutting down...")
	healthServer.SetServing(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}

	cronScheduler.Stop()
	if statusPoller != nil {
		statusPoller.Stop()
	}
	healthServer.Stop()
	logger.Info("Server stopped. Goodbye!")
	return runErr
}
