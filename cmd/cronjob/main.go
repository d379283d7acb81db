package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"clubhub-backend/internal/bootstrap"
	"clubhub-backend/internal/config"
	"clubhub-backend/internal/jobs"
	"clubhub-backend/internal/logger"
	"clubhub-backend/internal/scheduler"
	"clubhub-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'sync-membership-status', 'all')")
	flag.Parse()

	if err := run(*configPath, *runOnce); err != nil {
		log.Fatalf("Cronjob runner failed: %v", err)
	}
}

func run(configPath, runOnce string) error {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting ClubHub Cronjob Runner...", "log_level", cfg.Log.Level)

	deps, err := bootstrap.Open(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.Close()

	// The standalone runner has no in-process poller; sync-membership-status
	// does the polling on its schedule.
	membershipSvc := service.NewMembershipService(deps.Requests, deps.GitHub)
	jobRunner := jobs.NewJobRunner(membershipSvc, nil, cfg)

	// Check if running a single job
	if runOnce != "" {
		logger.Info("Running job once", "job", runOnce)
		if err := runJobOnce(jobRunner, runOnce); err != nil {
			return err
		}
		logger.Info("Job execution completed", "job", runOnce)
		return nil
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
	return nil
}

// runJobOnce runs a specific job once
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) error {
	if jobName == "all" {
		jobRunner.RunAll()
		return nil
	}
	if !jobRunner.Run(jobName) {
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - %s\n", jobs.JobResumePollers)
		fmt.Printf("  - %s\n", jobs.JobSyncMembershipStatus)
		fmt.Printf("  - all\n")
		return fmt.Errorf("unknown job %q", jobName)
	}
	return nil
}
