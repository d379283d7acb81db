package jobs

import (
	"context"

	"clubhub-backend/internal/config"
	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/logger"
)

// StatusRefresher is the membership workflow used by the sync job.
type StatusRefresher interface {
	RefreshStatus(ctx context.Context, requestID string) (*domain.MembershipRequest, error)
	ListPollable(ctx context.Context) ([]domain.MembershipRequest, error)
}

// PollResumer re-attaches the in-process poller to stored requests.
type PollResumer interface {
	Resume(ctx context.Context) (int, error)
}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	membership StatusRefresher
	poller     PollResumer
	config     *config.Config
}

// NewJobRunner creates a new job runner. poller may be nil when the process
// runs without an in-process poller; resume-pollers is then skipped.
func NewJobRunner(membership StatusRefresher, poller PollResumer, cfg *config.Config) *JobRunner {
	return &JobRunner{
		membership: membership,
		poller:     poller,
		config:     cfg,
	}
}

// Config returns the runner's configuration
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// Run executes a job by name. It reports false for unknown names.
func (jr *JobRunner) Run(name string) bool {
	switch name {
	case JobResumePollers:
		jr.ResumePollers()
	case JobSyncMembershipStatus:
		jr.SyncMembershipStatus()
	default:
		return false
	}
	return true
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.ResumePollers()
	jr.SyncMembershipStatus()
}
