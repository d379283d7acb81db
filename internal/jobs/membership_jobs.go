package jobs

import (
	"context"
	"errors"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/logger"
)

const (
	JobResumePollers        = "resume-pollers"
	JobSyncMembershipStatus = "sync-membership-status"
)

// ResumePollers picks up pollable requests the in-process poller is not yet
// watching, such as those approved on another replica.
func (jr *JobRunner) ResumePollers() {
	jr.runWithRecovery(JobResumePollers, func() {
		if jr.poller == nil {
			logger.Debug("No in-process poller, skipping job", "job", JobResumePollers)
			return
		}

		n, err := jr.poller.Resume(context.Background())
		if err != nil {
			logger.Error("Failed to resume pollers", "error", err)
			return
		}
		logger.Info("Pollers resumed", "pollable", n)
	})
}

// SyncMembershipStatus checks every pollable request once, synchronously.
func (jr *JobRunner) SyncMembershipStatus() {
	jr.runWithRecovery(JobSyncMembershipStatus, func() {
		ctx := context.Background()

		reqs, err := jr.membership.ListPollable(ctx)
		if err != nil {
			logger.Error("Failed to list pollable requests", "error", err)
			return
		}

		joined, failed := 0, 0
		for _, r := range reqs {
			updated, err := jr.membership.RefreshStatus(ctx, r.ID)
			if err != nil {
				if !errors.Is(err, domain.ErrNotFound) {
					failed++
				}
				logger.Error("Failed to refresh membership status",
					"request_id", r.ID,
					"github_username", r.GitHubUsername,
					"error", err)
				continue
			}
			if updated.Status == domain.MembershipStatusJoined {
				joined++
			}
		}

		logger.Info("Membership status sync completed",
			"checked", len(reqs),
			"joined", joined,
			"failed", failed)
	})
}
