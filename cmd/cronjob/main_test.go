package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"clubhub-backend/internal/config"
	"clubhub-backend/internal/jobs"
)

func TestRun_MissingConfig(t *testing.T) {
	err := run("testdata/does-not-exist.yaml", "all")
	assert.ErrorContains(t, err, "failed to load configuration")
}

func TestRunJobOnce(t *testing.T) {
	jr := jobs.NewJobRunner(nil, nil, &config.Config{})

	assert.NoError(t, runJobOnce(jr, jobs.JobResumePollers))
	assert.ErrorContains(t, runJobOnce(jr, "bogus"), `unknown job "bogus"`)
}
