package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/witchakorn/stockarena/internal/challenge"
	"github.com/witchakorn/stockarena/pkg/config"
	"github.com/witchakorn/stockarena/pkg/logger"
)

// ChallengeVerificationJob scores yesterday's pending challenge
// ⭐ SSOT: 챌린지 검증 스케줄은 이 Job에서만
type ChallengeVerificationJob struct {
	verifier *challenge.Verifier
	config   *config.Config
	logger   *logger.Logger
}

// NewChallengeVerificationJob creates a new verification job
func NewChallengeVerificationJob(verifier *challenge.Verifier, cfg *config.Config, log *logger.Logger) *ChallengeVerificationJob {
	return &ChallengeVerificationJob{
		verifier: verifier,
		config:   cfg,
		logger:   log,
	}
}

// Name returns the job name
func (j *ChallengeVerificationJob) Name() string {
	return "challenge_verification"
}

// Schedule returns the cron schedule (with seconds)
func (j *ChallengeVerificationJob) Schedule() string {
	return j.config.Scheduler.VerifySpec
}

// Run verifies yesterday's challenge against today's prices.
// pending이 없으면 no-op
func (j *ChallengeVerificationJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled challenge verification")

	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	ch, err := j.verifier.Verify(ctx, yesterday)
	if err != nil {
		return fmt.Errorf("verify challenge: %w", err)
	}
	if ch == nil {
		j.logger.Info("No pending challenge to verify")
		return nil
	}

	j.logger.WithFields(map[string]interface{}{
		"challenge_date": ch.ChallengeDate.Format("2006-01-02"),
		"correct_count":  *ch.CorrectCount,
		"won":            *ch.Won,
	}).Info("Scheduled challenge verification completed")
	return nil
}
