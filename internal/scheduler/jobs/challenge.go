package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/witchakorn/stockarena/internal/challenge"
	"github.com/witchakorn/stockarena/pkg/config"
	"github.com/witchakorn/stockarena/pkg/logger"
)

// DailyChallengeJob creates the day's prediction challenge
// ⭐ SSOT: 챌린지 생성 스케줄은 이 Job에서만
type DailyChallengeJob struct {
	lifecycle *challenge.Lifecycle
	config    *config.Config
	logger    *logger.Logger
}

// NewDailyChallengeJob creates a new daily challenge job
func NewDailyChallengeJob(lifecycle *challenge.Lifecycle, cfg *config.Config, log *logger.Logger) *DailyChallengeJob {
	return &DailyChallengeJob{
		lifecycle: lifecycle,
		config:    cfg,
		logger:    log,
	}
}

// Name returns the job name
func (j *DailyChallengeJob) Name() string {
	return "daily_challenge"
}

// Schedule returns the cron schedule (with seconds)
func (j *DailyChallengeJob) Schedule() string {
	return j.config.Scheduler.CreateSpec
}

// Run creates today's challenge from a random popular-ticker set.
// 이미 생성된 날이면 no-op (at-most-once)
func (j *DailyChallengeJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled challenge creation")

	today := time.Now().UTC()
	ch, err := j.lifecycle.Create(ctx, today, challenge.RandomSet())
	if err != nil {
		return fmt.Errorf("create daily challenge: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"challenge_date": ch.ChallengeDate.Format("2006-01-02"),
		"predictions":    len(ch.Predictions),
	}).Info("Scheduled challenge creation completed")
	return nil
}
