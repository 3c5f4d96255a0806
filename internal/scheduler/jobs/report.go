package jobs

import (
	"context"
	"fmt"

	"github.com/witchakorn/stockarena/internal/contracts"
	"github.com/witchakorn/stockarena/internal/report"
	"github.com/witchakorn/stockarena/pkg/config"
	"github.com/witchakorn/stockarena/pkg/logger"
)

// ReportSnapshotJob logs an accuracy report snapshot after verification
// 운영 지표 확인용. API 캐시와 무관하게 DB 이력으로 새로 계산
type ReportSnapshotJob struct {
	repo   contracts.ChallengeRepository
	scores contracts.ScoreStore
	config *config.Config
	logger *logger.Logger
}

// NewReportSnapshotJob creates a new report snapshot job
func NewReportSnapshotJob(repo contracts.ChallengeRepository, scores contracts.ScoreStore, cfg *config.Config, log *logger.Logger) *ReportSnapshotJob {
	return &ReportSnapshotJob{
		repo:   repo,
		scores: scores,
		config: cfg,
		logger: log,
	}
}

// Name returns the job name
func (j *ReportSnapshotJob) Name() string {
	return "report_snapshot"
}

// Schedule returns the cron schedule (with seconds)
func (j *ReportSnapshotJob) Schedule() string {
	return j.config.Scheduler.ReportSpec
}

// Run generates a report over the configured window and logs the headline numbers
func (j *ReportSnapshotJob) Run(ctx context.Context) error {
	history, err := j.repo.History(ctx, j.config.Challenge.HistoryDays)
	if err != nil {
		return fmt.Errorf("load challenge history: %w", err)
	}

	rep := report.NewEngine(contracts.DefaultReportOptions()).Generate(history)

	score, err := j.scores.Score(ctx)
	if err != nil {
		return fmt.Errorf("load score: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"completed_challenges": rep.CompletedChallenges,
		"wins":                 rep.Wins,
		"win_rate":             rep.WinRate,
		"trend":                string(rep.TrendSignal),
		"score":                score,
	}).Info("Report snapshot")
	return nil
}
