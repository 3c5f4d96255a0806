package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/witchakorn/stockarena/internal/contracts"
	"github.com/witchakorn/stockarena/internal/report"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "정확도 리포트 출력",
	Long: `검증된 챌린지 이력을 집계해 정확도 리포트를 출력합니다.

포함 내용:
- 승률과 정확도 추세
- 종목별 best/worst 랭킹
- 방향별(상승/하락) 정확도
- 신뢰도 구간별 calibration
- 개선 추천 사항

Example:
  go run ./cmd/arena report
  go run ./cmd/arena report --days 60 --top 10`,
	RunE: runReport,
}

var (
	reportDays int
	reportTop  int
)

func init() {
	rootCmd.AddCommand(reportCmd)

	// Flags
	reportCmd.Flags().IntVar(&reportDays, "days", 30, "분석할 이력 일수")
	reportCmd.Flags().IntVar(&reportTop, "top", 5, "best/worst 종목 수")
}

func runReport(cmd *cobra.Command, args []string) error {
	fmt.Println("=== StockArena Accuracy Report ===")

	d, err := initDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.close()

	history, err := d.repo.History(cmd.Context(), reportDays)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	opts := contracts.DefaultReportOptions()
	opts.TopN = reportTop
	rep := report.NewEngine(opts).Generate(history)

	fmt.Printf("\nChallenges: %d total, %d verified (%d won / %d lost, win rate %.1f%%)\n",
		rep.TotalChallenges, rep.CompletedChallenges, rep.Wins, rep.Losses, rep.WinRate)

	if len(rep.AccuracyTrend) > 0 {
		fmt.Println("\nAccuracy trend:")
		for _, p := range rep.AccuracyTrend {
			fmt.Printf("  %s  %5.1f%%  (%d/%d)\n", p.Date, p.Accuracy, p.CorrectCount, contracts.PredictionsPerChallenge)
		}
	}
	if rep.TrendSignal != contracts.TrendNone {
		fmt.Printf("\nTrend signal: %s\n", rep.TrendSignal)
	}

	if len(rep.BestPredictedStocks) > 0 {
		fmt.Println("\nBest predicted stocks:")
		for _, s := range rep.BestPredictedStocks {
			fmt.Printf("  %-8s %5.1f%%  (%d/%d)\n", s.Ticker, s.Accuracy, s.CorrectCount, s.TotalPredictions)
		}
	}
	if len(rep.WorstPredictedStocks) > 0 {
		fmt.Println("\nWorst predicted stocks:")
		for _, s := range rep.WorstPredictedStocks {
			fmt.Printf("  %-8s %5.1f%%  (%d/%d)\n", s.Ticker, s.Accuracy, s.CorrectCount, s.TotalPredictions)
		}
	}

	da := rep.DirectionalAccuracy
	fmt.Printf("\nDirectional accuracy: up %.1f%% (%d/%d), down %.1f%% (%d/%d)\n",
		da.UpAccuracy, da.CorrectUpPredictions, da.UpPredictions,
		da.DownAccuracy, da.CorrectDownPredictions, da.DownPredictions)

	if len(rep.ConfidenceAnalysis) > 0 {
		fmt.Println("\nConfidence calibration:")
		for _, b := range rep.ConfidenceAnalysis {
			fmt.Printf("  %-10s %5.1f%%  (%d/%d)\n", b.Range, b.Accuracy, b.Correct, b.Predictions)
		}
	}

	fmt.Println("\nRecommendations:")
	for _, rec := range rep.Recommendations {
		fmt.Printf("  - %s\n", rec)
	}

	return nil
}
