package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/witchakorn/stockarena/internal/challenge"
	"github.com/witchakorn/stockarena/internal/contracts"
)

// challengeCmd represents the challenge command
var challengeCmd = &cobra.Command{
	Use:   "challenge",
	Short: "챌린지 관리",
	Long: `챌린지를 생성, 검증, 조회합니다.

Subcommands:
  create  - 오늘의 챌린지 생성 (10개 종목 예측)
  verify  - 어제 챌린지 검증 (실제 가격으로 채점)
  show    - 최신 챌린지 조회
  history - 챌린지 이력 조회

Example:
  go run ./cmd/arena challenge create
  go run ./cmd/arena challenge verify
  go run ./cmd/arena challenge show`,
}

var (
	challengeDate    string
	challengeTickers string
	historyLimit     int

	challengeCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "오늘의 챌린지 생성",
		Long: `오늘의 예측 챌린지를 생성합니다.

정확히 10개 종목에 대해 예측기를 호출하고 기준 가격을 기록합니다.
이미 생성된 날짜면 기존 챌린지를 그대로 반환합니다.`,
		RunE: createChallenge,
	}

	challengeVerifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "어제 챌린지 검증",
		Long: `pending 상태의 챌린지를 실제 가격으로 채점합니다.

7개 이상 적중 시 승리로 기록되고 누적 점수가 1 오릅니다.`,
		RunE: verifyChallenge,
	}

	challengeShowCmd = &cobra.Command{
		Use:   "show",
		Short: "최신 챌린지 조회",
		RunE:  showChallenge,
	}

	challengeHistoryCmd = &cobra.Command{
		Use:   "history",
		Short: "챌린지 이력 조회",
		RunE:  showHistory,
	}
)

func init() {
	rootCmd.AddCommand(challengeCmd)
	challengeCmd.AddCommand(challengeCreateCmd)
	challengeCmd.AddCommand(challengeVerifyCmd)
	challengeCmd.AddCommand(challengeShowCmd)
	challengeCmd.AddCommand(challengeHistoryCmd)

	// Flags
	challengeCreateCmd.Flags().StringVar(&challengeDate, "date", "", "챌린지 날짜 (YYYY-MM-DD, 기본: 오늘)")
	challengeCreateCmd.Flags().StringVar(&challengeTickers, "tickers", "", "쉼표로 구분된 10개 종목 (기본: 랜덤 선택)")
	challengeVerifyCmd.Flags().StringVar(&challengeDate, "date", "", "검증 대상 날짜 (YYYY-MM-DD, 기본: 어제)")
	challengeHistoryCmd.Flags().IntVar(&historyLimit, "limit", 10, "조회할 챌린지 수")
}

func parseDateFlag(defaultDate time.Time) (time.Time, error) {
	if challengeDate == "" {
		return defaultDate, nil
	}
	parsed, err := time.Parse("2006-01-02", challengeDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", challengeDate)
	}
	return parsed, nil
}

func createChallenge(cmd *cobra.Command, args []string) error {
	fmt.Println("=== StockArena Challenge Create ===")

	d, err := initDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.close()

	date, err := parseDateFlag(time.Now().UTC())
	if err != nil {
		return err
	}

	tickers := challenge.RandomSet()
	if challengeTickers != "" {
		tickers = strings.Split(challengeTickers, ",")
		for i := range tickers {
			tickers[i] = strings.ToUpper(strings.TrimSpace(tickers[i]))
		}
	}

	ch, err := d.lifecycle.Create(cmd.Context(), date, tickers)
	if err != nil {
		return fmt.Errorf("create challenge: %w", err)
	}

	fmt.Printf("\n✅ Challenge for %s (%s)\n\n", ch.ChallengeDate.Format("2006-01-02"), ch.Status)
	printPredictions(ch)
	return nil
}

func verifyChallenge(cmd *cobra.Command, args []string) error {
	fmt.Println("=== StockArena Challenge Verify ===")

	d, err := initDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.close()

	date, err := parseDateFlag(time.Now().UTC().AddDate(0, 0, -1))
	if err != nil {
		return err
	}

	ch, err := d.verifier.Verify(cmd.Context(), date)
	if err != nil {
		return fmt.Errorf("verify challenge: %w", err)
	}
	if ch == nil {
		fmt.Printf("\nNo pending challenge for %s\n", date.Format("2006-01-02"))
		return nil
	}

	outcome := "LOST"
	if *ch.Won {
		outcome = "WON"
	}
	fmt.Printf("\n✅ Challenge %s verified: %s (%d/%d correct)\n\n",
		ch.ChallengeDate.Format("2006-01-02"), outcome, *ch.CorrectCount, contracts.PredictionsPerChallenge)
	printOutcomes(ch)
	return nil
}

func showChallenge(cmd *cobra.Command, args []string) error {
	d, err := initDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.close()

	ch, err := d.lifecycle.Latest(cmd.Context())
	if err != nil {
		return fmt.Errorf("get latest challenge: %w", err)
	}
	if ch == nil {
		fmt.Println("No challenges yet")
		return nil
	}

	fmt.Printf("Challenge %s (%s)\n\n", ch.ChallengeDate.Format("2006-01-02"), ch.Status)
	if ch.Verified() {
		printOutcomes(ch)
	} else {
		printPredictions(*ch)
	}
	return nil
}

func showHistory(cmd *cobra.Command, args []string) error {
	d, err := initDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.close()

	history, err := d.lifecycle.History(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("get history: %w", err)
	}
	if len(history) == 0 {
		fmt.Println("No challenges yet")
		return nil
	}

	fmt.Printf("%-12s %-10s %-8s %s\n", "DATE", "STATUS", "CORRECT", "RESULT")
	for _, ch := range history {
		correct, result := "-", "-"
		if ch.Verified() {
			correct = fmt.Sprintf("%d/%d", *ch.CorrectCount, contracts.PredictionsPerChallenge)
			if *ch.Won {
				result = "WON"
			} else {
				result = "LOST"
			}
		}
		fmt.Printf("%-12s %-10s %-8s %s\n", ch.ChallengeDate.Format("2006-01-02"), ch.Status, correct, result)
	}
	return nil
}

func printPredictions(ch contracts.Challenge) {
	fmt.Printf("%-8s %-6s %-6s %-12s %s\n", "TICKER", "DIR", "CONF", "REF PRICE", "RATIONALE")
	for _, p := range ch.Predictions {
		rationale := p.Rationale
		if len(rationale) > 50 {
			rationale = rationale[:47] + "..."
		}
		fmt.Printf("%-8s %-6s %-6d %-12.2f %s\n", p.Ticker, p.Direction, p.Confidence, p.ReferencePrice, rationale)
	}
}

func printOutcomes(ch *contracts.Challenge) {
	fmt.Printf("%-8s %-6s %-8s %-10s %-10s %-8s %s\n", "TICKER", "PRED", "ACTUAL", "REF", "FINAL", "CHANGE", "RESULT")
	for _, o := range ch.Outcomes {
		result := "MISS"
		if o.Correct {
			result = "HIT"
		}
		if o.Degraded {
			result += " (degraded)"
		}
		fmt.Printf("%-8s %-6s %-8s %-10.2f %-10.2f %+7.2f%% %s\n",
			o.Ticker, o.PredictedDirection, o.ActualDirection, o.ReferencePrice, o.FinalPrice, o.PercentChange, result)
	}
}
