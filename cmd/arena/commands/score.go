package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "누적 승수 조회",
	Long: `누적 승리 횟수를 조회합니다.

챌린지에서 10개 중 7개 이상 적중하면 1승으로 기록됩니다.

Example:
  go run ./cmd/arena score`,
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	d, err := initDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.close()

	score, err := d.repo.Score(cmd.Context())
	if err != nil {
		return fmt.Errorf("get score: %w", err)
	}

	fmt.Printf("Total wins: %d\n", score)
	return nil
}
