package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "arena",
	Short: "StockArena - AI 주가 예측 챌린지 시스템",
	Long: `StockArena Unified CLI

매일 10개 종목의 방향을 예측하고 다음 날 실제 가격으로 채점하는
예측 챌린지 시스템.

Usage:
  go run ./cmd/arena [command]

Examples:
  go run ./cmd/arena api
  go run ./cmd/arena scheduler start
  go run ./cmd/arena challenge create
  go run ./cmd/arena report`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
