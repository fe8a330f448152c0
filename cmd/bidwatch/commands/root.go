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
	Use:   "bidwatch",
	Short: "bidwatch - 공공조달 계약 모니터링 백엔드",
	Long: `bidwatch Unified CLI

나라장터 공공조달 계약 데이터를 기반으로 업체별 수주/매출 분석과
계약 스토어 모니터링을 제공합니다.

Usage:
  go run ./cmd/bidwatch [command]

Examples:
  go run ./cmd/bidwatch api
  go run ./cmd/bidwatch stats --company 한화건설 --from 2022-01 --to 2023-12
  go run ./cmd/bidwatch monitor
  go run ./cmd/bidwatch status`,
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
