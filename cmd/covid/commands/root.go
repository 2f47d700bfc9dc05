package commands

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	sourceFlag      string
	modelConfigFlag string
	verbose         bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "covid",
	Short: "covidtrend - COVID-19 시계열 분석 엔진",
	Long: `covidtrend Unified CLI

누적 확진/사망/완치 CSV를 읽어 지역별 시계열, 증가율, 완치율,
이동평균, 추세 예측(신뢰구간 포함)을 제공합니다.

Usage:
  go run ./cmd/covid [command]

Examples:
  go run ./cmd/covid api
  go run ./cmd/covid data-check --source data/covid_19_india.csv
  go run ./cmd/covid forecast --state Kerala --days 14
  go run ./cmd/covid chart --kind predictions --state Kerala --out kerala.png
  go run ./cmd/covid export --out report.xlsx`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&sourceFlag, "source", "", "dataset CSV path or URL (default is DATASET_SOURCE)")
	rootCmd.PersistentFlags().StringVar(&modelConfigFlag, "model-config", "", "model YAML (default is MODEL_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logs)")
}
