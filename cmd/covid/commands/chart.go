package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/covidtrend/internal/charts"
)

// chartCmd represents the chart command
var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "PNG 차트 생성",
	Long: `시계열/증가율/완치율/예측/지역 비교 차트를 PNG 로 저장합니다.

Kinds: timeline, growth-rate, recovery-rate, predictions, comparison

Example:
  go run ./cmd/covid chart --kind timeline --state Kerala --out kerala.png
  go run ./cmd/covid chart --kind predictions --days 14 --out national.png
  go run ./cmd/covid chart --kind comparison --states Kerala,Delhi --out cmp.png`,
	RunE: runChart,
}

var (
	chartKind   string
	chartState  string
	chartStates string
	chartStart  string
	chartEnd    string
	chartDays   int
	chartOut    string
)

func init() {
	rootCmd.AddCommand(chartCmd)

	chartCmd.Flags().StringVar(&chartKind, "kind", string(charts.KindTimeline), "차트 종류")
	chartCmd.Flags().StringVar(&chartState, "state", "", "지역 (빈 값 = 전국)")
	chartCmd.Flags().StringVar(&chartStates, "states", "", "비교할 지역 (콤마 구분, comparison 전용)")
	chartCmd.Flags().StringVar(&chartStart, "start", "", "시작일 YYYY-MM-DD")
	chartCmd.Flags().StringVar(&chartEnd, "end", "", "종료일 YYYY-MM-DD")
	chartCmd.Flags().IntVar(&chartDays, "days", 0, "예측 일수 (predictions 전용, 0 = 기본값)")
	chartCmd.Flags().StringVar(&chartOut, "out", "", "출력 PNG 경로")
	_ = chartCmd.MarkFlagRequired("out")
}

func runChart(cmd *cobra.Command, args []string) error {
	kind, err := charts.ParseKind(chartKind)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := cliBootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var regions []string
	for _, s := range strings.Split(chartStates, ",") {
		if s = strings.TrimSpace(s); s != "" {
			regions = append(regions, s)
		}
	}

	f, err := os.Create(chartOut)
	if err != nil {
		return fmt.Errorf("create %s: %w", chartOut, err)
	}

	err = charts.Render(ctx, f, a.facade, charts.Request{
		Kind:        kind,
		Region:      chartState,
		Regions:     regions,
		Start:       chartStart,
		End:         chartEnd,
		HorizonDays: flagInt(chartDays),
	}, charts.DefaultOptions())
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(chartOut)
		return err
	}

	PrintDone(os.Stdout, "Chart %s written to %s", kind, chartOut)
	return nil
}
