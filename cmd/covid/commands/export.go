package commands

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/covidtrend/internal/contracts"
	"github.com/wonny/covidtrend/internal/query"
	"github.com/wonny/covidtrend/internal/rates"
	"github.com/wonny/covidtrend/internal/report"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "XLSX 리포트 내보내기",
	Long: `지역(또는 전국) 시계열, 증가율, 완치율, 예측, 지역 요약을
하나의 XLSX 워크북으로 저장합니다.
이력이 짧아 예측이 불가능하면 Forecast 시트는 비워 둡니다.

Example:
  go run ./cmd/covid export --out report.xlsx
  go run ./cmd/covid export --state Kerala --days 14 --out kerala.xlsx`,
	RunE: runExport,
}

var (
	exportState string
	exportStart string
	exportEnd   string
	exportDays  int
	exportOut   string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportState, "state", "", "지역 (빈 값 = 전국)")
	exportCmd.Flags().StringVar(&exportStart, "start", "", "시작일 YYYY-MM-DD")
	exportCmd.Flags().StringVar(&exportEnd, "end", "", "종료일 YYYY-MM-DD")
	exportCmd.Flags().IntVar(&exportDays, "days", 0, "예측 일수 (0 = 기본값)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "출력 XLSX 경로")
	_ = exportCmd.MarkFlagRequired("out")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := cliBootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	series, err := a.facade.Series(ctx, query.DataRequest{
		Region: exportState,
		Start:  exportStart,
		End:    exportEnd,
	})
	if err != nil {
		return err
	}

	precision := a.model.Rates.Precision
	in := report.Input{
		Series:    series,
		Growth:    rates.Round(rates.GrowthRate(series), precision),
		Recovery:  rates.Round(rates.RecoveryRate(series), precision),
		Summaries: a.facade.RegionSummaries(ctx).Summaries,
	}

	fc, err := a.facade.Forecast(ctx, query.PredictionRequest{
		Region:      exportState,
		HorizonDays: flagInt(exportDays),
	})
	switch {
	case err == nil:
		in.Forecast = &fc
	case errors.Is(err, contracts.ErrInsufficientData):
		a.log.WithError(err).Warn("Forecast sheet left empty")
	default:
		return err
	}

	if err := report.Save(exportOut, in); err != nil {
		return err
	}

	PrintDone(os.Stdout, "Report for %s written to %s", contracts.RegionLabel(exportState), exportOut)
	return nil
}
