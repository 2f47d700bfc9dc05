package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/covidtrend/internal/contracts"
	"github.com/wonny/covidtrend/internal/query"
)

// dataCheckCmd represents the data check command
var dataCheckCmd = &cobra.Command{
	Use:   "data-check",
	Short: "데이터셋 상태 확인",
	Long: `데이터셋을 로드하고 상태를 출력합니다.

확인 항목:
- 행 수 / 필터로 제외된 행 수
- 지역 수
- 기간 (첫 날짜 ~ 마지막 날짜)
- 전국 합계 최신값
- 예측 가능한 지역 수 (min_history 이상)

형식 오류(DataLoadError) 시 non-zero 로 종료합니다.

Example:
  go run ./cmd/covid data-check --source data/covid_19_india.csv`,
	RunE: runDataCheck,
}

func init() {
	rootCmd.AddCommand(dataCheckCmd)
}

func runDataCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := cliBootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out := os.Stdout
	stats := a.store.Stats()

	PrintHeader(out, "Dataset check",
		KV("Source", a.cfg.Dataset.Source),
		KV("Country", a.cfg.Dataset.Country),
	)

	fmt.Fprintf(out, "  Rows      : %d (skipped %d)\n", stats.Rows, stats.Skipped)
	fmt.Fprintf(out, "  Regions   : %d\n", stats.Regions)
	if stats.FirstDate.IsZero() {
		fmt.Fprintln(out, "  Period    : (empty)")
		return nil
	}
	fmt.Fprintf(out, "  Period    : %s ~ %s\n",
		stats.FirstDate.Format(contracts.DateLayout), stats.LastDate.Format(contracts.DateLayout))

	national, err := a.facade.Series(ctx, query.DataRequest{})
	if err != nil {
		return err
	}
	if last := national.Len() - 1; last >= 0 {
		fmt.Fprintf(out, "  National  : confirmed %d, deaths %d, cured %d\n",
			national.Confirmed[last], national.Deaths[last], national.Cured[last])
	}

	// 예측 가능 여부 (min_history)
	minHistory := a.model.Forecast.MinHistory
	var short []string
	for _, region := range a.store.Regions() {
		s, err := a.facade.Series(ctx, query.DataRequest{Region: region})
		if err != nil {
			return err
		}
		if s.Len() < minHistory {
			short = append(short, region+" ("+strconv.Itoa(s.Len())+"d)")
		}
	}
	fmt.Fprintf(out, "  Forecast  : %d/%d regions have ≥ %d days\n",
		stats.Regions-len(short), stats.Regions, minHistory)
	for _, s := range short {
		fmt.Fprintf(out, "    - %s\n", s)
	}

	PrintDone(out, "Dataset OK")
	return nil
}
