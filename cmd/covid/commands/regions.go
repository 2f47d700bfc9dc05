package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// regionsCmd represents the regions command
var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "지역 목록 / 최신 요약",
	Long: `데이터셋의 지역 목록을 알파벳 순으로 출력합니다.
--summary 를 주면 지역별 최신 누적값과 완치율/치명률을 표로 출력합니다.

Example:
  go run ./cmd/covid regions
  go run ./cmd/covid regions --summary`,
	RunE: runRegions,
}

var (
	regionsSummary bool
)

func init() {
	rootCmd.AddCommand(regionsCmd)

	regionsCmd.Flags().BoolVar(&regionsSummary, "summary", false, "지역별 최신 요약 출력")
}

func runRegions(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := cliBootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out := os.Stdout

	if !regionsSummary {
		for _, name := range a.facade.ListRegions(ctx).States {
			fmt.Fprintln(out, name)
		}
		return nil
	}

	summary := a.facade.RegionSummaries(ctx)
	rows := make([][]string, 0, len(summary.Summaries))
	for _, s := range summary.Summaries {
		rows = append(rows, []string{
			s.Region,
			s.LastDate,
			strconv.FormatInt(s.Confirmed, 10),
			strconv.FormatInt(s.Deaths, 10),
			strconv.FormatInt(s.Cured, 10),
			formatFloat(s.RecoveryRate),
			formatFloat(s.FatalityRate),
		})
	}

	PrintHeader(out, "Region summary", KV("Regions", strconv.Itoa(len(rows))))
	return PrintTable(out,
		[]string{"State", "Last date", "Confirmed", "Deaths", "Cured", "Recovery %", "Fatality %"},
		rows)
}
