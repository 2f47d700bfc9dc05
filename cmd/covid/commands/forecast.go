package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/wonny/covidtrend/internal/contracts"
	"github.com/wonny/covidtrend/internal/query"
)

// forecastCmd represents the forecast command
var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "확진자 추세 예측",
	Long: `지역(또는 전국)의 누적 확진자를 예측하고 신뢰구간과 함께 출력합니다.
--evaluate 를 주면 마지막 holdout 일을 가리고 예측 정확도를 평가합니다.

Example:
  go run ./cmd/covid forecast --state Kerala --days 14
  go run ./cmd/covid forecast --days 30 --json
  go run ./cmd/covid forecast --state Delhi --evaluate --holdout 7`,
	RunE: runForecast,
}

var (
	forecastState    string
	forecastDays     int
	forecastEvaluate bool
	forecastHoldout  int
	forecastJSON     bool
)

func init() {
	rootCmd.AddCommand(forecastCmd)

	forecastCmd.Flags().StringVar(&forecastState, "state", "", "지역 (빈 값 = 전국)")
	forecastCmd.Flags().IntVar(&forecastDays, "days", 0, "예측 일수 (0 = 모델 기본값)")
	forecastCmd.Flags().BoolVar(&forecastEvaluate, "evaluate", false, "holdout 평가 실행")
	forecastCmd.Flags().IntVar(&forecastHoldout, "holdout", 0, "평가용 holdout 일수 (0 = 모델 기본값)")
	forecastCmd.Flags().BoolVar(&forecastJSON, "json", false, "JSON 으로 출력")
}

// flagInt maps a zero flag to "use the default"
func flagInt(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func runForecast(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := cliBootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if forecastEvaluate {
		eval, err := a.facade.EvaluateForecast(ctx, query.EvaluationRequest{
			Region:      forecastState,
			HoldoutDays: flagInt(forecastHoldout),
		})
		if err != nil {
			return err
		}
		return printEvaluation(eval)
	}

	pred, err := a.facade.GetPredictions(ctx, query.PredictionRequest{
		Region:      forecastState,
		HorizonDays: flagInt(forecastDays),
	})
	if err != nil {
		return err
	}
	if forecastJSON {
		return printJSON(pred)
	}

	rows := make([][]string, 0, len(pred.Dates))
	for i, d := range pred.Dates {
		rows = append(rows, []string{
			d,
			formatFloat(pred.LowerBound[i]),
			formatFloat(pred.Predictions[i]),
			formatFloat(pred.UpperBound[i]),
		})
	}

	PrintHeader(os.Stdout, "Forecast: confirmed cases",
		KV("State", contracts.RegionLabel(forecastState)),
		KV("Days", strconv.Itoa(len(rows))),
		KV("Level", fmt.Sprintf("%.0f%%", a.model.Forecast.ConfidenceLevel*100)),
	)
	return PrintTable(os.Stdout, []string{"Date", "Lower", "Predicted", "Upper"}, rows)
}

func printEvaluation(eval contracts.ForecastEvaluation) error {
	if forecastJSON {
		return printJSON(eval)
	}

	out := os.Stdout
	PrintHeader(out, "Forecast evaluation",
		KV("State", contracts.RegionLabel(eval.Region)),
		KV("Holdout", strconv.Itoa(eval.HoldoutDays)+"d"),
	)
	fmt.Fprintf(out, "  RMSE      : %s\n", formatFloat(eval.RMSE))
	fmt.Fprintf(out, "  MAE       : %s\n", formatFloat(eval.MAE))
	fmt.Fprintf(out, "  R²        : %.4f\n", eval.R2)
	fmt.Fprintf(out, "  Coverage  : %.1f%%\n\n", eval.Coverage*100)

	rows := make([][]string, 0, len(eval.Dates))
	for i, d := range eval.Dates {
		rows = append(rows, []string{d, formatFloat(eval.Actual[i]), formatFloat(eval.Predicted[i])})
	}
	return PrintTable(out, []string{"Date", "Actual", "Predicted"}, rows)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
