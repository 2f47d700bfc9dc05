package charts

import (
	"context"
	"io"

	"github.com/wonny/covidtrend/internal/contracts"
	"github.com/wonny/covidtrend/internal/query"
	"github.com/wonny/covidtrend/internal/rates"
)

// Source is what Render reads from (query.Facade)
type Source interface {
	Series(ctx context.Context, req query.DataRequest) (contracts.DailySeries, error)
	Forecast(ctx context.Context, req query.PredictionRequest) (contracts.ForecastResult, error)
}

// Request selects a chart. Regions is used by KindComparison only;
// HorizonDays by KindPredictions only (nil = default horizon).
type Request struct {
	Kind        Kind
	Region      string
	Regions     []string
	Start       string
	End         string
	HorizonDays *int
}

// Render resolves the data for req through src and draws the PNG to w
func Render(ctx context.Context, w io.Writer, src Source, req Request, opts Options) error {
	data := query.DataRequest{Region: req.Region, Start: req.Start, End: req.End}

	switch req.Kind {
	case KindTimeline:
		s, err := src.Series(ctx, data)
		if err != nil {
			return err
		}
		return Timeline(w, s, opts)

	case KindGrowthRate:
		s, err := src.Series(ctx, data)
		if err != nil {
			return err
		}
		return Rate(w, "Growth rate", req.Region, rates.GrowthRate(s), opts)

	case KindRecoveryRate:
		s, err := src.Series(ctx, data)
		if err != nil {
			return err
		}
		return Rate(w, "Recovery rate", req.Region, rates.RecoveryRate(s), opts)

	case KindPredictions:
		f, err := src.Forecast(ctx, query.PredictionRequest{Region: req.Region, HorizonDays: req.HorizonDays})
		if err != nil {
			return err
		}
		history, err := src.Series(ctx, query.DataRequest{Region: req.Region})
		if err != nil {
			return err
		}
		return Forecast(w, history, f, opts)

	case KindComparison:
		if len(req.Regions) == 0 {
			return &contracts.InvalidParameterError{Field: "states", Reason: "at least one state is required"}
		}
		series := make([]contracts.DailySeries, 0, len(req.Regions))
		for _, region := range req.Regions {
			s, err := src.Series(ctx, query.DataRequest{Region: region, Start: req.Start, End: req.End})
			if err != nil {
				return err
			}
			series = append(series, s)
		}
		return Comparison(w, series, opts)
	}

	_, err := ParseKind(string(req.Kind))
	return err
}
