// Package charts renders the dashboard series as PNG images with gonum/plot.
package charts

import (
	"fmt"
	"image/color"
	"io"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/wonny/covidtrend/internal/contracts"
)

// Kind names a chart
type Kind string

const (
	KindTimeline     Kind = "timeline"
	KindGrowthRate   Kind = "growth-rate"
	KindRecoveryRate Kind = "recovery-rate"
	KindPredictions  Kind = "predictions"
	KindComparison   Kind = "comparison"
)

// ParseKind validates a chart kind from a URL or flag
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindTimeline, KindGrowthRate, KindRecoveryRate, KindPredictions, KindComparison:
		return k, nil
	}
	return "", &contracts.InvalidParameterError{Field: "kind", Reason: fmt.Sprintf("unknown chart %q", s)}
}

// Options controls image size
type Options struct {
	Width  vg.Length
	Height vg.Length
}

// DefaultOptions 10x5 inch PNG
func DefaultOptions() Options {
	return Options{Width: 10 * vg.Inch, Height: 5 * vg.Inch}
}

var (
	colorConfirmed = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	colorDeaths    = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	colorCured     = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	colorForecast  = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	colorBand      = color.RGBA{R: 255, G: 127, B: 14, A: 60}
)

// Timeline draws confirmed, deaths and cured over time
func Timeline(w io.Writer, s contracts.DailySeries, opts Options) error {
	if s.IsEmpty() {
		return noData(s.Region, 1)
	}

	p := newPlot(fmt.Sprintf("COVID-19 cases: %s", s.RegionLabel()), "Cases")
	for _, line := range []struct {
		name   string
		values []int64
		color  color.Color
	}{
		{"Confirmed", s.Confirmed, colorConfirmed},
		{"Deaths", s.Deaths, colorDeaths},
		{"Cured", s.Cured, colorCured},
	} {
		l, err := plotter.NewLine(countXYs(s.Dates, line.values))
		if err != nil {
			return fmt.Errorf("timeline %s: %w", line.name, err)
		}
		l.Color = line.color
		l.Width = vg.Points(1.5)
		p.Add(l)
		p.Legend.Add(line.name, l)
	}

	return save(w, p, opts)
}

// Rate draws one percentage series (growth or recovery)
func Rate(w io.Writer, title string, region string, r contracts.RateSeries, opts Options) error {
	if r.Len() == 0 {
		return noData(region, 2)
	}

	p := newPlot(fmt.Sprintf("%s: %s", title, contracts.RegionLabel(region)), "%")
	l, err := plotter.NewLine(rateXYs(r.Dates, r.Rate))
	if err != nil {
		return fmt.Errorf("%s: %w", title, err)
	}
	l.Color = colorConfirmed
	l.Width = vg.Points(1.5)
	p.Add(l)

	return save(w, p, opts)
}

// Forecast draws the history, the projection and its band
func Forecast(w io.Writer, history contracts.DailySeries, f contracts.ForecastResult, opts Options) error {
	if history.IsEmpty() || f.Len() == 0 {
		return noData(history.Region, 1)
	}

	p := newPlot(fmt.Sprintf("Forecast: %s", history.RegionLabel()), "Confirmed (cumulative)")

	// 밴드: 상단 → 하단 역순으로 닫힌 다각형
	band := make(plotter.XYs, 0, 2*f.Len())
	for i := range f.Dates {
		band = append(band, plotter.XY{X: unix(f.Dates[i]), Y: f.UpperBound[i]})
	}
	for i := f.Len() - 1; i >= 0; i-- {
		band = append(band, plotter.XY{X: unix(f.Dates[i]), Y: f.LowerBound[i]})
	}
	poly, err := plotter.NewPolygon(band)
	if err != nil {
		return fmt.Errorf("forecast band: %w", err)
	}
	poly.Color = colorBand
	poly.LineStyle.Width = 0
	p.Add(poly)

	hist, err := plotter.NewLine(countXYs(history.Dates, history.Confirmed))
	if err != nil {
		return fmt.Errorf("forecast history: %w", err)
	}
	hist.Color = colorConfirmed
	hist.Width = vg.Points(1.5)

	pred, err := plotter.NewLine(rateXYs(f.Dates, f.Predictions))
	if err != nil {
		return fmt.Errorf("forecast line: %w", err)
	}
	pred.Color = colorForecast
	pred.Width = vg.Points(1.5)
	pred.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(hist, pred)
	p.Legend.Add("Actual", hist)
	p.Legend.Add("Predicted", pred)
	p.Legend.Add(fmt.Sprintf("%.0f%% interval", f.Model.ConfidenceLevel*100), poly)

	return save(w, p, opts)
}

// Comparison overlays confirmed cases of several regions
func Comparison(w io.Writer, series []contracts.DailySeries, opts Options) error {
	if len(series) == 0 {
		return noData("", 1)
	}

	p := newPlot("Region comparison", "Confirmed (cumulative)")
	for i, s := range series {
		if s.IsEmpty() {
			continue
		}
		l, err := plotter.NewLine(countXYs(s.Dates, s.Confirmed))
		if err != nil {
			return fmt.Errorf("comparison %s: %w", s.RegionLabel(), err)
		}
		l.Color = plotutil.Color(i)
		l.Dashes = plotutil.Dashes(i / len(plotutil.DefaultColors))
		l.Width = vg.Points(1.5)
		p.Add(l)
		p.Legend.Add(s.RegionLabel(), l)
	}

	return save(w, p, opts)
}

func newPlot(title, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = yLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: contracts.DateLayout}
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())
	return p
}

func save(w io.Writer, p *plot.Plot, opts Options) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts = DefaultOptions()
	}
	wt, err := p.WriterTo(opts.Width, opts.Height, "png")
	if err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

func countXYs(dates []time.Time, values []int64) plotter.XYs {
	xys := make(plotter.XYs, len(dates))
	for i := range dates {
		xys[i].X = unix(dates[i])
		xys[i].Y = float64(values[i])
	}
	return xys
}

func rateXYs(dates []time.Time, values []float64) plotter.XYs {
	xys := make(plotter.XYs, len(dates))
	for i := range dates {
		xys[i].X = unix(dates[i])
		xys[i].Y = values[i]
	}
	return xys
}

func unix(t time.Time) float64 {
	return float64(t.Unix())
}

func noData(region string, required int) error {
	return &contracts.InsufficientDataError{Region: region, Have: 0, Required: required}
}
