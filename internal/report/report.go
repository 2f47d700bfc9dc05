// Package report exports series, rates, forecasts and region summaries
// to an XLSX workbook.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/wonny/covidtrend/internal/contracts"
)

// Sheet names
const (
	SheetSeries   = "Series"
	SheetForecast = "Forecast"
	SheetSummary  = "Regions"
)

// Input is everything one workbook contains. Forecast and Summaries are optional.
type Input struct {
	Series    contracts.DailySeries
	Growth    contracts.RateSeries // aligned to Series.Dates[1:]
	Recovery  contracts.RateSeries // aligned to Series.Dates
	Forecast  *contracts.ForecastResult
	Summaries []contracts.RegionSummary
}

// Write renders the workbook to w
func Write(w io.Writer, in Input) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSeries); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeSeries(f, in); err != nil {
		return err
	}

	if in.Forecast != nil {
		if _, err := f.NewSheet(SheetForecast); err != nil {
			return fmt.Errorf("new sheet %s: %w", SheetForecast, err)
		}
		if err := writeForecast(f, *in.Forecast); err != nil {
			return err
		}
	}

	if len(in.Summaries) > 0 {
		if _, err := f.NewSheet(SheetSummary); err != nil {
			return fmt.Errorf("new sheet %s: %w", SheetSummary, err)
		}
		if err := writeSummaries(f, in.Summaries); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// Save writes the workbook to path
func Save(path string, in Input) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	if err := Write(f, in); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeSeries(f *excelize.File, in Input) error {
	s := in.Series
	headers := []string{"Date", "Confirmed", "Deaths", "Cured", "Growth Rate (%)", "Recovery Rate (%)"}
	if err := writeHeader(f, SheetSeries, headers); err != nil {
		return err
	}

	growthByDate := make(map[string]float64, in.Growth.Len())
	for i, d := range in.Growth.Dates {
		growthByDate[d.Format(contracts.DateLayout)] = in.Growth.Rate[i]
	}

	for i, d := range s.Dates {
		row := i + 2
		date := d.Format(contracts.DateLayout)
		values := []interface{}{date, s.Confirmed[i], s.Deaths[i], s.Cured[i]}
		if g, ok := growthByDate[date]; ok {
			values = append(values, g)
		} else {
			values = append(values, nil)
		}
		if i < in.Recovery.Len() {
			values = append(values, in.Recovery.Rate[i])
		}
		if err := writeRow(f, SheetSeries, row, values); err != nil {
			return err
		}
	}
	return nil
}

func writeForecast(f *excelize.File, fr contracts.ForecastResult) error {
	if err := writeHeader(f, SheetForecast, []string{"Date", "Prediction", "Lower Bound", "Upper Bound"}); err != nil {
		return err
	}
	for i, d := range fr.Dates {
		values := []interface{}{d.Format(contracts.DateLayout), fr.Predictions[i], fr.LowerBound[i], fr.UpperBound[i]}
		if err := writeRow(f, SheetForecast, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeSummaries(f *excelize.File, summaries []contracts.RegionSummary) error {
	headers := []string{"State", "Last Date", "Confirmed", "Deaths", "Cured", "Recovery Rate (%)", "Fatality Rate (%)"}
	if err := writeHeader(f, SheetSummary, headers); err != nil {
		return err
	}
	for i, s := range summaries {
		values := []interface{}{s.Region, s.LastDate, s.Confirmed, s.Deaths, s.Cured, s.RecoveryRate, s.FatalityRate}
		if err := writeRow(f, SheetSummary, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("%s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for col, v := range values {
		if v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("%s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}
