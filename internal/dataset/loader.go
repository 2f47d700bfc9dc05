package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/covidtrend/internal/contracts"
)

// LoadOptions filter rows while loading
type LoadOptions struct {
	Country string    // Country/Region 필터 (대소문자 무시), 빈 값이면 필터 없음
	MinDate time.Time // zero = unbounded
	MaxDate time.Time // zero = unbounded
}

// column aliases, matched case-insensitively after trimming
var columnAliases = map[string][]string{
	colDate:      {"observationdate", "date"},
	colRegion:    {"province/state", "state/unionterritory", "state", "region"},
	colConfirmed: {"confirmed"},
	colDeaths:    {"deaths"},
	colCured:     {"cured", "recovered"},
	colCountry:   {"country/region", "country"},
}

const (
	colDate      = "date"
	colRegion    = "region"
	colConfirmed = "confirmed"
	colDeaths    = "deaths"
	colCured     = "cured"
	colCountry   = "country"
)

var requiredColumns = []string{colDate, colRegion, colConfirmed, colDeaths, colCured}

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"02-01-2006",
}

// observation is one parsed CSV row
type observation struct {
	date      time.Time
	confirmed int64
	deaths    int64
	cured     int64
}

// regionBuilder accumulates observations for a region in file order
type regionBuilder struct {
	name string
	obs  []observation
}

// Load parses the CSV dataset and builds an immutable Store.
// ⭐ SSOT: 데이터셋 파싱은 여기서만. 실패는 항상 *contracts.DataLoadError
func Load(r io.Reader, opts LoadOptions, log zerolog.Logger) (*Store, error) {
	log = log.With().Str("component", "dataset.loader").Logger()

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &contracts.DataLoadError{Line: 1, Reason: "empty dataset"}
		}
		return nil, &contracts.DataLoadError{Line: 1, Reason: "read header", Err: err}
	}

	index, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	builders := make(map[string]*regionBuilder)
	var (
		rows    int
		skipped int
	)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, &contracts.DataLoadError{Line: parseErr.Line, Reason: "read record", Err: err}
			}
			return nil, &contracts.DataLoadError{Reason: "read record", Err: err}
		}
		line, _ := reader.FieldPos(0)
		if isBlankRecord(record) {
			continue
		}

		if opts.Country != "" {
			if ci, ok := index[colCountry]; ok {
				if !strings.EqualFold(strings.TrimSpace(field(record, ci)), opts.Country) {
					skipped++
					continue
				}
			}
		}

		date, err := parseDate(field(record, index[colDate]))
		if err != nil {
			return nil, &contracts.DataLoadError{Line: line, Reason: "unparseable date", Err: err}
		}
		if (!opts.MinDate.IsZero() && date.Before(opts.MinDate)) ||
			(!opts.MaxDate.IsZero() && date.After(opts.MaxDate)) {
			skipped++
			continue
		}

		obs := observation{date: date}
		counts := []struct {
			col string
			dst *int64
		}{
			{colConfirmed, &obs.confirmed},
			{colDeaths, &obs.deaths},
			{colCured, &obs.cured},
		}
		for _, c := range counts {
			v, err := parseCount(field(record, index[c.col]))
			if err != nil {
				return nil, &contracts.DataLoadError{Line: line, Reason: "malformed " + c.col + " count", Err: err}
			}
			*c.dst = v
		}

		region := strings.TrimSpace(field(record, index[colRegion]))
		b, ok := builders[region]
		if !ok {
			b = &regionBuilder{name: region}
			builders[region] = b
		}
		if n := len(b.obs); n > 0 {
			prev := b.obs[n-1].date
			switch {
			case date.Equal(prev):
				return nil, &contracts.DataLoadError{Line: line,
					Reason: fmt.Sprintf("duplicate observation for %q on %s", contracts.RegionLabel(region), date.Format(contracts.DateLayout))}
			case date.Before(prev):
				return nil, &contracts.DataLoadError{Line: line,
					Reason: fmt.Sprintf("non-monotonic dates for %q: %s after %s", contracts.RegionLabel(region),
						date.Format(contracts.DateLayout), prev.Format(contracts.DateLayout))}
			}
		}
		b.obs = append(b.obs, obs)
		rows++
	}

	if rows == 0 {
		return nil, &contracts.DataLoadError{Reason: fmt.Sprintf("no rows left after filtering (country=%q)", opts.Country)}
	}

	store := build(builders)
	store.stats.Rows = rows
	store.stats.Skipped = skipped

	log.Info().
		Int("rows", rows).
		Int("skipped", skipped).
		Int("regions", len(store.names)).
		Str("first_date", store.stats.FirstDate.Format(contracts.DateLayout)).
		Str("last_date", store.stats.LastDate.Format(contracts.DateLayout)).
		Msg("dataset loaded")

	return store, nil
}

// resolveColumns maps logical columns to header positions
func resolveColumns(header []string) (map[string]int, error) {
	index := make(map[string]int)
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))
		for col, aliases := range columnAliases {
			if _, seen := index[col]; seen {
				continue
			}
			for _, alias := range aliases {
				if name == alias {
					index[col] = i
					break
				}
			}
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &contracts.DataLoadError{Line: 1, Reason: "missing required columns: " + strings.Join(missing, ", ")}
	}
	return index, nil
}

func field(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}

func isBlankRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// parseDate accepts calendar dates and datetimes, truncated to a UTC day
func parseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	// 2020-03-01T10:00:00 / 2020-03-01 10:00:00 → 날짜 부분만
	if len(s) > 10 && (s[10] == 'T' || s[10] == ' ') {
		s = s[:10]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format %q", raw)
}

// parseCount accepts "12", "12.0" and blank (= 0)
func parseCount(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		if v < 0 {
			return 0, fmt.Errorf("negative count %d", v)
		}
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, fmt.Errorf("invalid count %q", raw)
	}
	return int64(math.Round(f)), nil
}
