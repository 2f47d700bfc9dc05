package dataset

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/covidtrend/internal/contracts"
)

func day(s string) time.Time {
	t, err := time.Parse(contracts.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func load(t *testing.T, csv string, opts LoadOptions) (*Store, error) {
	t.Helper()
	return Load(strings.NewReader(csv), opts, zerolog.Nop())
}

const indiaCSV = `SNo,ObservationDate,Province/State,Country/Region,Last Update,Confirmed,Deaths,Recovered
1,03/01/2020,Kerala,India,2020-03-01,3,0,3
2,03/01/2020,Delhi,India,2020-03-01,1,0,0
3,03/01/2020,Lombardy,Italy,2020-03-01,1000,20,10
4,03/02/2020,Kerala,India,2020-03-02,3,0,3
5,03/02/2020,Delhi,India,2020-03-02,2,0,0
6,03/03/2020,Kerala,India,2020-03-03,5,0,3
7,03/03/2020,Assam,India,2020-03-03,1,0,0
8,03/04/2020,Kerala,India,2020-03-04,7,1,4
`

func TestLoad_CountryFilterAndAggregate(t *testing.T) {
	store, err := load(t, indiaCSV, LoadOptions{Country: "india"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Assam", "Delhi", "Kerala"}, store.Regions())

	national, err := store.Series("", nil, nil)
	require.NoError(t, err)

	// Delhi stops reporting after 03-02 and is carried forward
	want := []int64{4, 5, 8, 10}
	if diff := cmp.Diff(want, national.Confirmed); diff != "" {
		t.Errorf("national confirmed mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []int64{0, 0, 0, 1}, national.Deaths)
	assert.Equal(t, []int64{3, 3, 3, 4}, national.Cured)

	stats := store.Stats()
	assert.Equal(t, 7, stats.Rows)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, day("2020-03-01"), stats.FirstDate)
	assert.Equal(t, day("2020-03-04"), stats.LastDate)
}

func TestLoad_ForwardFillsGaps(t *testing.T) {
	csv := `Date,State,Confirmed,Deaths,Cured
2020-04-01,Goa,5,0,1
2020-04-04,Goa,9,1,2
`
	store, err := load(t, csv, LoadOptions{})
	require.NoError(t, err)

	goa, err := store.Series("Goa", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"2020-04-01", "2020-04-02", "2020-04-03", "2020-04-04"}, contracts.FormatDates(goa.Dates))
	assert.Equal(t, []int64{5, 5, 5, 9}, goa.Confirmed)
	assert.Equal(t, []int64{0, 0, 0, 1}, goa.Deaths)
}

func TestLoad_RegionEndsAtOwnLastReport(t *testing.T) {
	store, err := load(t, indiaCSV, LoadOptions{Country: "India"})
	require.NoError(t, err)

	delhi, err := store.Series("Delhi", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"2020-03-01", "2020-03-02"}, contracts.FormatDates(delhi.Dates))
	assert.Equal(t, []int64{1, 2}, delhi.Confirmed)

	assam, err := store.Series("Assam", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"2020-03-03"}, contracts.FormatDates(assam.Dates))
}

func TestLoad_HeaderWithBOM(t *testing.T) {
	csv := "\uFEFFDate,State,Confirmed,Deaths,Cured\n2020-04-01,Goa,5,0,1\n"

	store, err := load(t, csv, LoadOptions{})
	require.NoError(t, err)

	goa, err := store.Series("Goa", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, goa.Confirmed)
	assert.Equal(t, day("2020-04-01"), goa.Dates[0])
}

func TestLoad_BlankRegionCountsNationallyOnly(t *testing.T) {
	csv := `Date,State,Confirmed,Deaths,Cured
2020-04-01,Goa,5,0,1
2020-04-01,,2,0,0
`
	store, err := load(t, csv, LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Goa"}, store.Regions())
	national, err := store.Series("", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, national.Confirmed)
}

func TestLoad_DateWindow(t *testing.T) {
	store, err := load(t, indiaCSV, LoadOptions{
		Country: "India",
		MinDate: day("2020-03-02"),
		MaxDate: day("2020-03-03"),
	})
	require.NoError(t, err)

	kerala, err := store.Series("Kerala", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 5}, kerala.Confirmed)
}

func TestLoad_EmptyCountIsZero(t *testing.T) {
	csv := `Date,State,Confirmed,Deaths,Cured
2020-04-01,Goa,5,,
`
	store, err := load(t, csv, LoadOptions{})
	require.NoError(t, err)

	goa, _ := store.Series("Goa", nil, nil)
	assert.Equal(t, []int64{0}, goa.Deaths)
	assert.Equal(t, []int64{0}, goa.Cured)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		csv      string
		wantLine int
		contains string
	}{
		{
			name:     "missing column",
			csv:      "Date,State,Confirmed,Deaths\n2020-04-01,Goa,1,0\n",
			wantLine: 1,
			contains: "cured",
		},
		{
			name:     "bad date",
			csv:      "Date,State,Confirmed,Deaths,Cured\n2020-04-01,Goa,1,0,0\nyesterday,Goa,2,0,0\n",
			wantLine: 3,
			contains: "unparseable date",
		},
		{
			name:     "negative count",
			csv:      "Date,State,Confirmed,Deaths,Cured\n2020-04-01,Goa,-1,0,0\n",
			wantLine: 2,
			contains: "confirmed",
		},
		{
			name:     "malformed count",
			csv:      "Date,State,Confirmed,Deaths,Cured\n2020-04-01,Goa,1,x,0\n",
			wantLine: 2,
			contains: "deaths",
		},
		{
			name:     "duplicate",
			csv:      "Date,State,Confirmed,Deaths,Cured\n2020-04-01,Goa,1,0,0\n2020-04-01,Goa,2,0,0\n",
			wantLine: 3,
			contains: "duplicate",
		},
		{
			name:     "non monotonic",
			csv:      "Date,State,Confirmed,Deaths,Cured\n2020-04-02,Goa,1,0,0\n2020-04-01,Goa,2,0,0\n",
			wantLine: 3,
			contains: "non-monotonic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(t, tt.csv, LoadOptions{})
			require.Error(t, err)

			var loadErr *contracts.DataLoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, tt.wantLine, loadErr.Line)
			assert.Contains(t, err.Error(), tt.contains)
			assert.ErrorIs(t, err, contracts.ErrDataLoad)
		})
	}
}

func TestLoad_EmptyAfterFilter(t *testing.T) {
	_, err := load(t, indiaCSV, LoadOptions{Country: "Atlantis"})

	assert.ErrorIs(t, err, contracts.ErrDataLoad)
}

func TestLoad_EmptyInput(t *testing.T) {
	_, err := load(t, "", LoadOptions{})

	assert.ErrorIs(t, err, contracts.ErrDataLoad)
}

func TestParseDate(t *testing.T) {
	for _, raw := range []string{
		"2020-03-05",
		"03/05/2020",
		"3/5/2020",
		"03/05/20",
		"05-03-2020",
		"2020-03-05T10:15:00",
		"2020-03-05 10:15:00",
	} {
		got, err := parseDate(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, day("2020-03-05"), got, raw)
	}
}

func TestParseCount(t *testing.T) {
	v, err := parseCount("12.0")
	require.NoError(t, err)
	assert.Equal(t, int64(12), v)

	v, err = parseCount("  ")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	_, err = parseCount("-3")
	assert.Error(t, err)
}
