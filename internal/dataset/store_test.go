package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/covidtrend/internal/contracts"
)

func series(region string, start string, confirmed ...int64) contracts.DailySeries {
	s := contracts.DailySeries{Region: region}
	d := day(start)
	for i, c := range confirmed {
		s.Dates = append(s.Dates, d.AddDate(0, 0, i))
		s.Confirmed = append(s.Confirmed, c)
		s.Deaths = append(s.Deaths, 0)
		s.Cured = append(s.Cured, c/2)
	}
	return s
}

func TestStore_RegionsSorted(t *testing.T) {
	store := NewStore(
		series("Kerala", "2020-04-01", 1),
		series("Delhi", "2020-04-01", 1),
		series("Assam", "2020-04-01", 1),
	)

	assert.Equal(t, []string{"Assam", "Delhi", "Kerala"}, store.Regions())
}

func TestStore_RegionsReturnsCopy(t *testing.T) {
	store := NewStore(series("Goa", "2020-04-01", 1))

	names := store.Regions()
	names[0] = "mutated"

	assert.Equal(t, []string{"Goa"}, store.Regions())
}

func TestStore_SeriesUnknownRegion(t *testing.T) {
	store := NewStore(series("Goa", "2020-04-01", 1))

	_, err := store.Series("Narnia", nil, nil)

	var unknown *contracts.UnknownRegionError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Narnia", unknown.Region)
}

func TestStore_SeriesInclusiveRange(t *testing.T) {
	store := NewStore(series("Goa", "2020-04-01", 1, 2, 3, 4, 5))
	start, end := day("2020-04-02"), day("2020-04-04")

	got, err := store.Series("Goa", &start, &end)

	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 4}, got.Confirmed)
	assert.Equal(t, start, got.Dates[0])
	assert.Equal(t, end, got.LastDate())
}

func TestStore_SeriesOutOfRangeIsEmpty(t *testing.T) {
	store := NewStore(series("Goa", "2020-04-01", 1, 2, 3))
	start, end := day("2021-01-01"), day("2021-02-01")

	got, err := store.Series("Goa", &start, &end)

	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
	assert.NotNil(t, got.Dates)
	assert.NotNil(t, got.Confirmed)
}

func TestStore_SeriesOpenEndedRange(t *testing.T) {
	store := NewStore(series("Goa", "2020-04-01", 1, 2, 3))
	start := day("2020-04-02")

	got, err := store.Series("Goa", &start, nil)

	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, got.Confirmed)
}

func TestStore_NationalSumsStaggeredRegions(t *testing.T) {
	store := NewStore(
		series("Goa", "2020-04-01", 1, 2, 3),
		series("Delhi", "2020-04-02", 10, 20),
	)

	national, err := store.Series("", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, []int64{1, 12, 23}, national.Confirmed)
	assert.Equal(t, "", national.Region)
}

func TestStore_RegionStoppedReporting(t *testing.T) {
	store := NewStore(
		series("Goa", "2020-04-01", 1, 2),
		series("Delhi", "2020-04-01", 10, 20, 30, 40),
	)

	goa, err := store.Series("Goa", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"2020-04-01", "2020-04-02"}, contracts.FormatDates(goa.Dates))
	assert.Equal(t, []int64{1, 2}, goa.Confirmed)

	// 전국 합계에는 마지막 누적값이 유지됨
	national, err := store.Series("", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 22, 32, 42}, national.Confirmed)
}

func TestStore_SliceDoesNotAliasAppend(t *testing.T) {
	store := NewStore(series("Goa", "2020-04-01", 1, 2, 3))
	start, end := day("2020-04-01"), day("2020-04-02")

	got, _ := store.Series("Goa", &start, &end)
	_ = append(got.Confirmed, 99)

	full, _ := store.Series("Goa", nil, nil)
	assert.Equal(t, []int64{1, 2, 3}, full.Confirmed)
}

func TestOpen_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "covid.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,State,Confirmed,Deaths,Cured\n2020-04-01,Goa,1,0,0\n"), 0o600))

	store, err := Open(context.Background(), path, LoadOptions{}, nil, zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, []string{"Goa"}, store.Regions())
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), LoadOptions{}, nil, zerolog.Nop())

	assert.ErrorIs(t, err, contracts.ErrDataLoad)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type fakeFetcher struct {
	body []byte
	err  error
	url  string
}

func (f *fakeFetcher) Download(_ context.Context, url string) ([]byte, error) {
	f.url = url
	return f.body, f.err
}

func TestOpen_Remote(t *testing.T) {
	fetcher := &fakeFetcher{body: []byte("Date,State,Confirmed,Deaths,Cured\n2020-04-01,Goa,1,0,0\n")}

	store, err := Open(context.Background(), "https://example.org/covid.csv", LoadOptions{}, fetcher, zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, "https://example.org/covid.csv", fetcher.url)
	assert.Equal(t, []string{"Goa"}, store.Regions())
}

func TestOpen_RemoteFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("connection refused")}

	_, err := Open(context.Background(), "http://example.org/covid.csv", LoadOptions{}, fetcher, zerolog.Nop())

	assert.ErrorIs(t, err, contracts.ErrDataLoad)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestStore_StatsFromNewStore(t *testing.T) {
	store := NewStore(series("Goa", "2020-04-01", 1, 2), series("Delhi", "2020-04-01", 1))

	stats := store.Stats()
	assert.Equal(t, 3, stats.Rows)
	assert.Equal(t, 2, stats.Regions)
	assert.Equal(t, day("2020-04-01"), stats.FirstDate)
	assert.Equal(t, day("2020-04-02"), stats.LastDate)
	assert.True(t, stats.LastDate.After(time.Time{}))
}
