package contracts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(d int) time.Time {
	return time.Date(2020, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestDailySeries_Slice(t *testing.T) {
	s := DailySeries{
		Region:    "Kerala",
		Dates:     []time.Time{day(1), day(2), day(3), day(4)},
		Confirmed: []int64{1, 2, 3, 4},
		Deaths:    []int64{0, 0, 0, 1},
		Cured:     []int64{0, 1, 1, 2},
	}

	sub := s.Slice(1, 3)
	assert.Equal(t, 2, sub.Len())
	assert.Equal(t, "Kerala", sub.Region)
	assert.Equal(t, []int64{2, 3}, sub.Confirmed)
	assert.Equal(t, day(3), sub.LastDate())

	// appending to a slice must not clobber the parent
	sub.Confirmed = append(sub.Confirmed, 99)
	assert.Equal(t, int64(4), s.Confirmed[3])
}

func TestDailySeries_Empty(t *testing.T) {
	var s DailySeries
	assert.True(t, s.IsEmpty())
	assert.True(t, s.LastDate().IsZero())
	assert.Equal(t, NationalRegion, s.RegionLabel())
	assert.Empty(t, s.ConfirmedFloat())
}

func TestFormatDates(t *testing.T) {
	assert.Equal(t, []string{"2020-03-01", "2020-03-02"}, FormatDates([]time.Time{day(1), day(2)}))
	assert.NotNil(t, FormatDates(nil))
}
