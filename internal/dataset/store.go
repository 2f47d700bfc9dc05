package dataset

import (
	"sort"
	"time"

	"github.com/wonny/covidtrend/internal/contracts"
)

// Stats describes what was loaded
type Stats struct {
	Rows      int       `json:"rows"`
	Skipped   int       `json:"skipped"`
	Regions   int       `json:"regions"`
	FirstDate time.Time `json:"first_date"`
	LastDate  time.Time `json:"last_date"`
}

// Store is the read-only, per-region index of daily series.
// ⭐ SSOT: Load 이후 절대 변경되지 않음 → 동시 읽기에 락 불필요
type Store struct {
	national contracts.DailySeries
	regions  map[string]contracts.DailySeries
	names    []string
	stats    Stats
}

// NewStore builds a Store from already dense series (tests, fixtures).
// The national aggregate is derived from the regions.
func NewStore(series ...contracts.DailySeries) *Store {
	builders := make(map[string]*regionBuilder, len(series))
	for _, s := range series {
		b := &regionBuilder{name: s.Region}
		for i := range s.Dates {
			b.obs = append(b.obs, observation{
				date:      s.Dates[i],
				confirmed: s.Confirmed[i],
				deaths:    s.Deaths[i],
				cured:     s.Cured[i],
			})
		}
		builders[s.Region] = b
	}
	store := build(builders)
	for _, s := range series {
		store.stats.Rows += s.Len()
	}
	return store
}

// Series returns the region's series restricted to [start, end] (inclusive).
// Empty region → national aggregate. The result is read-only.
func (s *Store) Series(region string, start, end *time.Time) (contracts.DailySeries, error) {
	full := s.national
	if region != "" {
		var ok bool
		full, ok = s.regions[region]
		if !ok {
			return contracts.DailySeries{}, &contracts.UnknownRegionError{Region: region}
		}
	}

	from, to := 0, full.Len()
	if start != nil {
		from = sort.Search(full.Len(), func(i int) bool { return !full.Dates[i].Before(*start) })
	}
	if end != nil {
		to = sort.Search(full.Len(), func(i int) bool { return full.Dates[i].After(*end) })
	}
	if from >= to {
		return emptySeries(full.Region), nil
	}
	return full.Slice(from, to), nil
}

// HasRegion reports whether region is known ("" is always known)
func (s *Store) HasRegion(region string) bool {
	if region == "" {
		return true
	}
	_, ok := s.regions[region]
	return ok
}

// Regions returns region names in alphabetical order
func (s *Store) Regions() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Stats returns load statistics
func (s *Store) Stats() Stats {
	return s.stats
}

func emptySeries(region string) contracts.DailySeries {
	return contracts.DailySeries{
		Region:    region,
		Dates:     []time.Time{},
		Confirmed: []int64{},
		Deaths:    []int64{},
		Cured:     []int64{},
	}
}

// build densifies every region between its own first and last report and
// sums the national aggregate. A region that stopped reporting keeps its last
// cumulative value in the national sum up to the global last date.
func build(builders map[string]*regionBuilder) *Store {
	store := &Store{regions: make(map[string]contracts.DailySeries)}

	var first, last time.Time
	for _, b := range builders {
		if len(b.obs) == 0 {
			continue
		}
		if f := b.obs[0].date; first.IsZero() || f.Before(first) {
			first = f
		}
		if l := b.obs[len(b.obs)-1].date; l.After(last) {
			last = l
		}
	}

	if first.IsZero() {
		store.national = emptySeries("")
		return store
	}

	days := daysBetween(first, last) + 1
	national := contracts.DailySeries{
		Dates:     make([]time.Time, days),
		Confirmed: make([]int64, days),
		Deaths:    make([]int64, days),
		Cured:     make([]int64, days),
	}
	for i := range national.Dates {
		national.Dates[i] = first.AddDate(0, 0, i)
	}

	for name, b := range builders {
		if len(b.obs) == 0 {
			continue
		}
		dense := densify(b, b.obs[len(b.obs)-1].date)
		offset := daysBetween(first, dense.Dates[0])
		tail := dense.Len() - 1
		for i := offset; i < days; i++ {
			j := min(i-offset, tail)
			national.Confirmed[i] += dense.Confirmed[j]
			national.Deaths[i] += dense.Deaths[j]
			national.Cured[i] += dense.Cured[j]
		}
		// 지역명이 빈 행은 전국 합계에만 반영
		if name != "" {
			store.regions[name] = dense
			store.names = append(store.names, name)
		}
	}
	sort.Strings(store.names)

	store.national = national
	store.stats.Regions = len(store.names)
	store.stats.FirstDate = first
	store.stats.LastDate = last
	return store
}

// densify expands observations to one entry per day up to last, carrying
// cumulative counts forward over internal gaps
func densify(b *regionBuilder, last time.Time) contracts.DailySeries {
	start := b.obs[0].date
	days := daysBetween(start, last) + 1
	s := contracts.DailySeries{
		Region:    b.name,
		Dates:     make([]time.Time, days),
		Confirmed: make([]int64, days),
		Deaths:    make([]int64, days),
		Cured:     make([]int64, days),
	}

	j := 0
	var cur observation
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i)
		if j < len(b.obs) && b.obs[j].date.Equal(d) {
			cur = b.obs[j]
			j++
		}
		s.Dates[i] = d
		s.Confirmed[i] = cur.confirmed
		s.Deaths[i] = cur.deaths
		s.Cured[i] = cur.cured
	}
	return s
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
