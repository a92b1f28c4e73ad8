// Package analytics derives daily profit/loss statistics and scan-to-scan deltas from the scan log.
package analytics

import (
	"sort"
	"time"

	"github.com/cppla/deltatracker/gameday"
	"github.com/cppla/deltatracker/models"
	"github.com/shopspring/decimal"
)

// DayStats summarises the scans of one game-day.
type DayStats struct {
	Start        time.Time       `json:"start"`
	End          time.Time       `json:"end"`
	Label        string          `json:"label"`
	StartBalance decimal.Decimal `json:"start_balance"`
	EndBalance   decimal.Decimal `json:"end_balance"`
	ProfitLoss   decimal.Decimal `json:"profit_loss"`
	Min          decimal.Decimal `json:"min"`
	Max          decimal.Decimal `json:"max"`
	Scans        int             `json:"scans"`
}

// Active reports whether the day has at least one scan.
func (d DayStats) Active() bool { return d.Scans > 0 }

// ComputeStats summarises scans already known to belong to the game-day opened at start.
// scans must be in ascending time order. An empty slice yields zero values.
func ComputeStats(start time.Time, scans []models.ScanRecord) DayStats {
	st := DayStats{
		Start: start,
		End:   gameday.End(start),
		Label: start.Format(gameday.LabelLayout),
		Scans: len(scans),
	}
	if len(scans) == 0 {
		return st
	}
	st.StartBalance = scans[0].NumericValue
	st.EndBalance = scans[len(scans)-1].NumericValue
	st.ProfitLoss = st.EndBalance.Sub(st.StartBalance)
	st.Min, st.Max = scans[0].NumericValue, scans[0].NumericValue
	for _, s := range scans[1:] {
		if s.NumericValue.LessThan(st.Min) {
			st.Min = s.NumericValue
		}
		if s.NumericValue.GreaterThan(st.Max) {
			st.Max = s.NumericValue
		}
	}
	return st
}

// GroupByDay buckets ascending scans into active game-days, oldest day first.
func GroupByDay(scans []models.ScanRecord, loc *time.Location) []DayStats {
	buckets := map[int64][]models.ScanRecord{}
	starts := map[int64]time.Time{}
	for _, s := range scans {
		start := gameday.Start(s.Timestamp, loc)
		k := start.Unix()
		buckets[k] = append(buckets[k], s)
		starts[k] = start
	}
	keys := make([]int64, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]DayStats, 0, len(keys))
	for _, k := range keys {
		day := buckets[k]
		sort.SliceStable(day, func(i, j int) bool { return day[i].Timestamp.Before(day[j].Timestamp) })
		out = append(out, ComputeStats(starts[k], day))
	}
	return out
}

// Best returns the day with the highest P/L; the earliest day wins ties.
func Best(days []DayStats) (DayStats, bool) {
	return pick(days, func(a, b decimal.Decimal) bool { return a.GreaterThan(b) })
}

// Worst returns the day with the lowest P/L; the earliest day wins ties.
func Worst(days []DayStats) (DayStats, bool) {
	return pick(days, func(a, b decimal.Decimal) bool { return a.LessThan(b) })
}

func pick(days []DayStats, better func(a, b decimal.Decimal) bool) (DayStats, bool) {
	if len(days) == 0 {
		return DayStats{}, false
	}
	sel := days[0]
	for _, d := range days[1:] {
		if better(d.ProfitLoss, sel.ProfitLoss) {
			sel = d
		}
	}
	return sel, true
}

// LastActiveDays returns up to n most recent active days, newest first.
func LastActiveDays(days []DayStats, n int) []DayStats {
	out := make([]DayStats, 0, n)
	for i := len(days) - 1; i >= 0 && len(out) < n; i-- {
		if days[i].Active() {
			out = append(out, days[i])
		}
	}
	return out
}
