package analytics

import (
	"context"
	"time"

	"github.com/cppla/deltatracker/gameday"
	"github.com/cppla/deltatracker/models"
	"github.com/cppla/deltatracker/store"
	"github.com/shopspring/decimal"
)

// Aggregator answers analytics queries against the storage port.
type Aggregator struct {
	port store.Port
	loc  *time.Location
}

// NewAggregator binds the aggregator to a store and the timezone game-days are cut in.
func NewAggregator(port store.Port, loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	return &Aggregator{port: port, loc: loc}
}

// Location returns the timezone used for game-day boundaries.
func (a *Aggregator) Location() *time.Location { return a.loc }

// DailyStats returns statistics for the game-day containing t.
func (a *Aggregator) DailyStats(ctx context.Context, t time.Time) (DayStats, error) {
	start, end := gameday.Range(t, a.loc)
	scans, err := a.port.QueryScansInRange(ctx, start, end)
	if err != nil {
		return DayStats{}, err
	}
	return ComputeStats(start, scans), nil
}

// Days returns every active game-day, oldest first.
func (a *Aggregator) Days(ctx context.Context) ([]DayStats, error) {
	scans, err := a.port.GetAllScans(ctx)
	if err != nil {
		return nil, err
	}
	return GroupByDay(scans, a.loc), nil
}

// BestDay returns the active day with the highest P/L; ok is false without scans.
func (a *Aggregator) BestDay(ctx context.Context) (DayStats, bool, error) {
	days, err := a.Days(ctx)
	if err != nil {
		return DayStats{}, false, err
	}
	d, ok := Best(days)
	return d, ok, nil
}

// WorstDay returns the active day with the lowest P/L; ok is false without scans.
func (a *Aggregator) WorstDay(ctx context.Context) (DayStats, bool, error) {
	days, err := a.Days(ctx)
	if err != nil {
		return DayStats{}, false, err
	}
	d, ok := Worst(days)
	return d, ok, nil
}

// Last3ActiveDaysPL returns the P/L of the three most recent active days that
// started before the given instant, newest first. Fewer than three values come
// back when history is short; streak checks must require exactly three.
func (a *Aggregator) Last3ActiveDaysPL(ctx context.Context, before time.Time) ([]decimal.Decimal, error) {
	scans, err := a.port.QueryScansInRange(ctx, time.Unix(0, 0), before)
	if err != nil {
		return nil, err
	}
	days := LastActiveDays(GroupByDay(scans, a.loc), 3)
	out := make([]decimal.Decimal, 0, len(days))
	for _, d := range days {
		out = append(out, d.ProfitLoss)
	}
	return out, nil
}

// History returns up to limit delta rows, newest first. One extra scan is read
// so the oldest displayed row still gets a delta when older history exists.
func (a *Aggregator) History(ctx context.Context, limit int) ([]DeltaRow, error) {
	scans, err := a.port.GetRecentScans(ctx, limit+1)
	if err != nil {
		return nil, err
	}
	rows := DeltaRows(scans)
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// Summary is the dashboard payload.
type Summary struct {
	CurrentBalance  *decimal.Decimal `json:"current_balance"`
	HighestBalance  *decimal.Decimal `json:"highest_balance"`
	Today           DayStats         `json:"today"`
	BestDay         *DayStats        `json:"best_day"`
	WorstDay        *DayStats        `json:"worst_day"`
	TotalScans      int64            `json:"total_scans"`
	ActiveDays      int              `json:"active_days"`
	LifetimeTilts   int64            `json:"lifetime_tilts"`
	LifetimeCheater int64            `json:"lifetime_cheaters"`
	LifetimeReds    int64            `json:"lifetime_reds"`
	Counters        map[string]int64 `json:"counters"`
}

// Dashboard assembles the summary for the game-day containing now.
func (a *Aggregator) Dashboard(ctx context.Context, now time.Time) (Summary, error) {
	var sum Summary
	scans, err := a.port.GetAllScans(ctx)
	if err != nil {
		return sum, err
	}
	sum.TotalScans = int64(len(scans))
	if len(scans) > 0 {
		cur := scans[len(scans)-1].NumericValue
		hi := scans[0].NumericValue
		for _, s := range scans[1:] {
			if s.NumericValue.GreaterThan(hi) {
				hi = s.NumericValue
			}
		}
		sum.CurrentBalance, sum.HighestBalance = &cur, &hi
	}

	days := GroupByDay(scans, a.loc)
	sum.ActiveDays = len(days)
	if d, ok := Best(days); ok {
		sum.BestDay = &d
	}
	if d, ok := Worst(days); ok {
		sum.WorstDay = &d
	}

	start := gameday.Start(now, a.loc)
	sum.Today = ComputeStats(start, nil)
	for _, d := range days {
		if d.Start.Equal(start) {
			sum.Today = d
		}
	}

	lifetime := map[string]*int64{
		models.CounterKindTilt:    &sum.LifetimeTilts,
		models.CounterKindCheater: &sum.LifetimeCheater,
		models.CounterKindRed:     &sum.LifetimeReds,
	}
	for kind, dst := range lifetime {
		n, err := a.port.CountCounterEvents(ctx, kind)
		if err != nil {
			return sum, err
		}
		*dst = n
	}

	if sum.Counters, err = a.port.GetDailyCounters(ctx); err != nil {
		return sum, err
	}
	return sum, nil
}
