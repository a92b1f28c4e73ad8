package achievements

import (
	"time"

	"github.com/cppla/deltatracker/gameday"
	"github.com/cppla/deltatracker/models"
	"github.com/shopspring/decimal"
)

const (
	bestUserScans      = 50
	tiltLordTotal      = 20
	altTabActivations  = 5
	readingQuotes      = 10
	paranoiaCheaters   = 5
	redDayReds         = 5
	nightLaunchEndHour = 5
)

var (
	jumpThreshold  = decimal.NewFromInt(3_000_000)
	microThreshold = decimal.NewFromInt(100_000)
)

// checkEndedDay evaluates the day-scoped predicates for the game-day opened at
// ended, before counters are reset for the day opened at next.
func (e *Engine) checkEndedDay(r *run, ended, next time.Time) error {
	scans, err := e.port.QueryScansInRange(r.ctx, ended, gameday.End(ended))
	if err != nil {
		return err
	}
	tilts, err := e.port.GetDailyCounter(r.ctx, models.CounterTiltsToday)
	if err != nil {
		return err
	}
	if len(scans) > 0 && tilts == 0 {
		if err := e.unlock(r, TiltResistant); err != nil {
			return err
		}
	}

	pl, err := e.stats.Last3ActiveDaysPL(r.ctx, next)
	if err != nil {
		return err
	}
	if len(pl) != 3 {
		return nil
	}
	allUp, allDown := true, true
	for _, v := range pl {
		allUp = allUp && v.IsPositive()
		allDown = allDown && v.IsNegative()
	}
	if allUp {
		return e.unlock(r, Hodler)
	}
	if allDown {
		return e.unlock(r, PaperHands)
	}
	return nil
}

// checkScan evaluates scan predicates. prev is the newest scan before rec, nil
// for the very first scan; firstOfDay is true when rec opened its game-day.
func (e *Engine) checkScan(r *run, rec models.ScanRecord, prev *models.ScanRecord, firstOfDay bool) error {
	total, err := e.port.CountScans(r.ctx)
	if err != nil {
		return err
	}
	if total > bestUserScans {
		if err := e.unlock(r, BestUser); err != nil {
			return err
		}
	}

	if prev != nil {
		delta := rec.NumericValue.Sub(prev.NumericValue)
		abs := delta.Abs()
		checks := []struct {
			id uint
			ok bool
		}{
			{IBelieve, delta.GreaterThan(jumpThreshold)},
			{DegenMoment, delta.LessThan(jumpThreshold.Neg())},
			{Microflex, abs.IsPositive() && abs.LessThanOrEqual(microThreshold)},
			{DoubleCheck, within(prev.Timestamp, rec.Timestamp, DoubleCheckWindow)},
		}
		for _, c := range checks {
			if !c.ok {
				continue
			}
			if err := e.unlock(r, c.id); err != nil {
				return err
			}
		}
	}

	if !firstOfDay {
		return nil
	}
	start := gameday.Start(rec.Timestamp, e.loc)
	yesterday, err := e.port.QueryScansInRange(r.ctx, gameday.Previous(start), start)
	if err != nil {
		return err
	}
	if len(yesterday) > 0 && rec.NumericValue.LessThan(yesterday[len(yesterday)-1].NumericValue) {
		return e.unlock(r, BadStart)
	}
	return nil
}

// checkCombo unlocks C-c-combo once today's counters show a cheater, a tilt and a red.
func (e *Engine) checkCombo(r *run) error {
	counters, err := e.port.GetDailyCounters(r.ctx)
	if err != nil {
		return err
	}
	if counters[models.CounterCheatersToday] >= 1 &&
		counters[models.CounterTiltsToday] >= 1 &&
		counters[models.CounterRedsToday] >= 1 {
		return e.unlock(r, Combo)
	}
	return nil
}

// unlockAt unlocks id when value reached threshold.
func (e *Engine) unlockAt(r *run, id uint, value, threshold int64) error {
	if value < threshold {
		return nil
	}
	return e.unlock(r, id)
}
