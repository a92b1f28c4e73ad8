package achievements

import (
	"context"
	"time"

	"github.com/cppla/deltatracker/gameday"
	"github.com/cppla/deltatracker/models"
	"github.com/shopspring/decimal"
)

// RecordScan appends a confirmed balance reading and evaluates the scan predicates.
// Deltas are taken against the newest scan at or before ts, so a backfilled
// reading is compared with what preceded it rather than with a later one.
func (e *Engine) RecordScan(ctx context.Context, ts time.Time, rawText string, value decimal.Decimal) (models.ScanRecord, []Unlock, error) {
	var rec models.ScanRecord
	unlocks, err := e.handle(ctx, ts, func(r *run) error {
		before, err := e.port.GetScansBefore(ctx, ts, 1)
		if err != nil {
			return err
		}
		if rec, err = e.port.AppendScan(ctx, ts, rawText, value); err != nil {
			return err
		}
		var prev *models.ScanRecord
		if len(before) > 0 {
			prev = &before[0]
		}
		firstOfDay := prev == nil || !gameday.Same(prev.Timestamp, ts, e.loc)
		return e.checkScan(r, rec, prev, firstOfDay)
	})
	return rec, unlocks, err
}

// PressTilt records an "I'm tilted" press.
func (e *Engine) PressTilt(ctx context.Context, ts time.Time) ([]Unlock, error) {
	return e.handle(ctx, ts, func(r *run) error {
		if _, err := e.port.AppendCounterEvent(ctx, models.CounterKindTilt, ts); err != nil {
			return err
		}
		if _, err := e.port.IncrementDailyCounter(ctx, models.CounterTiltsToday, ts); err != nil {
			return err
		}
		total, err := e.port.CountCounterEvents(ctx, models.CounterKindTilt)
		if err != nil {
			return err
		}
		if err := e.unlockAt(r, TiltLord, total, tiltLordTotal); err != nil {
			return err
		}
		if within(e.state.AppLaunchedAt, ts, LaunchTiltWindow) {
			if err := e.unlock(r, ConfidenceZero); err != nil {
				return err
			}
		}
		return e.checkCombo(r)
	})
}

// MarkCheater records a cheater mark.
func (e *Engine) MarkCheater(ctx context.Context, ts time.Time) ([]Unlock, error) {
	return e.handle(ctx, ts, func(r *run) error {
		if _, err := e.port.AppendCounterEvent(ctx, models.CounterKindCheater, ts); err != nil {
			return err
		}
		n, err := e.port.IncrementDailyCounter(ctx, models.CounterCheatersToday, ts)
		if err != nil {
			return err
		}
		e.state.LastCheaterMark = ts
		if err := e.unlockAt(r, Paranoia, n, paranoiaCheaters); err != nil {
			return err
		}
		return e.checkCombo(r)
	})
}

// UndoCheater removes today's most recent cheater mark. Undoing within
// UndoWindow of the mark unlocks Not sure. Nothing to undo is not an error.
func (e *Engine) UndoCheater(ctx context.Context, ts time.Time) ([]Unlock, error) {
	return e.handle(ctx, ts, func(r *run) error {
		start, end := gameday.Range(ts, e.loc)
		deleted, err := e.port.DeleteMostRecentCounterEvent(ctx, models.CounterKindCheater, start, end)
		if err != nil || !deleted {
			return err
		}
		mark := e.state.LastCheaterMark
		e.state.LastCheaterMark = time.Time{}
		if within(mark, ts, UndoWindow) {
			return e.unlock(r, NotSure)
		}
		return nil
	})
}

// PressRed records a red item find.
func (e *Engine) PressRed(ctx context.Context, ts time.Time) ([]Unlock, error) {
	return e.handle(ctx, ts, func(r *run) error {
		if _, err := e.port.AppendCounterEvent(ctx, models.CounterKindRed, ts); err != nil {
			return err
		}
		n, err := e.port.IncrementDailyCounter(ctx, models.CounterRedsToday, ts)
		if err != nil {
			return err
		}
		if err := e.unlockAt(r, RedDay, n, redDayReds); err != nil {
			return err
		}
		return e.checkCombo(r)
	})
}

// UndoRed removes today's most recent red item.
func (e *Engine) UndoRed(ctx context.Context, ts time.Time) ([]Unlock, error) {
	return e.handle(ctx, ts, func(r *run) error {
		start, end := gameday.Range(ts, e.loc)
		_, err := e.port.DeleteMostRecentCounterEvent(ctx, models.CounterKindRed, start, end)
		return err
	})
}

// ViewQuote counts a quote view.
func (e *Engine) ViewQuote(ctx context.Context, ts time.Time) ([]Unlock, error) {
	return e.handle(ctx, ts, func(r *run) error {
		n, err := e.port.IncrementDailyCounter(ctx, models.CounterQuotesReadToday, ts)
		if err != nil {
			return err
		}
		return e.unlockAt(r, ReadingEnjoyer, n, readingQuotes)
	})
}

// AppLaunched records a client launch and remembers its time for Confidence Zero.
func (e *Engine) AppLaunched(ctx context.Context, ts time.Time) ([]Unlock, error) {
	return e.handle(ctx, ts, func(r *run) error {
		e.state.AppLaunchedAt = ts
		if _, err := e.port.AppendAppEvent(ctx, models.AppEventLaunch, ts); err != nil {
			return err
		}
		if _, err := e.port.IncrementDailyCounter(ctx, models.CounterAppOpensToday, ts); err != nil {
			return err
		}
		if ts.In(e.loc).Hour() < nightLaunchEndHour {
			return e.unlock(r, JustOneMore)
		}
		return nil
	})
}

// AppActivated records the client window gaining focus.
func (e *Engine) AppActivated(ctx context.Context, ts time.Time) ([]Unlock, error) {
	return e.handle(ctx, ts, func(r *run) error {
		if _, err := e.port.AppendAppEvent(ctx, models.AppEventActivation, ts); err != nil {
			return err
		}
		n, err := e.port.IncrementDailyCounter(ctx, models.CounterAppActivationsToday, ts)
		if err != nil {
			return err
		}
		return e.unlockAt(r, AltTabWarrior, n, altTabActivations)
	})
}

// TapLockedAchievement records a tap on a locked catalog entry. TapThreshold taps
// on the same entry inside a rolling TapWindow unlock Bruteforce. Taps on
// unlocked entries are ignored.
func (e *Engine) TapLockedAchievement(ctx context.Context, ts time.Time, id uint) ([]Unlock, error) {
	if _, ok := Lookup(id); !ok {
		return nil, ErrUnknownAchievement
	}
	return e.handle(ctx, ts, func(r *run) error {
		unlocked, err := e.port.IsAchievementUnlocked(ctx, id)
		if err != nil || unlocked {
			return err
		}
		if e.state.recordTap(id, ts) < TapThreshold {
			return nil
		}
		e.state.clearTaps(id)
		return e.unlock(r, Bruteforce)
	})
}

// ClickEasterEgg unlocks WOA, HOA! on the first click ever.
func (e *Engine) ClickEasterEgg(ctx context.Context, ts time.Time) ([]Unlock, error) {
	return e.handle(ctx, ts, func(r *run) error {
		first, err := e.port.MarkEasterEggClicked(ctx, ts)
		if err != nil || !first {
			return err
		}
		return e.unlock(r, EasterEgg)
	})
}
