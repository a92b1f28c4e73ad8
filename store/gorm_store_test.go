package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cppla/deltatracker/models"
	"github.com/cppla/deltatracker/store"
	"github.com/cppla/deltatracker/store/storetest"
	"github.com/shopspring/decimal"
)

var day = time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

func TestScansRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)

	for i, v := range []int64{1_000_000, 4_200_000, 4_250_000} {
		if _, err := s.AppendScan(ctx, day.Add(time.Duration(i)*time.Hour), "raw", decimal.NewFromInt(v)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if n, err := s.CountScans(ctx); err != nil || n != 3 {
		t.Fatalf("CountScans = %d, %v", n, err)
	}

	recent, err := s.GetRecentScans(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 || !recent[0].NumericValue.Equal(decimal.NewFromInt(4_250_000)) {
		t.Fatalf("recent scans not newest-first: %+v", recent)
	}

	before, err := s.GetScansBefore(ctx, day.Add(90*time.Minute), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(before) != 2 || !before[0].NumericValue.Equal(decimal.NewFromInt(4_200_000)) {
		t.Fatalf("scans before 09:30 must be newest-first and exclude later ones: %+v", before)
	}
	if at, _ := s.GetScansBefore(ctx, day.Add(time.Hour), 1); len(at) != 1 || !at[0].Timestamp.Equal(day.Add(time.Hour)) {
		t.Fatalf("bound is inclusive: %+v", at)
	}

	inRange, err := s.QueryScansInRange(ctx, day, day.Add(2*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(inRange) != 2 || !inRange[0].NumericValue.Equal(decimal.NewFromInt(1_000_000)) {
		t.Fatalf("range must be half-open and ascending: %+v", inRange)
	}

	if err := s.DeleteScan(ctx, recent[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteScan(ctx, recent[0].ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second delete = %v, want ErrNotFound", err)
	}
	removed, err := s.ClearScans(ctx)
	if err != nil || removed != 2 {
		t.Fatalf("ClearScans = %d, %v", removed, err)
	}
}

func TestCountersUpsertAndReset(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)

	for i := 1; i <= 3; i++ {
		v, err := s.IncrementDailyCounter(ctx, models.CounterTiltsToday, day.Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatal(err)
		}
		if v != int64(i) {
			t.Fatalf("increment %d returned %d", i, v)
		}
	}
	if err := s.SetDailyCounter(ctx, models.CounterRedsToday, 7, day); err != nil {
		t.Fatal(err)
	}
	all, err := s.GetDailyCounters(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if all[models.CounterTiltsToday] != 3 || all[models.CounterRedsToday] != 7 || all[models.CounterQuotesReadToday] != 0 {
		t.Fatalf("unexpected counters %v", all)
	}
	last, ok, err := s.LastCounterUpdate(ctx)
	if err != nil || !ok || !last.Equal(day.Add(3*time.Minute)) {
		t.Fatalf("LastCounterUpdate = %v %v %v", last, ok, err)
	}

	resetAt := day.Add(24 * time.Hour)
	if err := s.ResetAllDailyCounters(ctx, resetAt); err != nil {
		t.Fatal(err)
	}
	all, _ = s.GetDailyCounters(ctx)
	for k, v := range all {
		if v != 0 {
			t.Fatalf("counter %s = %d after reset", k, v)
		}
	}
	if last, _, _ := s.LastCounterUpdate(ctx); !last.Equal(resetAt) {
		t.Fatalf("reset must stamp counters, got %v", last)
	}
}

func TestUnknownKeysRejected(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	if _, err := s.IncrementDailyCounter(ctx, "bogus", day); !errors.Is(err, store.ErrUnknownCounterKey) {
		t.Fatalf("increment bogus = %v", err)
	}
	if err := s.SetDailyCounter(ctx, "bogus", 1, day); !errors.Is(err, store.ErrUnknownCounterKey) {
		t.Fatalf("set bogus = %v", err)
	}
	if _, err := s.AppendCounterEvent(ctx, "bogus", day); !errors.Is(err, store.ErrUnknownEventKind) {
		t.Fatalf("append bogus = %v", err)
	}
	if _, err := s.AppendAppEvent(ctx, "bogus", day); !errors.Is(err, store.ErrUnknownEventKind) {
		t.Fatalf("append app bogus = %v", err)
	}
}

func TestUndoDeletesNewestAndDecrements(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	end := day.Add(24 * time.Hour)

	// one cheater mark on the previous day must never be touched
	if _, err := s.AppendCounterEvent(ctx, models.CounterKindCheater, day.Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}
	for _, off := range []time.Duration{time.Minute, 2 * time.Minute} {
		if _, err := s.AppendCounterEvent(ctx, models.CounterKindCheater, day.Add(off)); err != nil {
			t.Fatal(err)
		}
		if _, err := s.IncrementDailyCounter(ctx, models.CounterCheatersToday, day.Add(off)); err != nil {
			t.Fatal(err)
		}
	}

	deleted, err := s.DeleteMostRecentCounterEvent(ctx, models.CounterKindCheater, day, end)
	if err != nil || !deleted {
		t.Fatalf("undo = %v, %v", deleted, err)
	}
	left, _ := s.QueryCounterEventsInRange(ctx, models.CounterKindCheater, day, end)
	if len(left) != 1 || !left[0].Timestamp.Equal(day.Add(time.Minute)) {
		t.Fatalf("newest event should be gone, left %+v", left)
	}
	if v, _ := s.GetDailyCounter(ctx, models.CounterCheatersToday); v != 1 {
		t.Fatalf("counter = %d, want 1", v)
	}

	if _, err := s.DeleteMostRecentCounterEvent(ctx, models.CounterKindCheater, day, end); err != nil {
		t.Fatal(err)
	}
	deleted, err = s.DeleteMostRecentCounterEvent(ctx, models.CounterKindCheater, day, end)
	if err != nil || deleted {
		t.Fatalf("undo with nothing left = %v, %v", deleted, err)
	}
	if v, _ := s.GetDailyCounter(ctx, models.CounterCheatersToday); v != 0 {
		t.Fatalf("counter must floor at 0, got %d", v)
	}
	if n, _ := s.CountCounterEvents(ctx, models.CounterKindCheater); n != 1 {
		t.Fatalf("previous day event must survive, lifetime = %d", n)
	}
}

func TestUnlockIfLockedIsConditional(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	if err := s.EnsureAchievements(ctx, []uint{0, 1, 2}); err != nil {
		t.Fatal(err)
	}
	// seeding twice must not fail or duplicate
	if err := s.EnsureAchievements(ctx, []uint{0, 1, 2}); err != nil {
		t.Fatal(err)
	}

	first, err := s.UnlockIfLocked(ctx, 1, day)
	if err != nil || !first {
		t.Fatalf("first unlock = %v, %v", first, err)
	}
	second, err := s.UnlockIfLocked(ctx, 1, day.Add(time.Hour))
	if err != nil || second {
		t.Fatalf("second unlock = %v, %v", second, err)
	}
	all, err := s.GetAllAchievements(ctx)
	if err != nil || len(all) != 3 {
		t.Fatalf("achievements = %+v, %v", all, err)
	}
	if all[1].UnlockedAt == nil || !all[1].UnlockedAt.Equal(day) {
		t.Fatalf("unlockedAt rewritten: %+v", all[1].UnlockedAt)
	}
	if _, err := s.IsAchievementUnlocked(ctx, 99); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing achievement = %v", err)
	}

	if err := s.ResetAllAchievements(ctx); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.IsAchievementUnlocked(ctx, 1); ok {
		t.Fatalf("reset should re-lock")
	}
}

func TestEasterEggOneShot(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	st, err := s.GetEasterEggState(ctx)
	if err != nil || st.IsClicked {
		t.Fatalf("initial state = %+v, %v", st, err)
	}
	if ok, err := s.MarkEasterEggClicked(ctx, day); err != nil || !ok {
		t.Fatalf("first click = %v, %v", ok, err)
	}
	if ok, err := s.MarkEasterEggClicked(ctx, day.Add(time.Second)); err != nil || ok {
		t.Fatalf("second click = %v, %v", ok, err)
	}
	st, _ = s.GetEasterEggState(ctx)
	if !st.IsClicked || st.ClickedAt == nil || !st.ClickedAt.Equal(day) {
		t.Fatalf("state after click = %+v", st)
	}
}
