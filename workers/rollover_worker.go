// Package workers runs the background jobs of the tracker service.
package workers

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/cppla/deltatracker/achievements"
	"github.com/cppla/deltatracker/gameday"
)

// rolloverDelay is how long after the boundary the tick fires. Client events
// stamped by a clock running up to this much behind still land in the old day.
const rolloverDelay = time.Minute

// RolloverChecker is the part of the engine the worker drives.
type RolloverChecker interface {
	CheckRollover(ctx context.Context, ts time.Time) ([]achievements.Unlock, error)
}

// RolloverWorker closes out the previous game-day every morning so day-scoped
// achievements unlock even when no event arrives after the boundary.
type RolloverWorker struct {
	engine   RolloverChecker
	loc      *time.Location
	log      *zap.Logger
	now      func() time.Time
	sched    gocron.Scheduler
	onRolled func()
	timeout  time.Duration
}

// NewRolloverWorker creates a worker. onRolled, when set, runs after every
// successful tick.
func NewRolloverWorker(engine RolloverChecker, loc *time.Location, log *zap.Logger, onRolled func()) *RolloverWorker {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RolloverWorker{
		engine:   engine,
		loc:      loc,
		log:      log,
		now:      time.Now,
		onRolled: onRolled,
		timeout:  30 * time.Second,
	}
}

// Start schedules the daily job at the game-day boundary in the worker's timezone.
func (w *RolloverWorker) Start() error {
	sched, err := gocron.NewScheduler(gocron.WithLocation(w.loc))
	if err != nil {
		return err
	}
	h, m, sec := tickAt()
	_, err = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(h, m, sec))),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
			defer cancel()
			w.Tick(ctx)
		}),
		gocron.WithName("gameday-rollover"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return err
	}
	sched.Start()
	w.sched = sched
	w.log.Info("rollover worker started",
		zap.String("location", w.loc.String()), zap.Int("hour", gameday.StartHour))
	return nil
}

// tickAt returns the local wall time of the daily tick.
func tickAt() (hour, minute, second uint) {
	d := time.Duration(gameday.StartHour)*time.Hour + rolloverDelay
	return uint(d / time.Hour), uint(d % time.Hour / time.Minute), uint(d % time.Minute / time.Second)
}

// Tick runs one rollover check at the current time.
func (w *RolloverWorker) Tick(ctx context.Context) {
	now := w.now()
	unlocks, err := w.engine.CheckRollover(ctx, now)
	if err != nil {
		w.log.Error("scheduled rollover failed", zap.Time("at", now), zap.Error(err))
		return
	}
	w.log.Info("scheduled rollover",
		zap.String("gameday", gameday.Label(now, w.loc)), zap.Int("unlocked", len(unlocks)))
	if w.onRolled != nil {
		w.onRolled()
	}
}

// Stop shuts the scheduler down and waits for a running tick.
func (w *RolloverWorker) Stop() error {
	if w.sched == nil {
		return nil
	}
	err := w.sched.Shutdown()
	w.sched = nil
	return err
}
