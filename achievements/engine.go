package achievements

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cppla/deltatracker/analytics"
	"github.com/cppla/deltatracker/gameday"
	"github.com/cppla/deltatracker/models"
	"github.com/cppla/deltatracker/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrInvalidTimestamp rejects zero or implausible event times.
	ErrInvalidTimestamp = errors.New("invalid event timestamp")
	// ErrStaleEvent rejects events from a game-day before the last one handled.
	ErrStaleEvent = errors.New("event belongs to an earlier game-day")
	// ErrUnknownAchievement rejects ids outside the catalog.
	ErrUnknownAchievement = errors.New("unknown achievement")
)

var (
	minTimestamp = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	maxTimestamp = time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)
)

// Unlock is the notification emitted once per achievement transition.
type Unlock struct {
	NotificationID string    `json:"notification_id"`
	ID             uint      `json:"id"`
	TitleEN        string    `json:"title_en"`
	TitleRU        string    `json:"title_ru"`
	DescriptionEN  string    `json:"description_en"`
	DescriptionRU  string    `json:"description_ru"`
	Icon           string    `json:"icon"`
	UnlockedAt     time.Time `json:"unlocked_at"`
}

// Engine evaluates achievement predicates for incoming tracker events.
// Handlers are serialized: the rollover check, counter updates and unlocks of one
// event finish before the next event is looked at.
type Engine struct {
	mu       sync.Mutex
	port     store.Port
	stats    *analytics.Aggregator
	loc      *time.Location
	log      *zap.Logger
	hub      *Hub
	state    EngineState
	restored bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocation sets the timezone game-days are computed in.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithNotifier publishes every unlock to hub in addition to returning it.
func WithNotifier(hub *Hub) Option {
	return func(e *Engine) { e.hub = hub }
}

// NewEngine creates an engine on top of the storage port.
func NewEngine(port store.Port, opts ...Option) *Engine {
	e := &Engine{
		port:  port,
		loc:   time.Local,
		log:   zap.NewNop(),
		state: newEngineState(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.stats = analytics.NewAggregator(port, e.loc)
	return e
}

// Location returns the timezone used for game-days.
func (e *Engine) Location() *time.Location { return e.loc }

// Hub returns the configured notifier, nil when none.
func (e *Engine) Hub() *Hub { return e.hub }

// Restore seeds the catalog rows and recovers the last handled game-day from
// the newest counter write, so the first event after a restart on a new day
// still closes out the day that ended.
func (e *Engine) Restore(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.restore(ctx)
}

func (e *Engine) restore(ctx context.Context) error {
	if err := e.port.EnsureAchievements(ctx, IDs()); err != nil {
		return err
	}
	last, ok, err := e.port.LastCounterUpdate(ctx)
	if err != nil {
		return err
	}
	if ok {
		e.state.LastSeenDay = gameday.Start(last, e.loc)
	}
	e.restored = true
	e.log.Info("achievement engine restored",
		zap.Time("last_seen_day", e.state.LastSeenDay), zap.String("location", e.loc.String()))
	return nil
}

// run carries one handler invocation.
type run struct {
	ctx     context.Context
	ts      time.Time
	unlocks []Unlock
}

// handle validates ts, performs the rollover check and then body, all under the engine lock.
// Unlocks that were persisted before a failure are still returned and published.
func (e *Engine) handle(ctx context.Context, ts time.Time, body func(r *run) error) ([]Unlock, error) {
	if ts.IsZero() || ts.Before(minTimestamp) || !ts.Before(maxTimestamp) {
		return nil, ErrInvalidTimestamp
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.restored {
		if err := e.restore(ctx); err != nil {
			return nil, fmt.Errorf("restore engine: %w", err)
		}
	}

	r := &run{ctx: ctx, ts: ts}
	err := e.rollover(r)
	if err == nil && body != nil {
		err = body(r)
	}
	e.publish(r.unlocks)
	if err != nil && !errors.Is(err, ErrStaleEvent) {
		e.log.Error("achievement handler failed", zap.Time("ts", ts), zap.Error(err))
	}
	return r.unlocks, err
}

// rollover closes out the last seen game-day when r.ts belongs to a later one.
// Day-scoped predicates read the counters before they are reset.
func (e *Engine) rollover(r *run) error {
	day := gameday.Start(r.ts, e.loc)
	last := e.state.LastSeenDay

	switch {
	case last.IsZero():
		// stamp the counters so a restart can recover this day
		if err := e.port.ResetAllDailyCounters(r.ctx, r.ts); err != nil {
			return err
		}
		e.state.LastSeenDay = day
		return nil
	case day.Equal(last):
		return nil
	case day.Before(last):
		return ErrStaleEvent
	}

	if err := e.checkEndedDay(r, last, day); err != nil {
		return err
	}
	if err := e.port.ResetAllDailyCounters(r.ctx, r.ts); err != nil {
		return err
	}
	e.log.Info("game-day rollover",
		zap.String("ended", last.Format(gameday.LabelLayout)),
		zap.String("started", day.Format(gameday.LabelLayout)))
	e.state.LastSeenDay = day
	return nil
}

// unlock transitions id if it is still locked and records the notification.
func (e *Engine) unlock(r *run, id uint) error {
	ok, err := e.port.UnlockIfLocked(r.ctx, id, r.ts)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	def, _ := Lookup(id)
	r.unlocks = append(r.unlocks, Unlock{
		NotificationID: uuid.NewString(),
		ID:             id,
		TitleEN:        def.TitleEN,
		TitleRU:        def.TitleRU,
		DescriptionEN:  def.DescriptionEN,
		DescriptionRU:  def.DescriptionRU,
		Icon:           def.Icon,
		UnlockedAt:     r.ts,
	})
	e.log.Info("achievement unlocked", zap.Uint("id", id), zap.String("title", def.TitleEN), zap.Time("at", r.ts))
	return nil
}

func (e *Engine) publish(unlocks []Unlock) {
	if e.hub == nil {
		return
	}
	for _, u := range unlocks {
		e.hub.Publish(u)
	}
}

// CheckRollover runs only the rollover check. The scheduler calls it at the day boundary.
func (e *Engine) CheckRollover(ctx context.Context, ts time.Time) ([]Unlock, error) {
	return e.handle(ctx, ts, nil)
}

// View is a catalog entry merged with its unlock state for display.
type View struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	IsUnlocked  bool       `json:"is_unlocked"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
}

// Achievements returns every entry in lang. Locked entries show the placeholder title and a hidden description.
func (e *Engine) Achievements(ctx context.Context, lang string) ([]View, error) {
	rows, err := e.port.GetAllAchievements(ctx)
	if err != nil {
		return nil, err
	}
	state := make(map[uint]models.Achievement, len(rows))
	for _, a := range rows {
		state[a.ID] = a
	}
	placeholder, _ := Lookup(Hidden)

	out := make([]View, 0, len(catalog))
	for _, def := range catalog {
		v := View{ID: def.ID}
		if a, ok := state[def.ID]; ok && a.IsUnlocked && def.ID != Hidden {
			v.Title, v.Description, v.Icon = def.Title(lang), def.Description(lang), def.Icon
			v.IsUnlocked, v.UnlockedAt = true, a.UnlockedAt
		} else {
			v.Title, v.Description, v.Icon = placeholder.Title(lang), "???", placeholder.Icon
		}
		out = append(out, v)
	}
	return out, nil
}

// Progress returns how many of the Total achievements are unlocked.
func (e *Engine) Progress(ctx context.Context) (int, int, error) {
	rows, err := e.port.GetAllAchievements(ctx)
	if err != nil {
		return 0, Total, err
	}
	n := 0
	for _, a := range rows {
		if a.IsUnlocked && a.ID != Hidden {
			n++
		}
	}
	return n, Total, nil
}

// ResetAll re-locks every achievement and forgets pending anti-spam state. Debug only.
func (e *Engine) ResetAll(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.port.ResetAllAchievements(ctx); err != nil {
		return err
	}
	e.state.taps = make(map[uint][]time.Time)
	e.state.LastCheaterMark = time.Time{}
	e.log.Warn("all achievements reset")
	return nil
}

// State returns a copy of the engine's in-memory state.
func (e *Engine) State() EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.state
	s.taps = nil
	return s
}
