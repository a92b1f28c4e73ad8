// Package store persists the event log, daily counters and achievement state.
package store

import (
	"context"
	"time"

	"github.com/cppla/deltatracker/models"
	"github.com/shopspring/decimal"
)

// Port is the narrow storage contract the achievement engine and analytics depend on.
// Range queries are half-open [start, end) and return rows in ascending time order.
type Port interface {
	AppendScan(ctx context.Context, ts time.Time, rawText string, value decimal.Decimal) (models.ScanRecord, error)
	DeleteScan(ctx context.Context, id uint) error
	ClearScans(ctx context.Context) (int64, error)
	CountScans(ctx context.Context) (int64, error)
	GetAllScans(ctx context.Context) ([]models.ScanRecord, error)
	GetRecentScans(ctx context.Context, n int) ([]models.ScanRecord, error)
	GetScansBefore(ctx context.Context, ts time.Time, n int) ([]models.ScanRecord, error)
	QueryScansInRange(ctx context.Context, start, end time.Time) ([]models.ScanRecord, error)

	AppendCounterEvent(ctx context.Context, kind string, ts time.Time) (models.CounterEvent, error)
	DeleteMostRecentCounterEvent(ctx context.Context, kind string, start, end time.Time) (bool, error)
	CountCounterEvents(ctx context.Context, kind string) (int64, error)
	QueryCounterEventsInRange(ctx context.Context, kind string, start, end time.Time) ([]models.CounterEvent, error)
	AppendAppEvent(ctx context.Context, kind string, ts time.Time) (models.AppEvent, error)

	GetDailyCounter(ctx context.Context, key string) (int64, error)
	GetDailyCounters(ctx context.Context) (map[string]int64, error)
	IncrementDailyCounter(ctx context.Context, key string, ts time.Time) (int64, error)
	SetDailyCounter(ctx context.Context, key string, value int64, ts time.Time) error
	ResetAllDailyCounters(ctx context.Context, ts time.Time) error
	LastCounterUpdate(ctx context.Context) (time.Time, bool, error)

	EnsureAchievements(ctx context.Context, ids []uint) error
	IsAchievementUnlocked(ctx context.Context, id uint) (bool, error)
	UnlockIfLocked(ctx context.Context, id uint, ts time.Time) (bool, error)
	GetAllAchievements(ctx context.Context) ([]models.Achievement, error)
	ResetAllAchievements(ctx context.Context) error

	GetEasterEggState(ctx context.Context) (models.EasterEggState, error)
	MarkEasterEggClicked(ctx context.Context, ts time.Time) (bool, error)
}
