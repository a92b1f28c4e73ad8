package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cppla/deltatracker/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Port on top of gorm. All timestamps are written in UTC
// so range comparisons stay correct on drivers that store time as text.
type GormStore struct {
	db *gorm.DB
}

var _ Port = (*GormStore)(nil)

// NewGormStore wraps an opened gorm handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// DB exposes the underlying handle for health checks.
func (s *GormStore) DB() *gorm.DB { return s.db }

func (s *GormStore) tx(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// AppendScan persists a new scan record.
func (s *GormStore) AppendScan(ctx context.Context, ts time.Time, rawText string, value decimal.Decimal) (models.ScanRecord, error) {
	rec := models.ScanRecord{Timestamp: ts.UTC(), RawText: rawText, NumericValue: value}
	if err := s.tx(ctx).Create(&rec).Error; err != nil {
		return models.ScanRecord{}, fmt.Errorf("append scan: %w", err)
	}
	return rec, nil
}

// DeleteScan removes a single scan.
func (s *GormStore) DeleteScan(ctx context.Context, id uint) error {
	res := s.tx(ctx).Delete(&models.ScanRecord{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete scan %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearScans deletes every scan and reports how many were removed. Achievements are untouched.
func (s *GormStore) ClearScans(ctx context.Context) (int64, error) {
	res := s.tx(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.ScanRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("clear scans: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// CountScans returns the lifetime number of scans.
func (s *GormStore) CountScans(ctx context.Context) (int64, error) {
	var n int64
	if err := s.tx(ctx).Model(&models.ScanRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count scans: %w", err)
	}
	return n, nil
}

// GetAllScans returns every scan, oldest first.
func (s *GormStore) GetAllScans(ctx context.Context) ([]models.ScanRecord, error) {
	var out []models.ScanRecord
	if err := s.tx(ctx).Order("timestamp ASC, id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("load scans: %w", err)
	}
	return out, nil
}

// GetRecentScans returns up to n scans, newest first.
func (s *GormStore) GetRecentScans(ctx context.Context, n int) ([]models.ScanRecord, error) {
	if n <= 0 {
		return nil, nil
	}
	var out []models.ScanRecord
	if err := s.tx(ctx).Order("timestamp DESC, id DESC").Limit(n).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("load recent scans: %w", err)
	}
	return out, nil
}

// GetScansBefore returns up to n scans taken at or before ts, newest first.
func (s *GormStore) GetScansBefore(ctx context.Context, ts time.Time, n int) ([]models.ScanRecord, error) {
	if n <= 0 {
		return nil, nil
	}
	var out []models.ScanRecord
	err := s.tx(ctx).
		Where("timestamp <= ?", ts.UTC()).
		Order("timestamp DESC, id DESC").
		Limit(n).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("load scans before %s: %w", ts.Format(time.RFC3339), err)
	}
	return out, nil
}

// QueryScansInRange returns scans with start <= timestamp < end, oldest first.
func (s *GormStore) QueryScansInRange(ctx context.Context, start, end time.Time) ([]models.ScanRecord, error) {
	var out []models.ScanRecord
	err := s.tx(ctx).
		Where("timestamp >= ? AND timestamp < ?", start.UTC(), end.UTC()).
		Order("timestamp ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("query scans: %w", err)
	}
	return out, nil
}

// AppendCounterEvent records a tilt, cheater or red event.
func (s *GormStore) AppendCounterEvent(ctx context.Context, kind string, ts time.Time) (models.CounterEvent, error) {
	if !models.IsCounterKind(kind) {
		return models.CounterEvent{}, ErrUnknownEventKind
	}
	ev := models.CounterEvent{Kind: kind, Timestamp: ts.UTC()}
	if err := s.tx(ctx).Create(&ev).Error; err != nil {
		return models.CounterEvent{}, fmt.Errorf("append %s event: %w", kind, err)
	}
	return ev, nil
}

// DeleteMostRecentCounterEvent removes the newest event of kind inside [start, end)
// and decrements the matching daily counter in the same transaction.
// It reports false without error when there was nothing to delete.
func (s *GormStore) DeleteMostRecentCounterEvent(ctx context.Context, kind string, start, end time.Time) (bool, error) {
	key, ok := models.CounterKeyFor(kind)
	if !ok {
		return false, ErrUnknownEventKind
	}
	deleted := false
	err := s.tx(ctx).Transaction(func(tx *gorm.DB) error {
		var ev models.CounterEvent
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("kind = ? AND timestamp >= ? AND timestamp < ?", kind, start.UTC(), end.UTC()).
			Order("timestamp DESC, id DESC").
			First(&ev).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Delete(&models.CounterEvent{}, ev.ID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.DailyCounter{}).
			Where("counter_key = ? AND value > 0", key).
			Update("value", gorm.Expr("value - 1")).Error; err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("undo %s event: %w", kind, err)
	}
	return deleted, nil
}

// CountCounterEvents returns the lifetime number of events of kind.
func (s *GormStore) CountCounterEvents(ctx context.Context, kind string) (int64, error) {
	if !models.IsCounterKind(kind) {
		return 0, ErrUnknownEventKind
	}
	var n int64
	if err := s.tx(ctx).Model(&models.CounterEvent{}).Where("kind = ?", kind).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s events: %w", kind, err)
	}
	return n, nil
}

// QueryCounterEventsInRange returns events of kind with start <= timestamp < end.
func (s *GormStore) QueryCounterEventsInRange(ctx context.Context, kind string, start, end time.Time) ([]models.CounterEvent, error) {
	if !models.IsCounterKind(kind) {
		return nil, ErrUnknownEventKind
	}
	var out []models.CounterEvent
	err := s.tx(ctx).
		Where("kind = ? AND timestamp >= ? AND timestamp < ?", kind, start.UTC(), end.UTC()).
		Order("timestamp ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("query %s events: %w", kind, err)
	}
	return out, nil
}

// AppendAppEvent records an app launch or activation.
func (s *GormStore) AppendAppEvent(ctx context.Context, kind string, ts time.Time) (models.AppEvent, error) {
	if kind != models.AppEventLaunch && kind != models.AppEventActivation {
		return models.AppEvent{}, ErrUnknownEventKind
	}
	ev := models.AppEvent{Kind: kind, Timestamp: ts.UTC()}
	if err := s.tx(ctx).Create(&ev).Error; err != nil {
		return models.AppEvent{}, fmt.Errorf("append %s event: %w", kind, err)
	}
	return ev, nil
}

// GetDailyCounter returns the value of key, 0 when it was never written.
func (s *GormStore) GetDailyCounter(ctx context.Context, key string) (int64, error) {
	if !models.IsDailyCounterKey(key) {
		return 0, ErrUnknownCounterKey
	}
	var c models.DailyCounter
	err := s.tx(ctx).Where("counter_key = ?", key).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get counter %s: %w", key, err)
	}
	return c.Value, nil
}

// GetDailyCounters returns every known counter, missing ones as 0.
func (s *GormStore) GetDailyCounters(ctx context.Context) (map[string]int64, error) {
	var rows []models.DailyCounter
	if err := s.tx(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load counters: %w", err)
	}
	out := make(map[string]int64, len(models.DailyCounterKeys))
	for _, k := range models.DailyCounterKeys {
		out[k] = 0
	}
	for _, r := range rows {
		if models.IsDailyCounterKey(r.Key) {
			out[r.Key] = r.Value
		}
	}
	return out, nil
}

// IncrementDailyCounter adds one to key with an upsert and returns the new value.
func (s *GormStore) IncrementDailyCounter(ctx context.Context, key string, ts time.Time) (int64, error) {
	if !models.IsDailyCounterKey(key) {
		return 0, ErrUnknownCounterKey
	}
	var value int64
	err := s.tx(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.DailyCounter{Key: key, Value: 1, LastUpdated: ts.UTC()}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "counter_key"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"value":        gorm.Expr("value + 1"),
				"last_updated": ts.UTC(),
			}),
		}).Create(&row).Error; err != nil {
			return err
		}
		var c models.DailyCounter
		if err := tx.Where("counter_key = ?", key).First(&c).Error; err != nil {
			return err
		}
		value = c.Value
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", key, err)
	}
	return value, nil
}

// SetDailyCounter overwrites key with value.
func (s *GormStore) SetDailyCounter(ctx context.Context, key string, value int64, ts time.Time) error {
	if !models.IsDailyCounterKey(key) {
		return ErrUnknownCounterKey
	}
	row := models.DailyCounter{Key: key, Value: value, LastUpdated: ts.UTC()}
	err := s.tx(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "counter_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "last_updated"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("set counter %s: %w", key, err)
	}
	return nil
}

// ResetAllDailyCounters zeroes every counter and stamps them with ts.
func (s *GormStore) ResetAllDailyCounters(ctx context.Context, ts time.Time) error {
	rows := make([]models.DailyCounter, 0, len(models.DailyCounterKeys))
	for _, k := range models.DailyCounterKeys {
		rows = append(rows, models.DailyCounter{Key: k, Value: 0, LastUpdated: ts.UTC()})
	}
	err := s.tx(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "counter_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "last_updated"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("reset counters: %w", err)
	}
	return nil
}

// LastCounterUpdate returns the newest LastUpdated across counters; ok is false when none exist.
func (s *GormStore) LastCounterUpdate(ctx context.Context) (time.Time, bool, error) {
	var c models.DailyCounter
	err := s.tx(ctx).Order("last_updated DESC").First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("last counter update: %w", err)
	}
	return c.LastUpdated, true, nil
}

// EnsureAchievements inserts a locked row for every id that does not exist yet.
func (s *GormStore) EnsureAchievements(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	rows := make([]models.Achievement, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, models.Achievement{ID: id})
	}
	if err := s.tx(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return fmt.Errorf("seed achievements: %w", err)
	}
	return nil
}

// IsAchievementUnlocked reports the unlock flag of id.
func (s *GormStore) IsAchievementUnlocked(ctx context.Context, id uint) (bool, error) {
	var a models.Achievement
	err := s.tx(ctx).First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("get achievement %d: %w", id, err)
	}
	return a.IsUnlocked, nil
}

// UnlockIfLocked flips id to unlocked only if it is currently locked.
// The boolean reports whether this call performed the transition.
func (s *GormStore) UnlockIfLocked(ctx context.Context, id uint, ts time.Time) (bool, error) {
	at := ts.UTC()
	res := s.tx(ctx).Model(&models.Achievement{}).
		Where("id = ? AND is_unlocked = ?", id, false).
		Updates(map[string]interface{}{"is_unlocked": true, "unlocked_at": &at})
	if res.Error != nil {
		return false, fmt.Errorf("unlock achievement %d: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// GetAllAchievements returns every achievement ordered by id.
func (s *GormStore) GetAllAchievements(ctx context.Context) ([]models.Achievement, error) {
	var out []models.Achievement
	if err := s.tx(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("load achievements: %w", err)
	}
	return out, nil
}

// ResetAllAchievements re-locks everything and clears the easter egg flag.
func (s *GormStore) ResetAllAchievements(ctx context.Context) error {
	return s.tx(ctx).Transaction(func(tx *gorm.DB) error {
		global := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := global.Model(&models.Achievement{}).
			Updates(map[string]interface{}{"is_unlocked": false, "unlocked_at": nil}).Error; err != nil {
			return fmt.Errorf("reset achievements: %w", err)
		}
		if err := global.Model(&models.EasterEggState{}).
			Updates(map[string]interface{}{"is_clicked": false, "clicked_at": nil}).Error; err != nil {
			return fmt.Errorf("reset easter egg: %w", err)
		}
		return nil
	})
}

// GetEasterEggState returns the singleton flag, unclicked when never written.
func (s *GormStore) GetEasterEggState(ctx context.Context) (models.EasterEggState, error) {
	var st models.EasterEggState
	err := s.tx(ctx).First(&st, models.EasterEggRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.EasterEggState{ID: models.EasterEggRowID}, nil
	}
	if err != nil {
		return models.EasterEggState{}, fmt.Errorf("get easter egg: %w", err)
	}
	return st, nil
}

// MarkEasterEggClicked sets the flag once; later calls report false.
func (s *GormStore) MarkEasterEggClicked(ctx context.Context, ts time.Time) (bool, error) {
	at := ts.UTC()
	marked := false
	err := s.tx(ctx).Transaction(func(tx *gorm.DB) error {
		seed := models.EasterEggState{ID: models.EasterEggRowID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}
		res := tx.Model(&models.EasterEggState{}).
			Where("id = ? AND is_clicked = ?", models.EasterEggRowID, false).
			Updates(map[string]interface{}{"is_clicked": true, "clicked_at": &at})
		if res.Error != nil {
			return res.Error
		}
		marked = res.RowsAffected == 1
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("mark easter egg: %w", err)
	}
	return marked, nil
}
