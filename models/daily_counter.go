package models

import "time"

// Daily counter keys. The set is closed; anything else is rejected by the store.
const (
	CounterTiltsToday          = "tilts_today"
	CounterCheatersToday       = "cheaters_today"
	CounterRedsToday           = "reds_today"
	CounterQuotesReadToday     = "quotes_read_today"
	CounterAppOpensToday       = "app_opens_today"
	CounterAppActivationsToday = "app_activations_today"
)

// DailyCounterKeys lists every valid daily counter key.
var DailyCounterKeys = []string{
	CounterTiltsToday,
	CounterCheatersToday,
	CounterRedsToday,
	CounterQuotesReadToday,
	CounterAppOpensToday,
	CounterAppActivationsToday,
}

// DailyCounter is a per-key integer that resets at every game-day rollover.
type DailyCounter struct {
	Key         string    `gorm:"column:counter_key;primaryKey;size:64" json:"key"`
	Value       int64     `gorm:"not null;default:0" json:"value"`
	LastUpdated time.Time `gorm:"not null" json:"last_updated"`
}

// IsDailyCounterKey reports whether key belongs to the fixed counter set.
func IsDailyCounterKey(key string) bool {
	for _, k := range DailyCounterKeys {
		if k == key {
			return true
		}
	}
	return false
}

// CounterKeyFor maps a counter event kind onto the daily counter it feeds.
func CounterKeyFor(kind string) (string, bool) {
	switch kind {
	case CounterKindTilt:
		return CounterTiltsToday, true
	case CounterKindCheater:
		return CounterCheatersToday, true
	case CounterKindRed:
		return CounterRedsToday, true
	}
	return "", false
}
