package models

import "time"

// Counter event kinds.
const (
	CounterKindTilt    = "tilt"
	CounterKindCheater = "cheater"
	CounterKindRed     = "red"
)

// CounterEvents lists every counter event kind.
var CounterEvents = []string{CounterKindTilt, CounterKindCheater, CounterKindRed}

// CounterEvent records a single tilt, cheater-mark or red-item tap.
type CounterEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Kind      string    `gorm:"size:16;not null;index:idx_counter_kind_ts" json:"kind"`
	Timestamp time.Time `gorm:"not null;index:idx_counter_kind_ts" json:"timestamp"`
}

// IsCounterKind reports whether kind is a known counter event kind.
func IsCounterKind(kind string) bool {
	for _, k := range CounterEvents {
		if k == kind {
			return true
		}
	}
	return false
}
