package models

import "time"

// App lifecycle event kinds.
const (
	AppEventLaunch     = "launch"
	AppEventActivation = "activation"
)

// AppEvent is a launch or window activation of the tracker client.
type AppEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Kind      string    `gorm:"size:16;not null;index" json:"kind"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
}
