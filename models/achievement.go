package models

import "time"

// Achievement is the persisted unlock state of one catalog entry.
// IsUnlocked only ever goes false -> true, except for the debug reset.
type Achievement struct {
	ID         uint       `gorm:"primaryKey;autoIncrement:false" json:"id"`
	IsUnlocked bool       `gorm:"not null;default:false" json:"is_unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at"`
}

// EasterEggState is a singleton row guarding the one-shot easter egg.
type EasterEggState struct {
	ID        uint       `gorm:"primaryKey;autoIncrement:false" json:"-"`
	IsClicked bool       `gorm:"not null;default:false" json:"is_clicked"`
	ClickedAt *time.Time `json:"clicked_at"`
}

// EasterEggRowID is the primary key of the singleton easter egg row.
const EasterEggRowID = 1
