package models

// All returns every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&ScanRecord{},
		&CounterEvent{},
		&AppEvent{},
		&DailyCounter{},
		&Achievement{},
		&EasterEggState{},
	}
}
