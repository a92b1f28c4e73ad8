package achievements

import "time"

// Anti-spam windows.
const (
	TapWindow         = 5 * time.Second
	TapThreshold      = 5
	UndoWindow        = 5 * time.Second
	LaunchTiltWindow  = 5 * time.Second
	DoubleCheckWindow = 3 * time.Second
)

// EngineState is the in-process memory of the engine. It is not persisted;
// a restart forgets pending taps, the launch time and the last cheater mark.
type EngineState struct {
	// LastSeenDay is the start of the most recent game-day an event was handled in. Zero until the first event.
	LastSeenDay     time.Time
	AppLaunchedAt   time.Time
	LastCheaterMark time.Time
	taps            map[uint][]time.Time
}

func newEngineState() EngineState {
	return EngineState{taps: make(map[uint][]time.Time)}
}

// recordTap adds a tap on id and returns how many taps fall inside the rolling window ending at ts.
func (s *EngineState) recordTap(id uint, ts time.Time) int {
	kept := s.taps[id][:0]
	for _, t := range s.taps[id] {
		if within(t, ts, TapWindow) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, ts)
	s.taps[id] = kept
	return len(kept)
}

func (s *EngineState) clearTaps(id uint) {
	delete(s.taps, id)
}

// within reports whether later happened no earlier than earlier and at most d after it.
func within(earlier, later time.Time, d time.Duration) bool {
	if earlier.IsZero() {
		return false
	}
	gap := later.Sub(earlier)
	return gap >= 0 && gap <= d
}
