package store

import "errors"

var (
	// ErrUnknownCounterKey is returned for daily counter keys outside the fixed set.
	ErrUnknownCounterKey = errors.New("unknown daily counter key")
	// ErrUnknownEventKind is returned for counter or app event kinds the store does not know.
	ErrUnknownEventKind = errors.New("unknown event kind")
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("record not found")
)
