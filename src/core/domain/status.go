package domain

import "time"

// RoundStatus is the derived lifecycle state of a round. It is never persisted.
type RoundStatus string

const (
	RoundCooldown RoundStatus = "cooldown"
	RoundActive   RoundStatus = "active"
	RoundFinished RoundStatus = "finished"
)

// StatusAt maps a round window to its state at now.
// The window is half-open: now == startAt is active, now == endAt is finished.
func StatusAt(startAt, endAt, now time.Time) RoundStatus {
	switch {
	case now.Before(startAt):
		return RoundCooldown
	case now.Before(endAt):
		return RoundActive
	default:
		return RoundFinished
	}
}
