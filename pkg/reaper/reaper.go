// Package reaper selects abandoned survey responses.
package reaper

import (
	"time"

	"github.com/google/uuid"
)

const DefaultThreshold = 48 * time.Hour

// Candidate is a response waiting for completion.
type Candidate struct {
	ID           uuid.UUID
	WaitingSince time.Time
}

// Cutoff is the instant before which a wait counts as expired.
func Cutoff(now time.Time, threshold time.Duration) time.Time {
	return now.Add(-threshold)
}

// SelectExpired returns the ids of candidates that have been waiting strictly
// longer than threshold at now.
func SelectExpired(candidates []Candidate, now time.Time, threshold time.Duration) []uuid.UUID {
	cutoff := Cutoff(now, threshold)
	expired := make([]uuid.UUID, 0)
	for _, c := range candidates {
		if c.WaitingSince.Before(cutoff) {
			expired = append(expired, c.ID)
		}
	}
	return expired
}
