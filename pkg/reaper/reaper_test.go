package reaper

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSelectExpired(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	fresh := Candidate{ID: uuid.New(), WaitingSince: now.Add(-47 * time.Hour)}
	stale := Candidate{ID: uuid.New(), WaitingSince: now.Add(-49 * time.Hour)}
	exact := Candidate{ID: uuid.New(), WaitingSince: now.Add(-48 * time.Hour)}

	got := SelectExpired([]Candidate{fresh, stale, exact}, now, DefaultThreshold)

	assert.Equal(t, []uuid.UUID{stale.ID}, got)
}

func TestSelectExpiredEmpty(t *testing.T) {
	got := SelectExpired(nil, time.Now(), time.Hour)
	assert.Empty(t, got)
}
