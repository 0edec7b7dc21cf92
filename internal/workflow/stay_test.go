package workflow

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/shoptrack/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveDays_NoDetainedTime(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	days, err := ActiveDays(now.Add(-5*24*time.Hour), 0, now)
	require.NoError(t, err)
	assert.Equal(t, 5, days, "exactly 5x86400s is 5 days")

	days, err = ActiveDays(now.Add(-5*24*time.Hour+time.Second), 0, now)
	require.NoError(t, err)
	assert.Equal(t, 4, days, "one second less truncates to 4")
}

func TestActiveDays_SubtractsDetainedTime(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	days, err := ActiveDays(now.Add(-5*24*time.Hour), 2*24*time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, 3, days, "2 of 5 elapsed days detained leaves 3 active")
}

func TestActiveDays_ZeroReference(t *testing.T) {
	days, err := ActiveDays(time.Time{}, 0, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, days)
}

func TestActiveDays_NeverNegative(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	// Detained longer than elapsed clamps at zero.
	days, err := ActiveDays(now.Add(-24*time.Hour), 3*24*time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, 0, days)

	// Reference in the future clamps at zero too.
	days, err = ActiveDays(now.Add(time.Hour), 0, now)
	require.NoError(t, err)
	assert.Equal(t, 0, days)
}

func TestActiveDays_MixedTimezonesCompareInUTC(t *testing.T) {
	loc := time.FixedZone("UTC-4", -4*3600)
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	ref := now.Add(-5 * 24 * time.Hour).In(loc)

	days, err := ActiveDays(ref, 0, now.In(loc))
	require.NoError(t, err)
	assert.Equal(t, 5, days)
}

func TestActiveDays_NegativeDetainedIsAnError(t *testing.T) {
	now := time.Now()
	_, err := ActiveDays(now.Add(-48*time.Hour), -time.Hour, now)
	assert.ErrorIs(t, err, ErrBadLedger)
}

func TestDetainedTime(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	jobID := uuid.New()

	start1 := now.Add(-72 * time.Hour)
	end1 := start1.Add(24 * time.Hour)
	start2 := now.Add(-6 * time.Hour) // still open

	intervals := []*models.StatusInterval{
		{ID: uuid.New(), JobID: jobID, Status: string(StatusScheduled),
			StartedAt: now.Add(-120 * time.Hour), EndedAt: &start1},
		{ID: uuid.New(), JobID: jobID, Status: string(StatusDetained),
			StartedAt: start1, EndedAt: &end1},
		{ID: uuid.New(), JobID: jobID, Status: string(StatusDetained),
			StartedAt: start2},
	}

	detained, err := DetainedTime(intervals, now)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Hour, detained, "closed 24h span plus open 6h span")
}

func TestDetainedTime_EmptyHistory(t *testing.T) {
	detained, err := DetainedTime(nil, time.Now())
	require.NoError(t, err)
	assert.Zero(t, detained)
}

func TestDetainedTime_IntervalEndsBeforeStart(t *testing.T) {
	now := time.Now().UTC()
	bad := now.Add(-2 * time.Hour)
	intervals := []*models.StatusInterval{
		{ID: uuid.New(), Status: string(StatusDetained), StartedAt: now, EndedAt: &bad},
	}
	_, err := DetainedTime(intervals, now)
	assert.ErrorIs(t, err, ErrBadLedger)
}

func TestReferenceStart(t *testing.T) {
	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	arrived := created.Add(48 * time.Hour)

	assert.Equal(t, arrived, ReferenceStart(&arrived, created))
	assert.Equal(t, created, ReferenceStart(nil, created))
}
