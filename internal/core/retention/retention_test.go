package retention

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func tp(t time.Time) *time.Time { return &t }

func TestEligible_ExactBoundary(t *testing.T) {
	deleted := now.Add(-90 * 24 * time.Hour)

	assert.True(t, Eligible(tp(deleted), 90, now))

	days := DaysUntilEligible(tp(deleted), 90, now)
	require.NotNil(t, days)
	assert.Equal(t, 0, *days)
}

func TestEligible_OneMillisecondShort(t *testing.T) {
	deleted := now.Add(-90 * 24 * time.Hour).Add(time.Millisecond)

	assert.False(t, Eligible(tp(deleted), 90, now))

	days := DaysUntilEligible(tp(deleted), 90, now)
	require.NotNil(t, days)
	assert.Equal(t, 1, *days, "partial day must round up, never report eligible early")
}

func TestEligible_NilTimestampFailsClosed(t *testing.T) {
	for _, window := range []int{1, 30, 90, 365} {
		assert.False(t, Eligible(nil, window, now))
		assert.Nil(t, DaysUntilEligible(nil, window, now))
	}
}

func TestDaysUntilEligible_Countdown(t *testing.T) {
	cases := []struct {
		name    string
		deleted time.Time
		want    int
	}{
		{"deleted today", now, 90},
		{"10 days ago", now.Add(-10 * 24 * time.Hour), 80},
		{"89 days ago", now.Add(-89 * 24 * time.Hour), 1},
		{"89.5 days ago rounds up", now.Add(-89*24*time.Hour - 12*time.Hour), 1},
		{"long past", now.Add(-400 * 24 * time.Hour), 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			days := DaysUntilEligible(tp(tc.deleted), 90, now)
			require.NotNil(t, days)
			assert.Equal(t, tc.want, *days)
		})
	}
}

// Eligible and DaysUntilEligible must agree for any non-nil timestamp.
func TestEligibilityContract(t *testing.T) {
	offsets := []time.Duration{
		0,
		time.Millisecond,
		24 * time.Hour,
		89 * 24 * time.Hour,
		90*24*time.Hour - time.Millisecond,
		90 * 24 * time.Hour,
		90*24*time.Hour + time.Millisecond,
		1000 * 24 * time.Hour,
	}

	for _, off := range offsets {
		deleted := now.Add(-off)
		days := DaysUntilEligible(tp(deleted), 90, now)
		require.NotNil(t, days)
		assert.Equal(t, Eligible(tp(deleted), 90, now), *days == 0, "offset %v", off)
	}
}
