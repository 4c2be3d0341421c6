package mentions

import (
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/require"
)

func TestNextMidnight(t *testing.T) {
	tirane, err := time.LoadLocation("Europe/Tirane")
	require.NoError(t, err)

	tests := []struct {
		name string
		now  time.Time
		loc  *time.Location
		want time.Time
	}{
		{
			name: "afternoon",
			now:  time.Date(2024, 5, 1, 15, 30, 0, 0, time.UTC),
			loc:  time.UTC,
			want: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "exactly midnight is not strictly after",
			now:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			loc:  time.UTC,
			want: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "end of month",
			now:  time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC),
			loc:  time.UTC,
			want: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "converted into the bot timezone",
			now:  time.Date(2024, 5, 1, 22, 30, 0, 0, time.UTC),
			loc:  tirane,
			want: time.Date(2024, 5, 3, 0, 0, 0, 0, tirane),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextMidnight(tt.now, tt.loc)
			require.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
			require.True(t, got.After(tt.now))
		})
	}
}

func TestLimiter_ThirdMentionExceeds(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	l := NewLimiter(time.UTC, 2, now)
	user := snowflake.ID(42)

	var exceeded []bool
	for i := 0; i < 3; i++ {
		exceeded = append(exceeded, l.Exceeded(l.Increment(user)))
	}
	require.Equal(t, []bool{false, false, true}, exceeded)
	require.Equal(t, 3, l.Count(user))
	require.Equal(t, 0, l.Count(snowflake.ID(7)))

	l.Increment(snowflake.ID(7))
	require.Equal(t, 4, l.Overall())
}

func TestLimiter_ResetIfDue(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	l := NewLimiter(time.UTC, 0, start)
	require.Equal(t, DefaultLimit, l.Limit())

	first := l.Boundary()
	require.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), first)

	l.Increment(1)
	l.Increment(2)
	require.False(t, l.ResetIfDue(first.Add(-time.Second)))
	require.Equal(t, 2, l.Overall())

	// The loop polls every minute, so it observes the boundary late.
	require.True(t, l.ResetIfDue(first.Add(59*time.Second)))
	require.Zero(t, l.Count(1))
	require.Zero(t, l.Overall())
	require.Equal(t, 24*time.Hour, l.Boundary().Sub(first))

	require.False(t, l.ResetIfDue(first.Add(2*time.Minute)))
}

func TestLimiter_ResetCatchesUpAfterDowntime(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	l := NewLimiter(time.UTC, 2, start)
	l.Increment(1)

	now := time.Date(2024, 5, 4, 7, 0, 0, 0, time.UTC)
	require.True(t, l.ResetIfDue(now))
	require.Equal(t, time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC), l.Boundary())
	require.True(t, l.Boundary().After(now))
}
