package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/focuswatch/internal/activity"
	"github.com/blackwell-systems/focuswatch/internal/clock"
)

var epoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestTracker_SameStatusIsNoop(t *testing.T) {
	c := clock.NewManual(epoch)
	tr := NewTracker(c, 10)

	c.Advance(time.Minute)
	_, ok := tr.Update(activity.Idle)
	assert.False(t, ok)
	assert.Empty(t, tr.History())
	assert.Equal(t, epoch, tr.StartedAt())
}

func TestTracker_TransitionWritesLeavingEpisode(t *testing.T) {
	c := clock.NewManual(epoch)
	tr := NewTracker(c, 10)

	c.Advance(3 * time.Minute)
	closed, ok := tr.Update(activity.Working)
	require.True(t, ok)
	assert.Equal(t, activity.Idle, closed.Status)
	assert.InDelta(t, 3.0, closed.DurationMinutes, 1e-9)
	assert.Equal(t, epoch, closed.StartedAt)
	assert.Equal(t, activity.Working, tr.Status())

	// Staying in Working writes nothing.
	c.Advance(10 * time.Minute)
	tr.Update(activity.Working)
	require.Len(t, tr.History(), 1)

	c.Advance(5 * time.Minute)
	closed, ok = tr.Update(activity.Entertainment)
	require.True(t, ok)
	assert.Equal(t, activity.Working, closed.Status)
	assert.InDelta(t, 15.0, closed.DurationMinutes, 1e-9)
	assert.Equal(t, 15*time.Minute, closed.Duration())
	assert.Len(t, tr.History(), 2)
}

func TestTracker_CurrentDurationIsLive(t *testing.T) {
	c := clock.NewManual(epoch)
	tr := NewTracker(c, 10)
	tr.Update(activity.Entertainment)

	c.Advance(90 * time.Second)
	assert.Equal(t, 90*time.Second, tr.CurrentDuration())
	c.Advance(30 * time.Second)
	assert.Equal(t, 2*time.Minute, tr.CurrentDuration())
}

func TestTracker_HistoryCapKeepsMostRecent(t *testing.T) {
	c := clock.NewManual(epoch)
	tr := NewTracker(c, 10)

	cycle := []activity.Status{activity.Working, activity.Entertainment, activity.Idle}
	var starts []time.Time
	for i := 0; i < 15; i++ {
		starts = append(starts, tr.StartedAt())
		c.Advance(time.Duration(i+1) * time.Minute)
		_, ok := tr.Update(cycle[i%len(cycle)])
		require.True(t, ok)
	}

	h := tr.History()
	require.Len(t, h, 10)
	for i, e := range h {
		assert.Equal(t, starts[5+i], e.StartedAt, "entry %d", i)
		assert.InDelta(t, float64(6+i), e.DurationMinutes, 1e-9, "entry %d", i)
	}
}

func TestTracker_DuplicateStatusesAllowedInHistory(t *testing.T) {
	c := clock.NewManual(epoch)
	tr := NewTracker(c, 10)

	for _, s := range []activity.Status{activity.Working, activity.Idle, activity.Working, activity.Idle} {
		c.Advance(time.Minute)
		tr.Update(s)
	}
	h := tr.History()
	require.Len(t, h, 4)
	assert.Equal(t, activity.Idle, h[0].Status)
	assert.Equal(t, activity.Working, h[1].Status)
	assert.Equal(t, activity.Idle, h[2].Status)
	assert.Equal(t, activity.Working, h[3].Status)
}

func TestTracker_HistoryIsACopy(t *testing.T) {
	c := clock.NewManual(epoch)
	tr := NewTracker(c, 10)
	c.Advance(time.Minute)
	tr.Update(activity.Working)

	h := tr.History()
	h[0].Status = activity.Entertainment
	assert.Equal(t, activity.Idle, tr.History()[0].Status)
}

func TestTracker_Resize(t *testing.T) {
	c := clock.NewManual(epoch)
	tr := NewTracker(c, 10)
	for i := 0; i < 6; i++ {
		c.Advance(time.Minute)
		if i%2 == 0 {
			tr.Update(activity.Working)
		} else {
			tr.Update(activity.Idle)
		}
	}
	tr.Resize(3)
	h := tr.History()
	require.Len(t, h, 3)
	assert.Equal(t, epoch.Add(3*time.Minute), h[0].StartedAt)
}
