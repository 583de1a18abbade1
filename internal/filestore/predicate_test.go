package filestore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRange_InclusiveBothEnds(t *testing.T) {
	after := time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2023, 11, 2, 0, 0, 0, 0, time.UTC)
	r := Range{After: after, Before: before}

	assert.True(t, r.Contains(after), "exact after bound is included")
	assert.True(t, r.Contains(before), "exact before bound is included")
	assert.True(t, r.Contains(after.Add(time.Hour)))
	assert.False(t, r.Contains(after.Add(-time.Millisecond)))
	assert.False(t, r.Contains(before.Add(time.Millisecond)))
}

func TestDay_Boundaries(t *testing.T) {
	d := Day{Date: time.Date(2023, 11, 1, 15, 4, 5, 0, time.UTC)} // time of day is ignored

	start := time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC)
	lastInstant := time.Date(2023, 11, 1, 23, 59, 59, 999e6, time.UTC)
	nextMidnight := time.Date(2023, 11, 2, 0, 0, 0, 0, time.UTC)

	assert.True(t, d.Contains(start))
	assert.True(t, d.Contains(lastInstant), "23:59:59.999 belongs to the day")
	assert.False(t, d.Contains(nextMidnight), "next midnight belongs to the next day")
	assert.False(t, d.Contains(start.Add(-time.Millisecond)))
	assert.Equal(t, start, d.Start())
}

func TestAfter_Inclusive(t *testing.T) {
	since := time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC)
	a := After{Since: since}

	assert.True(t, a.Contains(since), "equal timestamp is included")
	assert.True(t, a.Contains(since.Add(365*24*time.Hour)), "open ended")
	assert.False(t, a.Contains(since.Add(-time.Millisecond)))
}
