package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEstimateBeforeExecutionHour(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 42, 13, 0, time.UTC)
	got := Estimate(now, 12, 0)
	assert.Equal(t, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), got)
}

func TestEstimateAtExecutionHourRollsToTomorrow(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 1, 0, time.UTC)
	got := Estimate(now, 12, 0)
	assert.Equal(t, time.Date(2024, 3, 11, 12, 0, 0, 0, time.UTC), got)
}

func TestEstimateAfterExecutionHour(t *testing.T) {
	now := time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC)
	got := Estimate(now, 12, 0)
	assert.Equal(t, time.Date(2024, 3, 11, 12, 0, 0, 0, time.UTC), got)
}

func TestEstimateMonotonicPerCycle(t *testing.T) {
	now := time.Date(2024, 6, 1, 3, 15, 0, 0, time.UTC)
	for _, hour := range []int{0, 3, 12, 23} {
		for cycle := 0; cycle < 10; cycle++ {
			diff := Estimate(now, hour, cycle+1).Sub(Estimate(now, hour, cycle))
			assert.Equal(t, 24*time.Hour, diff, "hour=%d cycle=%d", hour, cycle)
		}
	}
}

func TestEstimateNormalizesToUTC(t *testing.T) {
	jst := time.FixedZone("JST", 9*3600)
	// 21:00 JST is 12:00 UTC, so the cycle-0 run is tomorrow.
	now := time.Date(2024, 3, 10, 21, 0, 0, 0, jst)
	got := Estimate(now, 12, 0)
	assert.Equal(t, time.Date(2024, 3, 11, 12, 0, 0, 0, time.UTC), got)
}

func TestCycleMath(t *testing.T) {
	assert.Equal(t, 0, CycleForPosition(0, 70))
	assert.Equal(t, 0, CycleForPosition(69, 70))
	assert.Equal(t, 1, CycleForPosition(70, 70))
	assert.Equal(t, 2, CycleForPosition(140, 70))

	assert.Equal(t, 0, CycleForQueueLength(0, 70))
	assert.Equal(t, 1, CycleForQueueLength(70, 70))
}
