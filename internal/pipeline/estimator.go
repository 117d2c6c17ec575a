package pipeline

import "time"

// Estimate predicts the UTC timestamp of the batch run `cycle`
// scheduled runs from now. Now is truncated to the top of the current
// UTC hour: strictly before execHourUTC the cycle-0 run is today at
// that hour, otherwise tomorrow. Each further cycle adds exactly 24h.
func Estimate(now time.Time, execHourUTC, cycle int) time.Time {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), execHourUTC, 0, 0, 0, time.UTC)
	if now.Hour() >= execHourUTC {
		next = next.Add(24 * time.Hour)
	}
	return next.Add(time.Duration(cycle) * 24 * time.Hour)
}

// CycleForPosition maps a 0-based FIFO queue position to the batch
// cycle that will process it.
func CycleForPosition(position, recordsPerBatch int) int {
	return position / recordsPerBatch
}

// CycleForQueueLength maps the current queue length to the batch cycle
// a request submitted now would land in.
func CycleForQueueLength(length, recordsPerBatch int) int {
	return length / recordsPerBatch
}
