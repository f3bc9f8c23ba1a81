package core

import (
	"time"

	"pkt.systems/promptdeck/schema"
)

// statsAggregator keeps day-bucketed counters with incremental means, so no
// raw sample history is retained. The bucket rolls over lazily on the first
// record or read of a new local day.
type statsAggregator struct {
	day          time.Time
	completed    int
	failed       int
	avgWait      float64
	waitSamples  int
	avgProcess   float64
	procSamples  int
}

func newStatsAggregator(now time.Time) *statsAggregator {
	return &statsAggregator{day: localDay(now)}
}

func (a *statsAggregator) rollover(now time.Time) {
	day := localDay(now)
	if day.Equal(a.day) {
		return
	}
	a.day = day
	a.completed = 0
	a.failed = 0
	a.avgWait = 0
	a.waitSamples = 0
	a.avgProcess = 0
	a.procSamples = 0
}

func (a *statsAggregator) recordCompletion(now time.Time, wait, process time.Duration) {
	a.rollover(now)
	a.completed++
	a.foldWait(wait)
	a.procSamples++
	a.avgProcess += (float64(process.Milliseconds()) - a.avgProcess) / float64(a.procSamples)
}

// recordFailure counts toward the wait average but not the process average;
// no meaningful processing occurred.
func (a *statsAggregator) recordFailure(now time.Time, wait time.Duration) {
	a.rollover(now)
	a.failed++
	a.foldWait(wait)
}

func (a *statsAggregator) foldWait(wait time.Duration) {
	a.waitSamples++
	a.avgWait += (float64(wait.Milliseconds()) - a.avgWait) / float64(a.waitSamples)
}

func (a *statsAggregator) snapshot(now time.Time, queued, processing int) schema.QueueStats {
	a.rollover(now)
	return schema.QueueStats{
		TotalQueued:      queued,
		Processing:       processing,
		CompletedToday:   a.completed,
		FailedToday:      a.failed,
		AverageWaitMs:    a.avgWait,
		AverageProcessMs: a.avgProcess,
	}
}

// localDay truncates to midnight in the timestamp's own location.
func localDay(now time.Time) time.Time {
	year, month, day := now.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, now.Location())
}
