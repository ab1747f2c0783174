package extsort

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTrackerDropsRegressions(t *testing.T) {
	p := &progressRecorder{}
	tracker := newProgressTracker(p.sink)

	tracker.report(0)
	tracker.report(10)
	tracker.report(10)
	tracker.report(5)
	tracker.report(-4)
	tracker.report(150)
	tracker.finish()

	assert.Equal(t, []int{0, 10, 100}, p.updates)
}

func TestProgressTrackerPhases(t *testing.T) {
	p := &progressRecorder{}
	tracker := newProgressTracker(p.sink)

	tracker.chunking(500, 1000)
	// an estimate that is too low never completes the phase early
	tracker.chunking(5000, 1000)
	tracker.chunked()
	tracker.merging(250, 1000)
	tracker.merging(1000, 1000)
	tracker.finish()

	assert.Equal(t, []int{25, 49, 50, 62, 99, 100}, p.updates)
}

func TestProgressTrackerWithoutEstimate(t *testing.T) {
	p := &progressRecorder{}
	tracker := newProgressTracker(p.sink)

	tracker.chunking(1000, 0)
	tracker.merging(0, 0)
	tracker.finish()

	assert.Equal(t, []int{0, 50, 100}, p.updates)
}

func TestProgressTrackerNilSink(t *testing.T) {
	tracker := newProgressTracker(nil)
	assert.NotPanics(t, func() {
		tracker.chunking(1, 2)
		tracker.finish()
	})
}

func TestChannelProgress(t *testing.T) {
	ch := make(chan int, 2)
	sink := ChannelProgress(ch)
	sink(40)
	sink(100)
	assert.Equal(t, 40, <-ch)
	assert.Equal(t, 100, <-ch)
}
