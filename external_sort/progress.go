package extsort

import (
	"recsort/common"
)

// ProgressFunc receives integer percentages in [0, 100]. Calls are made from
// the sorting goroutine, in non-decreasing order, ending with 100.
type ProgressFunc func(percent int)

// ChannelProgress forwards every update to ch. The sort blocks while ch is
// full, so the observer must keep draining it.
func ChannelProgress(ch chan<- int) ProgressFunc {
	return func(percent int) {
		ch <- percent
	}
}

/**
* progressTracker maps phase-local progress onto the overall [0, 100] range
* and drops anything that would not move the value forward, so the sink only
* ever sees strictly increasing percentages.
 */
type progressTracker struct {
	sink ProgressFunc
	last int
}

func newProgressTracker(sink ProgressFunc) *progressTracker {
	return &progressTracker{sink: sink, last: -1}
}

func (p *progressTracker) report(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > common.DONE {
		percent = common.DONE
	}
	if percent <= p.last {
		return
	}
	p.last = percent
	if p.sink != nil {
		p.sink(percent)
	}
}

// chunking reports done records out of an estimated total. The estimate may
// be low, so the phase never claims to be finished on its own.
func (p *progressTracker) chunking(done, estimated int64) {
	if estimated <= 0 {
		p.report(0)
		return
	}
	p.report(int(min(done*common.CHUNKING_SHARE/estimated, common.CHUNKING_SHARE-1)))
}

func (p *progressTracker) chunked() {
	p.report(common.CHUNKING_SHARE)
}

func (p *progressTracker) merging(done, total int64) {
	if total <= 0 {
		p.report(common.CHUNKING_SHARE)
		return
	}
	share := int64(common.DONE - common.CHUNKING_SHARE)
	p.report(common.CHUNKING_SHARE + int(min(done*share/total, share-1)))
}

func (p *progressTracker) finish() {
	p.report(common.DONE)
}
