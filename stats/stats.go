package stats

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const ADD_READ = "add_read"
const ADD_SKIPPED = "add_skipped"
const ADD_CHUNK = "add_chunk"
const ADD_MERGED = "add_merged"

// Snapshot is a point-in-time copy of the board counters.
type Snapshot struct {
	RecordsRead    int64
	RecordsSkipped int64
	ChunksWritten  int64
	RecordsMerged  int64
}

type StatsBoard interface {
	Start()
	Stop()
	AddRead(n int64)
	AddSkipped(n int64)
	AddChunk()
	AddMerged(n int64)
	GetAll() Snapshot
}

type update struct {
	kind string
	n    int64
}

/**
* StatsBoardImpl owns its counters on a single worker goroutine. Updates and
* queries are both funneled through channels so no locking is needed. Every
* update is mirrored to the prometheus metrics.
 */
type StatsBoardImpl struct {
	snapshot  Snapshot
	metrics   *Metrics
	updatesCh chan update
	queryCh   chan chan Snapshot
	quit      chan bool
	startOnce sync.Once
}

// NewStatsBoard returns a board whose metrics are registered on reg. A nil
// registerer leaves the metrics unregistered.
func NewStatsBoard(reg prometheus.Registerer) StatsBoard {
	return &StatsBoardImpl{
		metrics:   NewMetrics(reg),
		updatesCh: make(chan update),
		queryCh:   make(chan chan Snapshot),
		quit:      make(chan bool),
	}
}

// Start launches the worker. Calling it again is a no-op.
func (sb *StatsBoardImpl) Start() {
	sb.startOnce.Do(func() {
		go sb.worker()
	})
}

func (sb *StatsBoardImpl) Stop() {
	sb.quit <- true
}

func (sb *StatsBoardImpl) AddRead(n int64) {
	sb.updatesCh <- update{ADD_READ, n}
}

func (sb *StatsBoardImpl) AddSkipped(n int64) {
	sb.updatesCh <- update{ADD_SKIPPED, n}
}

func (sb *StatsBoardImpl) AddChunk() {
	sb.updatesCh <- update{ADD_CHUNK, 1}
}

func (sb *StatsBoardImpl) AddMerged(n int64) {
	sb.updatesCh <- update{ADD_MERGED, n}
}

func (sb *StatsBoardImpl) GetAll() Snapshot {
	reply := make(chan Snapshot)
	sb.queryCh <- reply
	return <-reply
}

func (sb *StatsBoardImpl) worker() {
	for {
		select {
		case <-sb.quit:
			return
		case reply := <-sb.queryCh:
			reply <- sb.snapshot
		case u := <-sb.updatesCh:
			switch u.kind {
			case ADD_READ:
				sb.snapshot.RecordsRead += u.n
				sb.metrics.RecordsRead.Add(float64(u.n))
			case ADD_SKIPPED:
				sb.snapshot.RecordsSkipped += u.n
				sb.metrics.RecordsSkipped.Add(float64(u.n))
			case ADD_CHUNK:
				sb.snapshot.ChunksWritten += u.n
				sb.metrics.ChunksWritten.Add(float64(u.n))
			case ADD_MERGED:
				sb.snapshot.RecordsMerged += u.n
				sb.metrics.RecordsMerged.Add(float64(u.n))
			}
		}
	}
}

// nopBoard drops every update.
type nopBoard struct{}

func NewNopBoard() StatsBoard { return nopBoard{} }

func (nopBoard) Start()           {}
func (nopBoard) Stop()            {}
func (nopBoard) AddRead(int64)    {}
func (nopBoard) AddSkipped(int64) {}
func (nopBoard) AddChunk()        {}
func (nopBoard) AddMerged(int64)  {}
func (nopBoard) GetAll() Snapshot { return Snapshot{} }
