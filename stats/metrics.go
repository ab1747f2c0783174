package stats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const METRICS_NAMESPACE = "recsort"

type Metrics struct {
	RecordsRead    prometheus.Counter
	RecordsSkipped prometheus.Counter
	ChunksWritten  prometheus.Counter
	RecordsMerged  prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RecordsRead: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: METRICS_NAMESPACE,
			Name:      "records_read_total",
			Help:      "Total number of records parsed during chunking",
		}),
		RecordsSkipped: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: METRICS_NAMESPACE,
			Name:      "records_skipped_total",
			Help:      "Total number of malformed lines skipped",
		}),
		ChunksWritten: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: METRICS_NAMESPACE,
			Name:      "chunks_written_total",
			Help:      "Total number of sorted chunk files flushed to disk",
		}),
		RecordsMerged: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: METRICS_NAMESPACE,
			Name:      "records_merged_total",
			Help:      "Total number of records written by the k-way merge",
		}),
	}
}
