package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	RecordsRead       prometheus.Counter
	RecordsDecoded    prometheus.Counter
	SearchesRead      prometheus.Counter
	SearchesDecorated prometheus.Counter
	SearchesPublished prometheus.Counter
	RowsWritten       prometheus.Counter
	ProcessingTime    prometheus.Histogram
	ErrorsCount       *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics registered on reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RecordsRead: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_read_total",
			Help:      "The total number of raw reco records consumed",
		}),
		RecordsDecoded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_decoded_total",
			Help:      "The total number of reco records decoded successfully",
		}),
		SearchesRead: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_read_total",
			Help:      "The total number of grouped searches handed to decoration",
		}),
		SearchesDecorated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_decorated_total",
			Help:      "The total number of searches decorated successfully",
		}),
		SearchesPublished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_published_total",
			Help:      "The total number of decorated searches published",
		}),
		RowsWritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "The total number of reco rows committed to the database",
		}),
		ProcessingTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "message_processing_time_seconds",
			Help:      "Time taken to process one stream message",
			Buckets:   prometheus.DefBuckets,
		}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
