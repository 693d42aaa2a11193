package utils

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"kaviar/models/constants"
)

const namespace = "kaviar"

// Metrics holds the per-run counters. Each run owns its own registry so the
// counters can be dumped to a node-exporter textfile when the job ends.
type Metrics struct {
	Registry *prometheus.Registry

	RecordsRead          prometheus.Counter
	DocumentsNormalized  *prometheus.CounterVec
	AllelesSkipped       prometheus.Counter
	RecordsAbandoned     prometheus.Counter
	DescriptorsRepaired  prometheus.Counter
	DocumentsSorted      prometheus.Counter
	DocumentsEmitted     prometheus.Counter
	DocumentsIndexed     prometheus.Counter
	DocumentsIndexFailed prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RecordsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_read_total",
			Help:      "VCF data lines read from the flat file",
		}),
		DocumentsNormalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_normalized_total",
			Help:      "Per-allele documents produced, by mutation type",
		}, []string{"type"}),
		AllelesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alleles_skipped_total",
			Help:      "Alleles whose identifier could not be derived",
		}),
		RecordsAbandoned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_abandoned_total",
			Help:      "Records dropped because an allele had no representable identifier",
		}),
		DescriptorsRepaired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "descriptors_repaired_total",
			Help:      "Records whose data-source descriptor needed a known-exception repair",
		}),
		DocumentsSorted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_sorted_total",
			Help:      "Documents written to the sort scratch file",
		}),
		DocumentsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_emitted_total",
			Help:      "Merged documents emitted, one per identifier",
		}),
		DocumentsIndexed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_indexed_total",
			Help:      "Documents accepted by Elasticsearch",
		}),
		DocumentsIndexFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_index_failed_total",
			Help:      "Documents rejected by Elasticsearch",
		}),
	}

	m.Registry.MustRegister(
		m.RecordsRead,
		m.DocumentsNormalized,
		m.AllelesSkipped,
		m.RecordsAbandoned,
		m.DescriptorsRepaired,
		m.DocumentsSorted,
		m.DocumentsEmitted,
		m.DocumentsIndexed,
		m.DocumentsIndexFailed,
	)

	return m
}

func (m *Metrics) Normalized(mutationType constants.MutationType) {
	m.DocumentsNormalized.WithLabelValues(string(mutationType)).Inc()
}

// WriteTextfile is a no-op when path is empty.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return errors.Wrapf(prometheus.WriteToTextfile(path, m.Registry), "writing metrics to %s", path)
}
