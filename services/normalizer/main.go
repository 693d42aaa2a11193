// Package normalizer turns parsed Kaviar records into one document per
// alternate allele.
package normalizer

import (
	"io"
	"strings"

	"kaviar/models"
	"kaviar/models/constants/release"
	"kaviar/services/hgvs"
	"kaviar/services/vcf"
	"kaviar/utils"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	attributeFrequency   = "AF"
	attributeCount       = "AC"
	attributeNumber      = "AN"
	attributeDataSources = "DS"

	dataSourceSeparator = "|"
	missingValue        = "."
)

var (
	ErrAlleleCountMismatch = errors.New("allele attribute count does not match the number of alternates")
	ErrDescriptorMismatch  = errors.New("data source descriptors do not match the number of alternates")
)

type Normalizer struct {
	Deriver    hgvs.Deriver
	Exceptions *KnownExceptions
	Source     string
	Metrics    *utils.Metrics
	Logger     *zap.SugaredLogger
}

func NewNormalizer(exceptions *KnownExceptions, metrics *utils.Metrics, logger *zap.SugaredLogger) *Normalizer {
	return &Normalizer{
		Deriver:    hgvs.Genomic{},
		Exceptions: exceptions,
		Source:     string(release.Source),
		Metrics:    metrics,
		Logger:     logger,
	}
}

// Normalize returns the documents of one record. A nil slice with a nil error
// means the record was dropped; a non-nil error is fatal for the run.
func (n *Normalizer) Normalize(record *vcf.Record) ([]models.Document, error) {
	alts := record.Alt
	if len(alts) == 0 {
		return nil, nil
	}

	frequencies := record.Info.GetOrDefault(attributeFrequency, nil)
	counts := record.Info.GetOrDefault(attributeCount, nil)
	for _, attribute := range []string{attributeFrequency, attributeCount} {
		values := frequencies
		if attribute == attributeCount {
			values = counts
		}
		if values != nil && len(values) != len(alts) {
			return nil, errors.Wrapf(ErrAlleleCountMismatch, "%s: %d alternates, %s=%s", record, len(alts), attribute, strings.Join(values, ","))
		}
	}

	descriptors, hasDescriptors := record.Info.Get(attributeDataSources)
	if hasDescriptors && len(descriptors) != len(alts) {
		repaired, ok := n.Exceptions.Repair(attributeDataSources, descriptors, len(alts))
		if !ok {
			return nil, errors.Wrapf(ErrDescriptorMismatch, "%s: %d alternates, DS=%s", record, len(alts), strings.Join(repaired, ","))
		}
		n.Metrics.DescriptorsRepaired.Inc()
		descriptors = repaired
	}

	var total interface{}
	if an, ok := record.Info.Scalar(attributeNumber); ok && an != missingValue {
		total = an
	}

	var siblings interface{}
	if len(alts) > 1 {
		siblings = n.siblings(record)
	}

	docs := make([]models.Document, 0, len(alts))
	for i, alt := range alts {
		result := n.Deriver.Derive(record.Chrom, record.Pos, record.Ref, alt)

		switch result.Outcome {
		case hgvs.Skipped:
			n.Logger.Debugf("Skipping allele %s of %s: %v", alt, record, result.Err)
			n.Metrics.AllelesSkipped.Inc()
			continue
		case hgvs.Unrepresentable:
			n.Logger.Debugf("Dropping %s: allele %s has no identifier", record, alt)
			n.Metrics.RecordsAbandoned.Inc()
			return nil, nil
		}

		var sources interface{}
		if hasDescriptors {
			if d, ok := valueAt(descriptors, i).(string); ok {
				sources = strings.Split(d, dataSourceSeparator)
			}
		}

		doc := models.Document{
			idKey: result.Id,
			n.Source: map[string]interface{}{
				"multi-allelic": siblings,
				"ref":           record.Ref,
				"alt":           alt,
				"af":            valueAt(frequencies, i),
				"ac":            valueAt(counts, i),
				"an":            total,
				"ds":            sources,
			},
		}

		n.Metrics.Normalized(result.Type)
		docs = append(docs, ConvertToNumber(doc).(models.Document))
	}

	return docs, nil
}

// siblings lists the identifiers of every alternate of a multi-allelic
// record, falling back to the raw allele when no identifier can be derived.
func (n *Normalizer) siblings(record *vcf.Record) []interface{} {
	siblings := make([]interface{}, len(record.Alt))
	for i, alt := range record.Alt {
		siblings[i] = alt
		if result := n.Deriver.Derive(record.Chrom, record.Pos, record.Ref, alt); result.Outcome == hgvs.Derived {
			siblings[i] = result.Id
		}
	}
	return siblings
}

func valueAt(values []string, i int) interface{} {
	if i >= len(values) || values[i] == missingValue {
		return nil
	}
	return values[i]
}

type RecordSource interface {
	Next() bool
	Record() *vcf.Record
	Err() error
}

// Stream lazily normalizes every record of source. Closing the stream closes
// source when it is an io.Closer.
func (n *Normalizer) Stream(source RecordSource) models.DocumentIterator {
	return &stream{normalizer: n, source: source}
}

type stream struct {
	normalizer *Normalizer
	source     RecordSource
	pending    []models.Document
	current    models.Document
	err        error
}

func (s *stream) Next() bool {
	if s.err != nil {
		return false
	}

	for len(s.pending) == 0 {
		if !s.source.Next() {
			s.err = s.source.Err()
			return false
		}
		s.normalizer.Metrics.RecordsRead.Inc()

		docs, err := s.normalizer.Normalize(s.source.Record())
		if err != nil {
			s.err = err
			return false
		}
		s.pending = docs
	}

	s.current, s.pending = s.pending[0], s.pending[1:]
	return true
}

func (s *stream) Document() models.Document { return s.current }

func (s *stream) Err() error { return s.err }

func (s *stream) Close() error {
	if closer, ok := s.source.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
