package services

import (
	"context"
	"fmt"

	"kaviar/models"
	"kaviar/models/constants/release"
	"kaviar/models/ingest"
	"kaviar/services/merger"
	"kaviar/services/normalizer"
	"kaviar/services/sorter"
	"kaviar/services/staging"
	"kaviar/services/vcf"
	"kaviar/utils"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrNoDataFolder = errors.New("no data folder configured")

type IngestionService struct {
	Request    *ingest.IngestRequest
	Stager     *staging.Stager
	Normalizer *normalizer.Normalizer
	Sorter     *sorter.Sorter
	Metrics    *utils.Metrics
	Logger     *zap.SugaredLogger
}

func NewIngestionService(cfg *models.Config, metrics *utils.Metrics, logger *zap.SugaredLogger) (*IngestionService, error) {
	if cfg.Ingest.DataFolder == "" {
		return nil, ErrNoDataFolder
	}

	exceptions, err := normalizer.LoadKnownExceptions(cfg.Ingest.KnownExceptionsPath)
	if err != nil {
		return nil, err
	}

	return &IngestionService{
		Request: ingest.NewIngestRequest(cfg.Ingest.DataFolder),
		Stager: &staging.Stager{
			DataFolder:   cfg.Ingest.DataFolder,
			ShowProgress: cfg.Ingest.ShowProgress,
			Logger:       logger,
		},
		Normalizer: normalizer.NewNormalizer(exceptions, metrics, logger),
		Sorter: &sorter.Sorter{
			Dir:        cfg.Ingest.DataFolder,
			Command:    cfg.Ingest.SortCommand,
			BufferSize: cfg.Ingest.SortBufferSize,
			Metrics:    metrics,
			Logger:     logger,
		},
		Metrics: metrics,
		Logger:  logger,
	}, nil
}

// Run stages the release, normalizes and sorts every record, and returns the
// merged documents in identifier order. Everything up to the merge happens
// before Run returns; merging happens as the caller pulls documents. The
// caller must Close the returned iterator to release the sort scratch file.
func (i *IngestionService) Run(ctx context.Context) (models.DocumentIterator, error) {
	i.transition(ingest.Staging, fmt.Sprintf("staging %s", i.Stager.DataFolder))
	flat, err := i.Stager.Stage(ctx)
	if err != nil {
		return nil, i.Finish(err)
	}

	i.transition(ingest.Parsing, fmt.Sprintf("parsing %s", flat))
	reader, err := vcf.Open(flat)
	if err != nil {
		return nil, i.Finish(err)
	}

	sorted, err := i.Sorter.Sort(ctx, i.Normalizer.Stream(reader))
	if err != nil {
		return nil, i.Finish(err)
	}

	i.transition(ingest.Merging, "emitting merged documents")
	return &emitter{
		DocumentIterator: merger.NewGrouper(sorted, string(release.Source)),
		metrics:          i.Metrics,
	}, nil
}

// Finish records the outcome of the run and returns err unchanged.
func (i *IngestionService) Finish(err error) error {
	if err != nil {
		i.transition(ingest.Error, err.Error())
		return err
	}
	i.transition(ingest.Done, "")
	return nil
}

func (i *IngestionService) transition(state ingest.State, message string) {
	i.Request.Transition(state, message)
	i.Logger.Infow("Ingestion "+string(state),
		"id", i.Request.Id.String(),
		"message", message)
}

type emitter struct {
	models.DocumentIterator
	metrics *utils.Metrics
}

func (e *emitter) Next() bool {
	if !e.DocumentIterator.Next() {
		return false
	}
	e.metrics.DocumentsEmitted.Inc()
	return true
}
