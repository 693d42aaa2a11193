package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync/atomic"

	"kaviar/models"
	"kaviar/models/indexes"
	"kaviar/utils"

	"github.com/Jeffail/gabs"
	es7 "github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esutil"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrIndexingFailed = errors.New("documents failed to index")

// EnsureIndex creates index with the Kaviar mapping unless it already exists.
func EnsureIndex(ctx context.Context, es *es7.Client, index string) error {
	res, err := es.Indices.Exists([]string{index}, es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return errors.Wrapf(err, "checking index %s", index)
	}
	io.Copy(io.Discard, res.Body)
	res.Body.Close()

	if res.StatusCode == 200 {
		return nil
	}

	mapping, err := json.Marshal(map[string]interface{}{"mappings": indexes.KAVIAR_INDEX_MAPPING})
	if err != nil {
		return errors.Wrap(err, "encoding index mapping")
	}

	res, err = es.Indices.Create(index,
		es.Indices.Create.WithBody(bytes.NewReader(mapping)),
		es.Indices.Create.WithContext(ctx))
	if err != nil {
		return errors.Wrapf(err, "creating index %s", index)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.Errorf("creating index %s: %s", index, res.String())
	}
	return nil
}

// BulkDocument splits a merged document into its identifier and the body to
// index; Elasticsearch does not accept "_id" inside the source.
func BulkDocument(doc models.Document) (string, []byte, error) {
	variant, err := indexes.DecodeVariant(doc)
	if err != nil {
		return "", nil, err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return "", nil, errors.Wrapf(err, "encoding document %s", variant.Id)
	}
	container, err := gabs.ParseJSON(raw)
	if err != nil {
		return "", nil, errors.Wrapf(err, "encoding document %s", variant.Id)
	}
	if err := container.Delete("_id"); err != nil {
		return "", nil, errors.Wrapf(err, "encoding document %s", variant.Id)
	}

	return variant.Id, container.Bytes(), nil
}

// BulkLoadDocuments indexes every document of docs and waits for the bulk
// indexer to flush. docs is not closed.
func BulkLoadDocuments(ctx context.Context, cfg *models.Config, es *es7.Client, docs models.DocumentIterator,
	metrics *utils.Metrics, logger *zap.SugaredLogger) (esutil.BulkIndexerStats, error) {

	var failed uint64

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:     es,
		Index:      cfg.Elasticsearch.Index,
		NumWorkers: cfg.Elasticsearch.NumWorkers,
		FlushBytes: cfg.Elasticsearch.FlushBytes,
		OnError: func(ctx context.Context, err error) {
			logger.Errorf("Bulk indexer error: %s", err)
		},
	})
	if err != nil {
		return esutil.BulkIndexerStats{}, errors.Wrap(err, "creating bulk indexer")
	}

	var loadErr error
	for docs.Next() {
		id, body, err := BulkDocument(docs.Document())
		if err != nil {
			loadErr = err
			break
		}

		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: id,
			Body:       bytes.NewReader(body),

			OnSuccess: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem) {
				metrics.DocumentsIndexed.Inc()
			},

			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				atomic.AddUint64(&failed, 1)
				metrics.DocumentsIndexFailed.Inc()
				if err != nil {
					logger.Errorf("Indexing %s: %s", item.DocumentID, err)
				} else {
					logger.Errorf("Indexing %s: %s: %s", item.DocumentID, res.Error.Type, res.Error.Reason)
				}
			},
		})
		if err != nil {
			loadErr = errors.Wrapf(err, "queueing document %s", id)
			break
		}
	}
	if loadErr == nil {
		loadErr = docs.Err()
	}

	if err := bi.Close(ctx); err != nil && loadErr == nil {
		loadErr = errors.Wrap(err, "flushing bulk indexer")
	}

	stats := bi.Stats()
	logger.Infof("Indexed %d documents into %s (%d failed, %d requests)",
		stats.NumIndexed, cfg.Elasticsearch.Index, stats.NumFailed, stats.NumRequests)

	if loadErr == nil && atomic.LoadUint64(&failed) > 0 {
		loadErr = errors.Wrapf(ErrIndexingFailed, "%d of %d", failed, stats.NumAdded)
	}
	return stats, loadErr
}
