package models

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v2"
)

func TestConfigFromYaml(t *testing.T) {
	f, err := os.Open("testdata/test.config.yml")
	require.NoError(t, err)
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	decoder.SetStrict(true)
	require.NoError(t, decoder.Decode(&cfg))

	assert.True(t, cfg.Debug)
	assert.Equal(t, "/data/kaviar", cfg.Ingest.DataFolder)
	assert.Equal(t, "gsort", cfg.Ingest.SortCommand)
	assert.Equal(t, "1G", cfg.Ingest.SortBufferSize)
	assert.True(t, cfg.Ingest.ShowProgress)
	assert.Equal(t, "/data/kaviar/kaviar.jsonl", cfg.Output.Path)
	assert.Equal(t, 4, cfg.Elasticsearch.NumWorkers)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/var/lib/node_exporter/kaviar.prom", cfg.Metrics.TextfilePath)
}

func TestDocumentId(t *testing.T) {
	assert.Equal(t, "chr1:g.100A>G", Document{"_id": "chr1:g.100A>G"}.Id())
	assert.Equal(t, "", Document{}.Id())
	assert.Equal(t, "", Document{"_id": 12}.Id())
}
