package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kaviar/models"
	mutationType "kaviar/models/constants/mutation-type"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringInSlice(t *testing.T) {
	assert.True(t, StringInSlice("json", []string{"console", "json"}))
	assert.False(t, StringInSlice("xml", []string{"console", "json"}))
	assert.False(t, StringInSlice("", nil))
}

func TestDocumentSlice(t *testing.T) {
	docs, err := Collect(NewDocumentSlice(
		models.Document{"_id": "a"},
		models.Document{"_id": "b"},
	))
	require.NoError(t, err)
	assert.Len(t, docs, 2)
	assert.Equal(t, "b", docs[1].Id())

	empty := NewDocumentSlice()
	assert.False(t, empty.Next())
	assert.False(t, empty.Next())
}

func TestWriteJsonLines(t *testing.T) {
	var out bytes.Buffer
	n, err := WriteJsonLines(&out, NewDocumentSlice(
		models.Document{"_id": "chr1:g.100A>G", "kaviar": map[string]interface{}{"af": 0.5, "ds": "a<b"}},
		models.Document{"_id": "chr1:g.200C>T", "kaviar": map[string]interface{}{"ac": int64(3)}},
	))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `{"_id":"chr1:g.100A>G","kaviar":{"af":0.5,"ds":"a<b"}}`, lines[0])
	assert.Equal(t, `{"_id":"chr1:g.200C>T","kaviar":{"ac":3}}`, lines[1])
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	m.RecordsRead.Add(3)
	m.Normalized(mutationType.Snp)
	m.Normalized(mutationType.Snp)
	m.Normalized(mutationType.Deletion)

	assert.Equal(t, float64(3), testutil.ToFloat64(m.RecordsRead))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.DocumentsNormalized.WithLabelValues("snp")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DocumentsNormalized.WithLabelValues("del")))

	t.Run("textfile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "kaviar.prom")
		require.NoError(t, m.WriteTextfile(path))

		contents, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(contents), "kaviar_records_read_total 3")
	})

	t.Run("no textfile configured", func(t *testing.T) {
		assert.NoError(t, m.WriteTextfile(""))
	})
}

func TestInitLogger(t *testing.T) {
	var cfg models.Config
	cfg.Log.Level = "warn"
	logger := InitLogger(&cfg)
	assert.False(t, logger.Core().Enabled(-1))

	cfg.Debug = true
	logger = InitLogger(&cfg)
	assert.True(t, logger.Core().Enabled(-1))
}
