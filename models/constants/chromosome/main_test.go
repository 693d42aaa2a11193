package chromosome

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	for in, want := range map[string]string{
		"1":     "1",
		"chr1":  "1",
		"CHR1":  "1",
		"chrx":  "X",
		"y":     "Y",
		"chrMT": "MT",
		" 7 ":   "7",
		"":      "",
	} {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "chr1", Label("1"))
	assert.Equal(t, "chrX", Label("chrx"))
	assert.Equal(t, "", Label(""))
	assert.Equal(t, "", Label("chr"))
	assert.Equal(t, "", Label("."))
}
