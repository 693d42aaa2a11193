package release

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIn(t *testing.T) {
	files := In("/data")

	assert.Equal(t, filepath.Join("/data", "Kaviar-160204-Public-hg19.vcf.tar"), files.Archive)
	assert.Equal(t, filepath.Join("/data", "Kaviar-160204-Public", "vcfs", "Kaviar-160204-Public-hg19.vcf.gz"), files.Nested)
	assert.Equal(t, filepath.Join("/data", "Kaviar-160204-Public-hg19.vcf"), files.Flat)
}
