package release

import (
	"path/filepath"

	"kaviar/models/constants"
)

// Kaviar 160204 public release, hg19 coordinates.
const (
	Source constants.Source = "kaviar"

	ArchiveName    string = "Kaviar-160204-Public-hg19.vcf.tar"
	NestedFileName string = "Kaviar-160204-Public/vcfs/Kaviar-160204-Public-hg19.vcf.gz"
	FlatFileName   string = "Kaviar-160204-Public-hg19.vcf"
)

type Files struct {
	Archive string
	Nested  string
	Flat    string
}

// In resolves the release file names against a data folder.
func In(dataFolder string) Files {
	return Files{
		Archive: filepath.Join(dataFolder, ArchiveName),
		Nested:  filepath.Join(dataFolder, filepath.FromSlash(NestedFileName)),
		Flat:    filepath.Join(dataFolder, FlatFileName),
	}
}
