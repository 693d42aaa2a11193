package staging

import (
	"archive/tar"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"kaviar/models/constants/release"

	"github.com/biogo/hts/bgzf"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const flatVcf = "##fileformat=VCFv4.1\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n1\t100\t.\tA\tG\t.\t.\tAF=0.01\n"

func gzipBytes(t *testing.T, data string) []byte {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := io.WriteString(w, data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func bgzfBytes(t *testing.T, data string) []byte {
	var buf bytes.Buffer
	w := bgzf.NewWriter(&buf, 1)
	_, err := io.WriteString(w, data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

type tarEntry struct {
	name string
	body []byte
	dir  bool
}

func writeTar(t *testing.T, path string, entries ...tarEntry) {
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	tw := tar.NewWriter(f)
	for _, e := range entries {
		header := &tar.Header{Name: e.name, Mode: 0644, Size: int64(len(e.body)), Typeflag: tar.TypeReg}
		if e.dir {
			header = &tar.Header{Name: e.name, Mode: 0755, Typeflag: tar.TypeDir}
		}
		require.NoError(t, tw.WriteHeader(header))
		if !e.dir {
			_, err := tw.Write(e.body)
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
}

func newTestStager(dir string) *Stager {
	return &Stager{DataFolder: dir, Logger: zap.NewNop().Sugar()}
}

func TestStage(t *testing.T) {
	for name, compress := range map[string]func(*testing.T, string) []byte{
		"gzip": gzipBytes,
		"bgzf": bgzfBytes,
	} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeTar(t, filepath.Join(dir, release.ArchiveName),
				tarEntry{name: "Kaviar-160204-Public/", dir: true},
				tarEntry{name: "Kaviar-160204-Public/vcfs/", dir: true},
				tarEntry{name: release.NestedFileName, body: compress(t, flatVcf)},
				tarEntry{name: "Kaviar-160204-Public/README", body: []byte("readme")},
			)

			flat, err := newTestStager(dir).Stage(context.Background())
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, release.FlatFileName), flat)

			contents, err := os.ReadFile(flat)
			require.NoError(t, err)
			assert.Equal(t, flatVcf, string(contents))

			_, err = os.Stat(filepath.Join(dir, "Kaviar-160204-Public", "README"))
			assert.NoError(t, err)
		})
	}
}

func TestStageOverwrites(t *testing.T) {
	dir := t.TempDir()
	writeTar(t, filepath.Join(dir, release.ArchiveName),
		tarEntry{name: release.NestedFileName, body: gzipBytes(t, flatVcf)},
	)
	require.NoError(t, os.WriteFile(filepath.Join(dir, release.FlatFileName), []byte("stale content that is longer than the new file"+flatVcf), 0644))

	flat, err := newTestStager(dir).Stage(context.Background())
	require.NoError(t, err)

	contents, err := os.ReadFile(flat)
	require.NoError(t, err)
	assert.Equal(t, flatVcf, string(contents))
}

func TestStageErrors(t *testing.T) {
	t.Run("missing archive", func(t *testing.T) {
		_, err := newTestStager(t.TempDir()).Stage(context.Background())
		assert.True(t, errors.Is(err, ErrArchiveMissing))
	})

	t.Run("archive without nested file", func(t *testing.T) {
		dir := t.TempDir()
		writeTar(t, filepath.Join(dir, release.ArchiveName), tarEntry{name: "other.txt", body: []byte("x")})

		_, err := newTestStager(dir).Stage(context.Background())
		assert.True(t, errors.Is(err, ErrNestedFileMissing))
	})

	t.Run("entry escaping the data folder", func(t *testing.T) {
		dir := t.TempDir()
		writeTar(t, filepath.Join(dir, release.ArchiveName), tarEntry{name: "../escape.txt", body: []byte("x")})

		_, err := newTestStager(dir).Stage(context.Background())
		assert.True(t, errors.Is(err, ErrUnsafeArchivePath))
		_, statErr := os.Stat(filepath.Join(filepath.Dir(dir), "escape.txt"))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("corrupt nested file", func(t *testing.T) {
		dir := t.TempDir()
		writeTar(t, filepath.Join(dir, release.ArchiveName), tarEntry{name: release.NestedFileName, body: []byte("not gzip at all")})

		_, err := newTestStager(dir).Stage(context.Background())
		assert.Error(t, err)
		_, statErr := os.Stat(filepath.Join(dir, release.FlatFileName))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("cancelled", func(t *testing.T) {
		dir := t.TempDir()
		writeTar(t, filepath.Join(dir, release.ArchiveName), tarEntry{name: release.NestedFileName, body: gzipBytes(t, flatVcf)})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := newTestStager(dir).Stage(ctx)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestIsBgzf(t *testing.T) {
	assert.True(t, isBgzf(bgzfBytes(t, "x")))
	assert.False(t, isBgzf(gzipBytes(t, "x")))
	assert.False(t, isBgzf([]byte{0x1f}))
}

func TestDecompressWithProgress(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.vcf.gz")
	require.NoError(t, os.WriteFile(src, bgzfBytes(t, flatVcf), 0644))

	dst := filepath.Join(dir, "out.vcf")
	require.NoError(t, Decompress(src, dst, true))

	contents, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, flatVcf, string(contents))
}
