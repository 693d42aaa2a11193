// Package staging unpacks a Kaviar release into the flat VCF the parser reads.
package staging

import (
	"archive/tar"
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"kaviar/models/constants/release"

	"github.com/biogo/hts/bgzf"
	"github.com/cheggaaa/pb/v3"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrArchiveMissing    = errors.New("release archive not found")
	ErrNestedFileMissing = errors.New("compressed VCF not found after extraction")
	ErrUnsafeArchivePath = errors.New("archive entry escapes the data folder")
)

type Stager struct {
	DataFolder   string
	ShowProgress bool
	Logger       *zap.SugaredLogger
}

// Stage extracts the release archive in the data folder and decompresses the
// nested VCF next to it, returning the flat file's path. Existing files are
// overwritten.
func (s *Stager) Stage(ctx context.Context) (string, error) {
	files := release.In(s.DataFolder)

	if _, err := os.Stat(files.Archive); err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrap(ErrArchiveMissing, files.Archive)
		}
		return "", errors.Wrapf(err, "checking %s", files.Archive)
	}

	s.Logger.Infof("Extracting %s", files.Archive)
	if err := ExtractTar(ctx, files.Archive, s.DataFolder); err != nil {
		return "", err
	}

	if _, err := os.Stat(files.Nested); err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrap(ErrNestedFileMissing, files.Nested)
		}
		return "", errors.Wrapf(err, "checking %s", files.Nested)
	}

	s.Logger.Infof("Decompressing %s to %s", files.Nested, files.Flat)
	if err := Decompress(files.Nested, files.Flat, s.ShowProgress); err != nil {
		return "", err
	}

	return files.Flat, nil
}

// ExtractTar unpacks the regular files and directories of archive below dest.
func ExtractTar(ctx context.Context, archive string, dest string) error {
	f, err := os.Open(archive)
	if err != nil {
		return errors.Wrapf(err, "opening %s", archive)
	}
	defer f.Close()

	tr := tar.NewReader(bufio.NewReader(f))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if errors.Is(err, tar.ErrInsecurePath) {
			return errors.Wrap(ErrUnsafeArchivePath, header.Name)
		}
		if err != nil {
			return errors.Wrapf(err, "reading %s", archive)
		}

		target, err := safeJoin(dest, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return errors.Wrapf(err, "creating %s", target)
			}
		case tar.TypeReg:
			if err := writeFile(target, tr); err != nil {
				return err
			}
		}
	}
}

func safeJoin(dest string, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Wrap(ErrUnsafeArchivePath, name)
	}
	return target, nil
}

func writeFile(target string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrapf(err, "creating %s", filepath.Dir(target))
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, "creating %s", target)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return errors.Wrapf(err, "writing %s", target)
	}
	return errors.Wrapf(out.Close(), "closing %s", target)
}

// Decompress inflates the gzip or BGZF file src into dst. dst is replaced
// only once decompression has succeeded.
func Decompress(src string, dst string, showProgress bool) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "opening %s", src)
	}
	defer in.Close()

	var r io.Reader = in
	if showProgress {
		info, err := in.Stat()
		if err != nil {
			return errors.Wrapf(err, "checking %s", src)
		}
		bar := pb.Full.Start64(info.Size())
		defer bar.Finish()
		r = bar.NewProxyReader(in)
	}

	buffered := bufio.NewReader(r)
	head, _ := buffered.Peek(16)

	var decompressed io.ReadCloser
	if isBgzf(head) {
		decompressed, err = bgzf.NewReader(buffered, 0)
	} else {
		decompressed, err = gzip.NewReader(buffered)
	}
	if err != nil {
		return errors.Wrapf(err, "reading %s", src)
	}
	defer decompressed.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".kaviar-flat-*")
	if err != nil {
		return errors.Wrapf(err, "creating temporary file for %s", dst)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, decompressed); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "decompressing %s", src)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", tmp.Name())
	}

	return errors.Wrapf(os.Rename(tmp.Name(), dst), "replacing %s", dst)
}

// isBgzf checks for a gzip member header carrying the BGZF "BC" extra field.
func isBgzf(head []byte) bool {
	return len(head) >= 14 &&
		head[0] == 0x1f && head[1] == 0x8b && head[2] == 8 &&
		head[3]&0x04 != 0 &&
		head[12] == 'B' && head[13] == 'C'
}
