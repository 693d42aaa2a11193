// Package sorter orders documents by identifier on disk with the system sort
// utility, so the full release never has to fit in memory.
package sorter

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"kaviar/models"
	"kaviar/utils"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const maxLineSize = 8 * 1000000 // 8 MB

var ErrSortFailed = errors.New("external sort failed")

type Sorter struct {
	Dir        string
	Command    string
	BufferSize string
	Metrics    *utils.Metrics
	Logger     *zap.SugaredLogger
}

// Sort drains and closes docs, then returns them in byte order of their
// "_id". The scratch files live in Dir; the unsorted one is gone when Sort
// returns and the sorted one is removed by Sorted.Close.
func (s *Sorter) Sort(ctx context.Context, docs models.DocumentIterator) (*Sorted, error) {
	dir := s.Dir
	if dir == "" {
		dir = os.TempDir()
	}

	unsorted, err := os.CreateTemp(dir, "kaviar-unsorted-*.tsv")
	if err != nil {
		docs.Close()
		return nil, errors.Wrap(err, "creating sort scratch file")
	}
	defer os.Remove(unsorted.Name())

	count, err := s.writeScratch(unsorted, docs)
	if closeErr := docs.Close(); err == nil {
		err = closeErr
	}
	if closeErr := unsorted.Close(); err == nil {
		err = errors.Wrap(closeErr, "closing sort scratch file")
	}
	if err != nil {
		return nil, err
	}

	sorted, err := os.CreateTemp(dir, "kaviar-sorted-*.tsv")
	if err != nil {
		return nil, errors.Wrap(err, "creating sorted scratch file")
	}
	sorted.Close()

	s.Logger.Infof("Sorting %d documents", count)
	if err := s.run(ctx, dir, unsorted.Name(), sorted.Name()); err != nil {
		os.Remove(sorted.Name())
		return nil, err
	}

	return OpenSorted(sorted.Name())
}

func (s *Sorter) writeScratch(f *os.File, docs models.DocumentIterator) (int, error) {
	w := bufio.NewWriter(f)

	count := 0
	for docs.Next() {
		doc := docs.Document()
		line, err := EncodeLine(doc.Id(), doc)
		if err != nil {
			return count, err
		}
		if _, err := w.Write(line); err != nil {
			return count, errors.Wrap(err, "writing sort scratch file")
		}
		count++
		if s.Metrics != nil {
			s.Metrics.DocumentsSorted.Inc()
		}
	}
	if err := docs.Err(); err != nil {
		return count, err
	}

	return count, errors.Wrap(w.Flush(), "writing sort scratch file")
}

func (s *Sorter) run(ctx context.Context, dir string, in string, out string) error {
	command := s.Command
	if command == "" {
		command = "sort"
	}

	args := []string{"-s", "-t", "\t", "-k", "1,1", "-T", dir}
	if s.BufferSize != "" {
		args = append(args, "-S", s.BufferSize)
	}
	args = append(args, "-o", out, in)

	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Env = append(os.Environ(), "LC_ALL=C")
	cmdOutput := &bytes.Buffer{}
	cmd.Stderr = cmdOutput

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(ErrSortFailed, "%s: %v %s", command, err, strings.TrimSpace(cmdOutput.String()))
	}
	return nil
}

// Sorted streams the entries of a sorted scratch file and implements
// models.EntryIterator.
type Sorted struct {
	file    *os.File
	scanner *bufio.Scanner
	entry   models.Entry
	err     error
	closed  bool
}

func OpenSorted(path string) (*Sorted, error) {
	f, err := os.Open(path)
	if err != nil {
		os.Remove(path)
		return nil, errors.Wrapf(err, "opening sorted scratch file %s", path)
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	return &Sorted{file: f, scanner: scanner}, nil
}

func (s *Sorted) Next() bool {
	if s.err != nil || s.closed {
		return false
	}
	if !s.scanner.Scan() {
		s.err = errors.Wrap(s.scanner.Err(), "reading sorted scratch file")
		return false
	}

	entry, err := DecodeLine(s.scanner.Bytes())
	if err != nil {
		s.err = err
		return false
	}
	s.entry = entry
	return true
}

func (s *Sorted) Entry() models.Entry { return s.entry }

func (s *Sorted) Err() error { return s.err }

func (s *Sorted) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.file.Close()
	if removeErr := os.Remove(s.file.Name()); err == nil {
		err = removeErr
	}
	return errors.Wrap(err, "removing sorted scratch file")
}
