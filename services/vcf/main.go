// Package vcf reads uncompressed VCF files record by record.
package vcf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	maxLineSize = 8 * 1000000 // 8 MB
	minColumns  = 8
	missing     = "."
)

var ErrMalformedLine = errors.New("malformed VCF line")

// Info maps INFO keys to their comma-split values. Flags map to an empty,
// non-nil slice.
type Info map[string][]string

func (info Info) Get(key string) ([]string, bool) {
	values, ok := info[key]
	return values, ok
}

func (info Info) GetOrDefault(key string, def []string) []string {
	if values, ok := info[key]; ok {
		return values
	}
	return def
}

// Scalar returns the first value of key.
func (info Info) Scalar(key string) (string, bool) {
	values, ok := info[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

type Record struct {
	Line   int
	Chrom  string
	Pos    int64
	Id     string
	Ref    string
	Alt    []string
	Qual   string
	Filter string
	Info   Info
}

func (r *Record) String() string {
	return fmt.Sprintf("%s:%d %s>%s", r.Chrom, r.Pos, r.Ref, strings.Join(r.Alt, ","))
}

type Reader struct {
	scanner *bufio.Scanner
	closer  io.Closer
	header  *Header
	record  *Record
	line    int
	err     error
}

func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	return &Reader{
		scanner: scanner,
		header:  NewHeader(),
	}
}

func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}

	reader := NewReader(f)
	reader.closer = f
	return reader, nil
}

// Header holds every header line seen so far; it is complete once the first
// record has been read.
func (r *Reader) Header() *Header { return r.header }

func (r *Reader) Record() *Record { return r.record }

func (r *Reader) Err() error { return r.err }

func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}

	for r.scanner.Scan() {
		r.line++
		line := strings.TrimRight(r.scanner.Text(), "\r")

		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#"):
			r.header.parse(line)
			continue
		}

		record, err := r.parse(line)
		if err != nil {
			r.err = err
			return false
		}
		r.record = record
		return true
	}

	if err := r.scanner.Err(); err != nil {
		r.err = errors.Wrapf(err, "reading line %d", r.line+1)
	}
	return false
}

func (r *Reader) parse(line string) (*Record, error) {
	data := strings.Split(line, "\t")
	if len(data) < minColumns {
		return nil, errors.Wrapf(ErrMalformedLine, "line %d: expected at least %d tab separated columns, found %d", r.line, minColumns, len(data))
	}

	pos, err := strconv.ParseInt(data[1], 10, 64)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedLine, "line %d: invalid position %q", r.line, data[1])
	}

	record := &Record{
		Line:   r.line,
		Chrom:  data[0],
		Pos:    pos,
		Id:     data[2],
		Ref:    data[3],
		Qual:   data[5],
		Filter: data[6],
		Info:   r.parseInfo(data[7]),
	}
	if data[4] != missing {
		record.Alt = strings.Split(data[4], ",")
	}

	return record, nil
}

func (r *Reader) parseInfo(field string) Info {
	info := Info{}
	if field == missing || field == "" {
		return info
	}

	for _, entry := range strings.Split(field, ";") {
		if entry == "" {
			continue
		}
		split := strings.SplitN(entry, "=", 2)
		key := split[0]

		limit := r.header.splitLimit(key)
		if len(split) == 1 || limit == 0 {
			info[key] = []string{}
			continue
		}
		info[key] = strings.SplitN(split[1], ",", limit)
	}

	return info
}
