// Package hgvs derives HGVS genomic identifiers ("chr1:g.100A>G") from VCF
// coordinates and alleles.
package hgvs

import (
	"fmt"
	"regexp"

	"kaviar/models/constants"
	"kaviar/models/constants/chromosome"
	mutationType "kaviar/models/constants/mutation-type"

	"github.com/pkg/errors"
)

type Outcome int

const (
	// Derived carries a usable identifier.
	Derived Outcome = iota
	// Skipped means this allele cannot be identified; siblings still can.
	Skipped
	// Unrepresentable means derivation ran but produced no identifier; the
	// whole record has to be dropped.
	Unrepresentable
)

func (o Outcome) String() string {
	switch o {
	case Derived:
		return "derived"
	case Skipped:
		return "skipped"
	case Unrepresentable:
		return "unrepresentable"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

type Result struct {
	Outcome Outcome
	Id      string
	Type    constants.MutationType
	Err     error
}

func NewResult(id string, mutation constants.MutationType, err error) Result {
	switch {
	case err != nil:
		return Result{Outcome: Skipped, Err: err}
	case id == "":
		return Result{Outcome: Unrepresentable, Type: mutation}
	default:
		return Result{Outcome: Derived, Id: id, Type: mutation}
	}
}

type Deriver interface {
	Derive(chrom string, pos int64, ref, alt string) Result
}

var (
	ErrInvalidRef       = errors.New("invalid reference allele")
	ErrInvalidAlt       = errors.New("invalid alternate allele")
	ErrIdenticalAlleles = errors.New("reference and alternate alleles are identical")

	refPattern = regexp.MustCompile(`^[ACGTN]+$`)
	altPattern = regexp.MustCompile(`^[ACGTN*]+$`)
)

// Genomic is the default Deriver, producing "g." identifiers on hg19
// chromosome labels.
type Genomic struct{}

func (Genomic) Derive(chrom string, pos int64, ref, alt string) Result {
	return NewResult(FromVcf(chrom, pos, ref, alt))
}

// FromVcf returns the identifier and mutation type for one alternate allele.
// An empty identifier with a nil error means the coordinates are not
// representable (no chromosome, or a position before the first base).
func FromVcf(chrom string, pos int64, ref, alt string) (string, constants.MutationType, error) {
	if !refPattern.MatchString(ref) {
		return "", mutationType.Unknown, errors.Wrapf(ErrInvalidRef, "%q", ref)
	}
	if !altPattern.MatchString(alt) {
		return "", mutationType.Unknown, errors.Wrapf(ErrInvalidAlt, "%q", alt)
	}

	label := chromosome.Label(chrom)
	if label == "" || pos < 1 {
		return "", mutationType.Unknown, nil
	}

	return derive(label, pos, ref, alt)
}

func derive(label string, pos int64, ref, alt string) (string, constants.MutationType, error) {
	switch {
	case len(ref) == len(alt) && len(ref) == 1:
		return fmt.Sprintf("%s:g.%d%s>%s", label, pos, ref, alt), mutationType.Snp, nil

	case len(ref) > 1 && len(alt) == 1:
		end := pos + int64(len(ref)) - 1
		if ref[0] != alt[0] {
			return fmt.Sprintf("%s:g.%d_%ddelins%s", label, pos, end, alt), mutationType.Delins, nil
		}
		start := pos + 1
		if start == end {
			return fmt.Sprintf("%s:g.%ddel", label, start), mutationType.Deletion, nil
		}
		return fmt.Sprintf("%s:g.%d_%ddel", label, start, end), mutationType.Deletion, nil

	case len(ref) == 1 && len(alt) > 1:
		if ref[0] != alt[0] {
			return fmt.Sprintf("%s:g.%ddelins%s", label, pos, alt), mutationType.Delins, nil
		}
		return fmt.Sprintf("%s:g.%d_%dins%s", label, pos, pos+1, alt[1:]), mutationType.Insertion, nil

	default:
		if ref == alt {
			return "", mutationType.Unknown, errors.Wrapf(ErrIdenticalAlleles, "%s:%d %s>%s", label, pos, ref, alt)
		}
		if ref[0] == alt[0] {
			pos, ref, alt = trimCommonPrefix(pos, ref, alt)
			return derive(label, pos, ref, alt)
		}
		end := pos + int64(len(ref)) - 1
		return fmt.Sprintf("%s:g.%d_%ddelins%s", label, pos, end, alt), mutationType.Delins, nil
	}
}

// trimCommonPrefix drops the shared leading bases of ref and alt, keeping one
// anchor base when one allele would otherwise become empty.
func trimCommonPrefix(pos int64, ref, alt string) (int64, string, string) {
	n := 0
	for n < len(ref) && n < len(alt) && ref[n] == alt[n] {
		n++
	}
	if n == len(ref) || n == len(alt) {
		n--
	}
	return pos + int64(n), ref[n:], alt[n:]
}
