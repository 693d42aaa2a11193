package hgvs

import (
	"testing"

	"kaviar/models/constants"
	mutationType "kaviar/models/constants/mutation-type"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestFromVcf(t *testing.T) {
	for _, tc := range []struct {
		name     string
		chrom    string
		pos      int64
		ref, alt string
		id       string
		mutation constants.MutationType
	}{
		{"snp", "1", 100, "A", "G", "chr1:g.100A>G", mutationType.Snp},
		{"snp with chr prefix", "chrX", 5, "C", "T", "chrX:g.5C>T", mutationType.Snp},
		{"spanning deletion allele", "2", 7, "A", "*", "chr2:g.7A>*", mutationType.Snp},
		{"single base deletion", "1", 100, "AT", "A", "chr1:g.101del", mutationType.Deletion},
		{"multi base deletion", "1", 100, "ATTG", "A", "chr1:g.101_103del", mutationType.Deletion},
		{"deletion without anchor", "1", 100, "AT", "G", "chr1:g.100_101delinsG", mutationType.Delins},
		{"insertion", "1", 100, "A", "ATT", "chr1:g.100_101insTT", mutationType.Insertion},
		{"insertion without anchor", "1", 100, "A", "GTT", "chr1:g.100delinsGTT", mutationType.Delins},
		{"trimmed to snp", "1", 100, "AC", "AT", "chr1:g.101C>T", mutationType.Snp},
		{"trimmed to insertion", "1", 100, "AT", "ATT", "chr1:g.101_102insT", mutationType.Insertion},
		{"trimmed to deletion", "1", 100, "ATT", "AT", "chr1:g.102del", mutationType.Deletion},
		{"complex", "1", 100, "AC", "GT", "chr1:g.100_101delinsGT", mutationType.Delins},
		{"complex of unequal length", "1", 100, "ACG", "TT", "chr1:g.100_102delinsTT", mutationType.Delins},
	} {
		t.Run(tc.name, func(t *testing.T) {
			id, mutation, err := FromVcf(tc.chrom, tc.pos, tc.ref, tc.alt)
			assert.NoError(t, err)
			assert.Equal(t, tc.id, id)
			assert.Equal(t, tc.mutation, mutation)
		})
	}
}

func TestFromVcfErrors(t *testing.T) {
	t.Run("symbolic alternate", func(t *testing.T) {
		_, _, err := FromVcf("1", 100, "A", "<DEL>")
		assert.True(t, errors.Is(err, ErrInvalidAlt))
	})

	t.Run("lower case reference", func(t *testing.T) {
		_, _, err := FromVcf("1", 100, "a", "G")
		assert.True(t, errors.Is(err, ErrInvalidRef))
	})

	t.Run("identical multi base alleles", func(t *testing.T) {
		_, _, err := FromVcf("1", 100, "AT", "AT")
		assert.True(t, errors.Is(err, ErrIdenticalAlleles))
	})
}

func TestDerive(t *testing.T) {
	var deriver Deriver = Genomic{}

	derived := deriver.Derive("1", 100, "A", "G")
	assert.Equal(t, Derived, derived.Outcome)
	assert.Equal(t, "chr1:g.100A>G", derived.Id)
	assert.Equal(t, mutationType.Snp, derived.Type)

	skipped := deriver.Derive("1", 100, "A", "<INS>")
	assert.Equal(t, Skipped, skipped.Outcome)
	assert.Error(t, skipped.Err)
	assert.Empty(t, skipped.Id)

	noChromosome := deriver.Derive("", 100, "A", "G")
	assert.Equal(t, Unrepresentable, noChromosome.Outcome)
	assert.NoError(t, noChromosome.Err)

	noPosition := deriver.Derive("1", 0, "A", "G")
	assert.Equal(t, Unrepresentable, noPosition.Outcome)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "derived", Derived.String())
	assert.Equal(t, "skipped", Skipped.String())
	assert.Equal(t, "unrepresentable", Unrepresentable.String())
	assert.Equal(t, "outcome(9)", Outcome(9).String())
}
