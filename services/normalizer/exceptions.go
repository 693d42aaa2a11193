package normalizer

import (
	_ "embed"
	"os"
	"strings"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

//go:embed known_exceptions.yml
var defaultKnownExceptions []byte

type DescriptorException struct {
	Attribute   string `yaml:"attribute"`
	Pattern     string `yaml:"pattern"`
	Placeholder string `yaml:"placeholder"`
}

type KnownExceptions struct {
	DescriptorExceptions []DescriptorException `yaml:"descriptorExceptions"`
}

func DefaultKnownExceptions() *KnownExceptions {
	k, err := parseKnownExceptions(defaultKnownExceptions)
	if err != nil {
		panic(err)
	}
	return k
}

// LoadKnownExceptions reads the table from path, or returns the built-in
// table when path is empty.
func LoadKnownExceptions(path string) (*KnownExceptions, error) {
	if path == "" {
		return DefaultKnownExceptions(), nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading known exceptions %s", path)
	}
	k, err := parseKnownExceptions(contents)
	return k, errors.Wrapf(err, "parsing known exceptions %s", path)
}

func parseKnownExceptions(contents []byte) (*KnownExceptions, error) {
	k := &KnownExceptions{}
	if err := yaml.UnmarshalStrict(contents, k); err != nil {
		return nil, err
	}
	for _, e := range k.DescriptorExceptions {
		if e.Attribute == "" || e.Pattern == "" || e.Placeholder == "" {
			return nil, errors.Errorf("incomplete exception %+v", e)
		}
		if strings.Contains(e.Placeholder, ",") {
			return nil, errors.Errorf("placeholder %q must not contain a comma", e.Placeholder)
		}
	}
	return k, nil
}

// Repair re-splits the comma separated values of attribute with every known
// pattern protected, then restores the patterns. The second result reports
// whether the repaired list has want entries.
func (k *KnownExceptions) Repair(attribute string, values []string, want int) ([]string, bool) {
	var applicable []DescriptorException
	for _, e := range k.DescriptorExceptions {
		if e.Attribute == attribute {
			applicable = append(applicable, e)
		}
	}
	if len(applicable) == 0 {
		return values, len(values) == want
	}

	joined := strings.Join(values, ",")
	for _, e := range applicable {
		joined = strings.ReplaceAll(joined, e.Pattern, e.Placeholder)
	}

	repaired := strings.Split(joined, ",")
	for i := range repaired {
		for _, e := range applicable {
			repaired[i] = strings.ReplaceAll(repaired[i], e.Placeholder, e.Pattern)
		}
	}

	return repaired, len(repaired) == want
}
