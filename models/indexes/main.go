package indexes

import (
	"kaviar/models"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// Variant is the typed view of a merged Kaviar document. Every attribute may
// hold a scalar or, after merging conflicting rows, a list of scalars.
type Variant struct {
	Id     string `mapstructure:"_id" json:"_id"`
	Kaviar Kaviar `mapstructure:"kaviar" json:"kaviar"`
}

type Kaviar struct {
	MultiAllelic interface{} `mapstructure:"multi-allelic" json:"multi-allelic,omitempty"`
	Ref          interface{} `mapstructure:"ref" json:"ref,omitempty"`
	Alt          interface{} `mapstructure:"alt" json:"alt,omitempty"`
	Af           interface{} `mapstructure:"af" json:"af,omitempty"`
	Ac           interface{} `mapstructure:"ac" json:"ac,omitempty"`
	An           interface{} `mapstructure:"an" json:"an,omitempty"`
	Ds           interface{} `mapstructure:"ds" json:"ds,omitempty"`
}

var ErrMissingId = errors.New("document has no _id")

func DecodeVariant(doc models.Document) (*Variant, error) {
	var v Variant
	if err := mapstructure.Decode(map[string]interface{}(doc), &v); err != nil {
		return nil, errors.Wrap(err, "decoding kaviar document")
	}
	if v.Id == "" {
		return nil, ErrMissingId
	}
	return &v, nil
}

// Values flattens a scalar-or-list attribute into a list.
func Values(attribute interface{}) []interface{} {
	switch v := attribute.(type) {
	case nil:
		return nil
	case []interface{}:
		return v
	default:
		return []interface{}{v}
	}
}

// Conflicted reports whether merging left more than one distinct value for
// ref or alt.
func (v *Variant) Conflicted() bool {
	return len(Values(v.Kaviar.Ref)) > 1 || len(Values(v.Kaviar.Alt)) > 1
}

var MAPPING_FIELDS_KEYWORD_IG256 = map[string]interface{}{
	"keyword": map[string]interface{}{
		"type":         "keyword",
		"ignore_above": 256,
	},
}
var MAPPING_TEXT = map[string]interface{}{"type": "text", "fields": MAPPING_FIELDS_KEYWORD_IG256}
var MAPPING_KEYWORD = map[string]interface{}{"type": "keyword"}
var MAPPING_LONG = map[string]interface{}{"type": "long"}
var MAPPING_FLOAT64 = map[string]interface{}{"type": "double"}

var KAVIAR_INDEX_MAPPING = map[string]interface{}{
	"properties": map[string]interface{}{
		"kaviar": map[string]interface{}{
			"properties": map[string]interface{}{
				"multi-allelic": MAPPING_KEYWORD,
				"ref":           MAPPING_KEYWORD,
				"alt":           MAPPING_KEYWORD,
				"af":            MAPPING_FLOAT64,
				"ac":            MAPPING_LONG,
				"an":            MAPPING_LONG,
				"ds":            MAPPING_TEXT,
			},
		},
	},
}
