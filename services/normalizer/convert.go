package normalizer

import (
	"math"
	"strconv"
	"strings"

	"kaviar/models"
)

const idKey = "_id"

// ConvertToNumber returns a copy of v in which every string that parses as an
// integer becomes an int64 and every other string that parses as a finite
// float becomes a float64. Maps and lists are walked recursively; the value
// under "_id" is left untouched. []string values come back as []interface{}.
func ConvertToNumber(v interface{}) interface{} {
	switch value := v.(type) {
	case models.Document:
		return models.Document(convertMap(value))
	case map[string]interface{}:
		return convertMap(value)
	case []interface{}:
		converted := make([]interface{}, len(value))
		for i, element := range value {
			converted[i] = ConvertToNumber(element)
		}
		return converted
	case []string:
		converted := make([]interface{}, len(value))
		for i, element := range value {
			converted[i] = toNumber(element)
		}
		return converted
	case string:
		return toNumber(value)
	default:
		return v
	}
}

func convertMap(m map[string]interface{}) map[string]interface{} {
	converted := make(map[string]interface{}, len(m))
	for key, value := range m {
		if key == idKey {
			converted[key] = value
			continue
		}
		converted[key] = ConvertToNumber(value)
	}
	return converted
}

func toNumber(s string) interface{} {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	// hex floats and digit separators are not decimal numbers
	if strings.ContainsAny(s, "xX_") {
		return s
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return s
}
