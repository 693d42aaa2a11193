package sorter

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"kaviar/models"

	"github.com/pkg/errors"
)

var (
	keyEscaper   = strings.NewReplacer(`\`, `\\`, "\t", `\t`, "\n", `\n`, "\r", `\r`)
	keyUnescaper = strings.NewReplacer(`\\`, `\`, `\t`, "\t", `\n`, "\n", `\r`, "\r")
)

// EncodeLine renders one scratch line: the escaped key, a tab, the JSON
// payload and a newline. Floats always carry a decimal point or an exponent
// so DecodeLine can tell them apart from integers.
func EncodeLine(key string, doc models.Document) ([]byte, error) {
	payload, err := json.Marshal(markFloats(map[string]interface{}(doc)))
	if err != nil {
		return nil, errors.Wrapf(err, "encoding document %s", key)
	}

	var line bytes.Buffer
	line.Grow(len(key) + len(payload) + 2)
	line.WriteString(keyEscaper.Replace(key))
	line.WriteByte('\t')
	line.Write(payload)
	line.WriteByte('\n')
	return line.Bytes(), nil
}

func DecodeLine(line []byte) (models.Entry, error) {
	tab := bytes.IndexByte(line, '\t')
	if tab < 0 {
		return models.Entry{}, errors.Errorf("scratch line has no key separator: %.80q", line)
	}

	decoder := json.NewDecoder(bytes.NewReader(line[tab+1:]))
	decoder.UseNumber()

	var payload map[string]interface{}
	if err := decoder.Decode(&payload); err != nil {
		return models.Entry{}, errors.Wrapf(err, "decoding scratch line %.80q", line)
	}

	doc, err := restoreNumbers(payload)
	if err != nil {
		return models.Entry{}, err
	}

	return models.Entry{
		Key:      keyUnescaper.Replace(string(line[:tab])),
		Document: models.Document(doc.(map[string]interface{})),
	}, nil
}

func markFloats(v interface{}) interface{} {
	switch value := v.(type) {
	case models.Document:
		return markFloats(map[string]interface{}(value))
	case map[string]interface{}:
		marked := make(map[string]interface{}, len(value))
		for k, element := range value {
			marked[k] = markFloats(element)
		}
		return marked
	case []interface{}:
		marked := make([]interface{}, len(value))
		for i, element := range value {
			marked[i] = markFloats(element)
		}
		return marked
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return value
		}
		literal := strconv.FormatFloat(value, 'g', -1, 64)
		if !strings.ContainsAny(literal, ".eE") {
			literal += ".0"
		}
		return json.Number(literal)
	default:
		return v
	}
}

func restoreNumbers(v interface{}) (interface{}, error) {
	switch value := v.(type) {
	case map[string]interface{}:
		for k, element := range value {
			restored, err := restoreNumbers(element)
			if err != nil {
				return nil, err
			}
			value[k] = restored
		}
		return value, nil
	case []interface{}:
		for i, element := range value {
			restored, err := restoreNumbers(element)
			if err != nil {
				return nil, err
			}
			value[i] = restored
		}
		return value, nil
	case json.Number:
		literal := value.String()
		if !strings.ContainsAny(literal, ".eE") {
			if i, err := strconv.ParseInt(literal, 10, 64); err == nil {
				return i, nil
			}
		}
		f, err := strconv.ParseFloat(literal, 64)
		return f, errors.Wrapf(err, "decoding number %s", literal)
	default:
		return v, nil
	}
}
