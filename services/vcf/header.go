package vcf

import (
	"regexp"
	"strconv"
	"strings"
)

type InfoDefinition struct {
	Id          string
	Number      string
	Type        string
	Description string
}

type Header struct {
	Info    map[string]InfoDefinition
	Columns []string
	Other   []string
}

func NewHeader() *Header {
	return &Header{Info: map[string]InfoDefinition{}}
}

var metaLinePattern = regexp.MustCompile(`^##(?P<headerType>[^=]*)=<(?P<content>.*)>$`)

func (header *Header) parse(line string) {
	if strings.HasPrefix(line, "#CHROM") {
		header.Columns = strings.Split(strings.TrimPrefix(line, "#"), "\t")
		return
	}

	matches := metaLinePattern.FindStringSubmatch(line)
	if len(matches) == 0 || matches[1] != "INFO" {
		header.Other = append(header.Other, line)
		return
	}

	content := convertLineToMap(matches[2])
	header.Info[content["id"]] = InfoDefinition{
		Id:          content["id"],
		Number:      content["number"],
		Type:        content["type"],
		Description: strings.Trim(content["description"], `"`),
	}
}

// splitLimit is the strings.SplitN limit for an INFO value: -1 splits on
// every comma, 1 keeps the value whole, 0 means the key is a flag.
func (header *Header) splitLimit(key string) int {
	definition, ok := header.Info[key]
	if !ok {
		return -1
	}
	if definition.Type == "Flag" {
		return 0
	}

	number, err := strconv.Atoi(definition.Number)
	if err != nil {
		// A, R, G and "." are all per-allele or unbounded lists
		return -1
	}
	return number
}

// convertLineToMap splits `ID=AF,Number=A,Description="a, b"` into
// lower-cased keys, honouring quotes.
func convertLineToMap(line string) map[string]string {
	data := map[string]string{}
	word := ""
	key := ""
	quote := ""
	for _, letter := range strings.Split(line, "") {
		if letter == "=" && key == "" && quote == "" {
			key = strings.ToLower(word)
			word = ""
			continue
		} else if letter == "," && quote == "" {
			data[key] = word
			key = ""
			word = ""
			continue
		}

		word += letter

		if letter == quote {
			quote = ""
		} else if quote == "" && (letter == "\"" || letter == "'") {
			quote = letter
		}
	}
	data[key] = word

	return data
}
