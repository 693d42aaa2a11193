package utils

import (
	"bufio"
	"encoding/json"
	"io"

	"kaviar/models"

	"github.com/pkg/errors"
)

// WriteJsonLines drains docs into w, one JSON object per line, and returns
// the number of documents written. docs is not closed.
func WriteJsonLines(w io.Writer, docs models.DocumentIterator) (int, error) {
	buffered := bufio.NewWriter(w)
	encoder := json.NewEncoder(buffered)
	encoder.SetEscapeHTML(false)

	count := 0
	for docs.Next() {
		doc := docs.Document()
		if err := encoder.Encode(doc); err != nil {
			return count, errors.Wrapf(err, "encoding document %s", doc.Id())
		}
		count++
	}
	if err := docs.Err(); err != nil {
		return count, err
	}

	return count, errors.Wrap(buffered.Flush(), "flushing output")
}
