// Package merger collapses runs of documents sharing an identifier into one
// document.
package merger

import (
	"reflect"

	"kaviar/models"
)

// MergeDuplicateRows merges rows that share an "_id". Top-level fields come
// from the first row. Within the source attribute bag every key keeps its
// value when all rows agree, otherwise it becomes the list of distinct values
// in first-seen order.
func MergeDuplicateRows(rows []models.Document, source string) models.Document {
	if len(rows) == 0 {
		return nil
	}

	merged := models.Document{}
	for k, v := range rows[0] {
		merged[k] = v
	}
	if len(rows) == 1 {
		return merged
	}

	var (
		keys     []string
		distinct = map[string][]interface{}{}
	)
	for _, row := range rows {
		attributes, _ := row[source].(map[string]interface{})
		for k, v := range attributes {
			values, seen := distinct[k]
			if !seen {
				keys = append(keys, k)
			}
			if !containsValue(values, v) {
				distinct[k] = append(values, v)
			}
		}
	}

	attributes := make(map[string]interface{}, len(keys))
	for _, k := range keys {
		if values := distinct[k]; len(values) == 1 {
			attributes[k] = values[0]
		} else {
			attributes[k] = values
		}
	}
	merged[source] = attributes

	return merged
}

func containsValue(values []interface{}, v interface{}) bool {
	for _, existing := range values {
		if reflect.DeepEqual(existing, v) {
			return true
		}
	}
	return false
}

// Sweep removes nil values, nil list elements and the lists or maps they
// leave empty, at any depth. m is modified in place and returned.
func Sweep(m map[string]interface{}) map[string]interface{} {
	for k, v := range m {
		if swept, keep := sweepValue(v); keep {
			m[k] = swept
		} else {
			delete(m, k)
		}
	}
	return m
}

func sweepValue(v interface{}) (interface{}, bool) {
	switch value := v.(type) {
	case nil:
		return nil, false
	case models.Document:
		swept := Sweep(value)
		return swept, len(swept) > 0
	case map[string]interface{}:
		swept := Sweep(value)
		return swept, len(swept) > 0
	case []interface{}:
		kept := make([]interface{}, 0, len(value))
		for _, element := range value {
			if swept, keep := sweepValue(element); keep {
				kept = append(kept, swept)
			}
		}
		return kept, len(kept) > 0
	default:
		return v, true
	}
}

// Unlist replaces every single-element list held directly by a map with its
// element, descending into nested maps but not into lists.
func Unlist(m map[string]interface{}) map[string]interface{} {
	for k, v := range m {
		switch value := v.(type) {
		case []interface{}:
			if len(value) == 1 {
				m[k] = value[0]
			}
		case models.Document:
			Unlist(value)
		case map[string]interface{}:
			Unlist(value)
		}
	}
	return m
}

// Grouper merges each maximal run of equal keys from a key-ordered source
// into a single swept, unlisted document.
type Grouper struct {
	source    models.EntryIterator
	attribute string
	pending   *models.Entry
	current   models.Document
	err       error
	done      bool
}

func NewGrouper(source models.EntryIterator, attribute string) *Grouper {
	return &Grouper{source: source, attribute: attribute}
}

func (g *Grouper) Next() bool {
	if g.err != nil || g.done {
		return false
	}

	if g.pending == nil {
		if !g.advance() {
			return false
		}
	}

	key := g.pending.Key
	rows := []models.Document{g.pending.Document}
	g.pending = nil
	for g.advance() {
		if g.pending.Key != key {
			break
		}
		rows = append(rows, g.pending.Document)
		g.pending = nil
	}
	if g.err != nil {
		return false
	}

	merged := MergeDuplicateRows(rows, g.attribute)
	g.current = models.Document(Unlist(Sweep(merged)))
	return true
}

// advance loads the next entry into pending, reporting false at the end of
// the source or on error.
func (g *Grouper) advance() bool {
	if !g.source.Next() {
		g.err = g.source.Err()
		g.done = true
		return false
	}
	entry := g.source.Entry()
	g.pending = &entry
	return true
}

func (g *Grouper) Document() models.Document { return g.current }

func (g *Grouper) Err() error { return g.err }

func (g *Grouper) Close() error { return g.source.Close() }
