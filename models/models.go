package models

// Document is a JSON-shaped variant document. Values are restricted to
// string, int64, float64, bool, nil, []interface{} and map[string]interface{}.
type Document map[string]interface{}

// Id returns the document's "_id", or "" when absent.
func (d Document) Id() string {
	id, _ := d["_id"].(string)
	return id
}

// DocumentIterator is a pull-based, forward-only stream of documents.
// Callers loop on Next, check Err once Next returns false, and always Close.
type DocumentIterator interface {
	Next() bool
	Document() Document
	Err() error
	Close() error
}

type Entry struct {
	Key      string
	Document Document
}

// EntryIterator streams keyed documents, typically in key order.
type EntryIterator interface {
	Next() bool
	Entry() Entry
	Err() error
	Close() error
}
