package utils

import "kaviar/models"

func StringInSlice(a string, list []string) bool {
	for _, b := range list {
		if b == a {
			return true
		}
	}
	return false
}

// DocumentSlice adapts an in-memory slice to models.DocumentIterator.
type DocumentSlice struct {
	docs []models.Document
	pos  int
}

func NewDocumentSlice(docs ...models.Document) *DocumentSlice {
	return &DocumentSlice{docs: docs, pos: -1}
}

func (s *DocumentSlice) Next() bool {
	if s.pos+1 >= len(s.docs) {
		s.pos = len(s.docs)
		return false
	}
	s.pos++
	return true
}

func (s *DocumentSlice) Document() models.Document { return s.docs[s.pos] }
func (s *DocumentSlice) Err() error                { return nil }
func (s *DocumentSlice) Close() error              { return nil }

// Collect drains an iterator into a slice and closes it.
func Collect(docs models.DocumentIterator) ([]models.Document, error) {
	defer docs.Close()

	var all []models.Document
	for docs.Next() {
		all = append(all, docs.Document())
	}
	return all, docs.Err()
}
