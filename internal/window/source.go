package window

import "strconv"

// Source is a lazily indexed collection. The engine never asks for more
// than Len and the items of the current window.
type Source interface {
	Len() int
	Item(index int) string
}

// IndexedSource is a synthetic collection of N items labeled "Item #1",
// "Item #2", and so on.
type IndexedSource struct {
	N      int
	Prefix string
}

func (s IndexedSource) Len() int { return s.N }

func (s IndexedSource) Item(index int) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "Item #"
	}
	return prefix + strconv.Itoa(index+1)
}
