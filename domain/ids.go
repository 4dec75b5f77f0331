package domain

import (
	"maps"
	"slices"
	"time"
)

// Identifiers are assigned by the repository on first save; zero means the
// aggregate has not been persisted yet.
type (
	ProductID  int64
	CategoryID int64
	TagID      int64
	OrderID    int64
	PaymentID  int64
)

// now is the clock used for created/last-updated timestamps.
var now = func() time.Time { return time.Now().UTC() }

type idSet[T ~int64] map[T]struct{}

func newIDSet[T ~int64](ids []T) idSet[T] {
	s := make(idSet[T], len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// add reports whether id was not already present.
func (s idSet[T]) add(id T) bool {
	if _, ok := s[id]; ok {
		return false
	}
	s[id] = struct{}{}
	return true
}

// remove reports whether id was present.
func (s idSet[T]) remove(id T) bool {
	if _, ok := s[id]; !ok {
		return false
	}
	delete(s, id)
	return true
}

func (s idSet[T]) has(id T) bool {
	_, ok := s[id]
	return ok
}

func (s idSet[T]) sorted() []T {
	out := slices.Sorted(maps.Keys(s))
	if out == nil {
		return []T{}
	}
	return out
}

func assignID[T ~int64](aggregate string, current *T, id T) error {
	if *current != 0 {
		return NewLifecycleError(aggregate, int64(*current), "identity already assigned")
	}
	if id <= 0 {
		return NewArgumentError("id", "must be positive", id)
	}
	*current = id
	return nil
}
