package store

// index is an insertion-ordered id map backing the simple stores.
// Insert-or-replace by id: a replaced record keeps its original position.
type index[T any] struct {
	byID  map[string]T
	order []string
}

func newIndex[T any]() *index[T] {
	return &index[T]{byID: make(map[string]T)}
}

func (ix *index[T]) put(id string, v T) {
	if _, exists := ix.byID[id]; !exists {
		ix.order = append(ix.order, id)
	}
	ix.byID[id] = v
}

func (ix *index[T]) get(id string) (T, bool) {
	v, ok := ix.byID[id]
	return v, ok
}

func (ix *index[T]) list() []T {
	out := make([]T, 0, len(ix.order))
	for _, id := range ix.order {
		out = append(out, ix.byID[id])
	}
	return out
}

func (ix *index[T]) delete(id string) {
	if _, exists := ix.byID[id]; !exists {
		return
	}
	delete(ix.byID, id)
	for i, ordered := range ix.order {
		if ordered == id {
			ix.order = append(ix.order[:i], ix.order[i+1:]...)
			break
		}
	}
}

func (ix *index[T]) clear() {
	ix.byID = make(map[string]T)
	ix.order = nil
}
