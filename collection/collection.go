package collection

import (
	"sync"

	"github.com/syssam/denorm"
	"github.com/syssam/denorm/internal/shape"
)

// Lookup returns the entity with the given id.
// It scans a sequence for the first entity whose "id" equals id, or reads
// the key of a keyed map. A miss yields a *denorm.NotFoundError and a value
// that is not a collection yields a *denorm.InvalidCollectionShapeError.
func Lookup(coll, id any) (denorm.Entity, error) {
	switch shape.CollectionKind(coll) {
	case shape.Empty:
		return nil, denorm.NewNotFoundError("", id)
	case shape.Seq:
		want, ok := shape.IDKey(id)
		if !ok {
			return nil, denorm.NewNotFoundError("", id)
		}
		items, _ := shape.Sequence(coll)
		for _, item := range items {
			e, ok := shape.Object(item)
			if !ok {
				continue
			}
			if got, ok := shape.IDKey(e["id"]); ok && got == want {
				return e, nil
			}
		}
		return nil, denorm.NewNotFoundError("", id)
	case shape.Keyed:
		if e, ok := keyedGet(coll, id); ok {
			return e, nil
		}
		return nil, denorm.NewNotFoundError("", id)
	default:
		return nil, denorm.NewInvalidCollectionShapeError("", coll, "want a sequence of entities or a map keyed by id")
	}
}

func keyedGet(coll, id any) (denorm.Entity, bool) {
	key, ok := shape.IDString(id)
	if !ok {
		return nil, false
	}
	switch m := coll.(type) {
	case map[string]any:
		return shape.Object(m[key])
	case map[string]map[string]any:
		e := m[key]
		return e, e != nil
	}
	return nil, false
}

// Index is a precomputed id table over one collection.
// It is read-only after construction.
type Index struct {
	name  string
	coll  any
	kind  shape.Kind
	byKey map[any]denorm.Entity
}

// NewIndex validates coll and builds its index.
func NewIndex(name string, coll any) (*Index, error) {
	if err := denorm.ValidateCollection(name, coll); err != nil {
		return nil, err
	}
	idx := &Index{name: name, coll: coll, kind: shape.CollectionKind(coll)}
	if idx.kind == shape.Seq {
		items, _ := shape.Sequence(coll)
		idx.byKey = make(map[any]denorm.Entity, len(items))
		for _, item := range items {
			e, ok := shape.Object(item)
			if !ok {
				continue
			}
			k, ok := shape.IDKey(e["id"])
			if !ok {
				continue
			}
			if _, dup := idx.byKey[k]; !dup {
				idx.byKey[k] = e
			}
		}
	}
	return idx, nil
}

// Name returns the collection name.
func (idx *Index) Name() string {
	return idx.name
}

// Kind returns the storage shape of the indexed collection.
func (idx *Index) Kind() shape.Kind {
	return idx.kind
}

// Len returns the number of addressable entities.
func (idx *Index) Len() int {
	switch idx.kind {
	case shape.Seq:
		return len(idx.byKey)
	case shape.Keyed:
		switch m := idx.coll.(type) {
		case map[string]any:
			return len(m)
		case map[string]map[string]any:
			return len(m)
		}
	}
	return 0
}

// Get returns the entity with the given id.
func (idx *Index) Get(id any) (denorm.Entity, bool) {
	switch idx.kind {
	case shape.Seq:
		k, ok := shape.IDKey(id)
		if !ok {
			return nil, false
		}
		e, ok := idx.byKey[k]
		return e, ok
	case shape.Keyed:
		return keyedGet(idx.coll, id)
	}
	return nil, false
}

// Set holds the indexes of a graph, building each on first use.
// It is safe for concurrent use.
type Set struct {
	graph denorm.Graph
	stats *denorm.Stats

	mu      sync.Mutex
	indexes map[string]*Index
}

// NewSet validates every collection of g and returns an empty Set over it.
// A malformed collection fails NewSet even if no lookup would ever reach it;
// Set.Get and Set.Many have no error path, so lazy views created later
// cannot report one.
func NewSet(g denorm.Graph, stats *denorm.Stats) (*Set, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &Set{graph: g, stats: stats, indexes: make(map[string]*Index)}, nil
}

// Graph returns the underlying graph.
func (s *Set) Graph() denorm.Graph {
	return s.graph
}

// Has reports whether name is a collection of the graph.
func (s *Set) Has(name string) bool {
	return s.graph.Has(name)
}

// Index returns the index of the named collection, or nil when the graph
// has no such collection.
func (s *Set) Index(name string) *Index {
	coll, ok := s.graph[name]
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.indexes[name]; ok {
		return idx
	}
	idx, err := NewIndex(name, coll)
	if err != nil {
		// Unreachable: the graph was validated by NewSet.
		return nil
	}
	s.indexes[name] = idx
	return idx
}

// Get returns the entity with the given id in the named collection.
// Unknown collections never match.
func (s *Set) Get(name string, id any) (denorm.Entity, bool) {
	var (
		e     denorm.Entity
		found bool
	)
	if idx := s.Index(name); idx != nil {
		e, found = idx.Get(id)
	}
	s.stats.RecordLookup(found)
	return e, found
}

// Many resolves ids against the named collection.
func (s *Set) Many(name string, ids []any) ([]denorm.Entity, []any) {
	idx := s.Index(name)
	if idx == nil {
		for range ids {
			s.stats.RecordLookup(false)
		}
		return []denorm.Entity{}, ids
	}
	found, missing := idx.Many(ids)
	for range found {
		s.stats.RecordLookup(true)
	}
	for range missing {
		s.stats.RecordLookup(false)
	}
	return found, missing
}
