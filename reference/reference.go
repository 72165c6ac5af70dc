package reference

import (
	"log/slog"

	"github.com/syssam/denorm"
	"github.com/syssam/denorm/collection"
	"github.com/syssam/denorm/internal/shape"
	"github.com/syssam/denorm/view"
)

const (
	// RefKey is the marker key naming the target collection.
	RefKey = "$ref"
	// IDKey is the marker key holding the target id.
	IDKey = "id"
)

// Marker reports whether v is a reference marker and returns its parts.
// A marker whose "$ref" is not a string has an empty collection name and
// never resolves.
func Marker(v any) (coll string, id any, ok bool) {
	obj, isObj := shape.Object(v)
	if !isObj {
		return "", nil, false
	}
	ref, hasRef := obj[RefKey]
	id, hasID := obj[IDKey]
	if !hasRef || !hasID {
		return "", nil, false
	}
	coll, _ = ref.(string)
	return coll, id, true
}

// Populate resolves object against collections using the strategy selected
// in opts (Lazy by default).
//
// object may be an entity, a list of entities, a marker, or anything else;
// values that are neither objects nor lists are returned unchanged. A
// negative depth is treated as zero, which performs no resolution.
//
// Every collection of the graph is validated before anything is resolved,
// whatever the depth and whether or not object refers to it. A malformed
// collection yields a denorm.InvalidCollectionShapeError.
func Populate(depth int, collections denorm.Graph, object any, opts ...denorm.Option) (any, error) {
	cfg, err := denorm.NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return run(depth, collections, object, cfg, cfg.Strategy == denorm.Lazy)
}

// PopulateLazy returns views that resolve each field when it is read.
func PopulateLazy(depth int, collections denorm.Graph, object any, opts ...denorm.Option) (any, error) {
	cfg, err := denorm.NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return run(depth, collections, object, cfg, true)
}

// PopulateEager returns an independent deep copy of object with every
// marker within depth already resolved.
func PopulateEager(depth int, collections denorm.Graph, object any, opts ...denorm.Option) (any, error) {
	cfg, err := denorm.NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return run(depth, collections, object, cfg, false)
}

func run(depth int, g denorm.Graph, object any, cfg *denorm.Config, lazy bool) (any, error) {
	if !shape.Structured(object) {
		return object, nil
	}
	set, err := collection.NewSet(g, cfg.Stats)
	if err != nil {
		return nil, err
	}
	r := &resolver{set: set, lazy: lazy, log: cfg.Logger, stats: cfg.Stats}
	return r.populate(max(depth, 0), object), nil
}

type resolver struct {
	set   *collection.Set
	lazy  bool
	log   *slog.Logger
	stats *denorm.Stats
}

func (r *resolver) populate(depth int, v any) any {
	if items, ok := shape.Sequence(v); ok {
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = r.populate(depth, item)
		}
		return out
	}
	obj, ok := shape.Object(v)
	if !ok {
		if r.lazy {
			return v
		}
		return shape.Copy(v)
	}
	if depth > 0 {
		if coll, id, ok := Marker(obj); ok {
			return r.resolve(depth, coll, id)
		}
	}
	if r.lazy {
		return view.New(obj, depth, r, r.stats)
	}
	if depth <= 0 {
		return shape.Copy(obj)
	}
	out := make(map[string]any, len(obj))
	for k, fv := range obj {
		out[k] = r.Field(depth, k, fv)
	}
	return out
}

func (r *resolver) resolve(depth int, coll string, id any) any {
	if coll == "" {
		r.stats.RecordLookup(false)
		r.log.Debug("unresolved reference", "collection", coll, "id", id)
		return nil
	}
	e, ok := r.set.Get(coll, id)
	if !ok {
		r.log.Debug("unresolved reference", "collection", coll, "id", id)
		return nil
	}
	return r.populate(depth-1, e)
}

// Field implements view.Resolver. The field name plays no part.
func (r *resolver) Field(depth int, _ string, v any) any {
	return r.populate(depth, v)
}
