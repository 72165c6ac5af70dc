package convention

import (
	"log/slog"
	"slices"

	"github.com/syssam/denorm"
	"github.com/syssam/denorm/collection"
	"github.com/syssam/denorm/internal/shape"
	"github.com/syssam/denorm/view"
)

// Populate resolves object against collections using the strategy selected
// in opts (Lazy by default).
//
// object may be an entity, a list of entities, or anything else; values that
// are neither objects nor lists are returned unchanged. A negative depth is
// treated as zero, which performs no resolution.
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
// Objects become *view.Object and lists become []any of populated elements.
func PopulateLazy(depth int, collections denorm.Graph, object any, opts ...denorm.Option) (any, error) {
	cfg, err := denorm.NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return run(depth, collections, object, cfg, true)
}

// PopulateEager returns an independent deep copy of object with every
// reference within depth already resolved.
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
	r := &resolver{
		set:    set,
		names:  NamesOf(g),
		plural: cfg.Pluralizer,
		lazy:   lazy,
		log:    cfg.Logger,
		stats:  cfg.Stats,
	}
	return r.populate(max(depth, 0), object), nil
}

// resolver implements both evaluators. Lazy output wraps objects in views
// that call back into Field; eager output walks everything immediately.
type resolver struct {
	set    *collection.Set
	names  Names
	plural denorm.Pluralizer
	lazy   bool
	log    *slog.Logger
	stats  *denorm.Stats
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
		return r.keep(v)
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

// keep returns an unresolved value: shared in lazy mode, copied in eager mode.
func (r *resolver) keep(v any) any {
	if r.lazy {
		return v
	}
	return shape.Copy(v)
}

// Field implements view.Resolver.
func (r *resolver) Field(depth int, key string, v any) any {
	kind, target := Classify(key, v, r.names, r.plural)
	switch kind {
	case PluralArray:
		ids, _ := shape.Sequence(v)
		found, missing := r.set.Many(target, ids)
		r.dropped(key, target, missing)
		out := make([]any, len(found))
		for i, e := range found {
			out[i] = r.populate(depth-1, e)
		}
		return out
	case PluralMap:
		return r.pluralMap(depth, key, target, v)
	case Singular:
		e, ok := r.set.Get(target, v)
		if !ok {
			r.log.Debug("unresolved reference", "field", key, "collection", target, "id", v)
			return nil
		}
		return r.populate(depth-1, e)
	case Nested:
		return r.populate(depth, v)
	default:
		return r.keep(v)
	}
}

// pluralMap resolves the keys of an id-keyed object and re-keys the result
// by each entity's own id. An entity without a usable id keeps the key it
// was found under.
func (r *resolver) pluralMap(depth int, key, target string, v any) map[string]any {
	m, _ := shape.Object(v)
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make(map[string]any, len(ids))
	var missing []any
	for _, id := range ids {
		e, ok := r.set.Get(target, id)
		if !ok {
			missing = append(missing, id)
			continue
		}
		rekey, ok := shape.IDString(e["id"])
		if !ok {
			rekey = id
		}
		out[rekey] = r.populate(depth-1, e)
	}
	r.dropped(key, target, missing)
	return out
}

func (r *resolver) dropped(key, target string, missing []any) {
	if len(missing) == 0 {
		return
	}
	r.stats.RecordDropped(len(missing))
	r.log.Debug("dropped unresolved references", "field", key, "collection", target, "ids", missing)
}
