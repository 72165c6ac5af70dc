package denorm

import (
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/denorm/internal/shape"
)

// Entity is one record of a collection. By convention it carries an "id"
// and a "type" field, but no shape is enforced.
type Entity = map[string]any

// Graph maps collection names to collections. A collection is either a
// sequence of entities ([]any or []map[string]any) or a map of entities
// keyed by id. A Graph is never modified by this module.
type Graph map[string]any

// Names returns the collection names in sorted order.
func (g Graph) Names() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Has reports whether name is a collection of g.
func (g Graph) Has(name string) bool {
	_, ok := g[name]
	return ok
}

// Validate checks that every collection is a sequence or an id-keyed map
// whose elements are entities (or nil). All malformed collections are
// reported, each as an InvalidCollectionShapeError.
func (g Graph) Validate() error {
	var errs []error
	for _, name := range g.Names() {
		if err := ValidateCollection(name, g[name]); err != nil {
			errs = append(errs, err)
		}
	}
	return NewAggregateError(errs...)
}

// ValidateCollection checks the shape of a single collection value.
func ValidateCollection(name string, coll any) error {
	switch shape.CollectionKind(coll) {
	case shape.Empty:
		return nil
	case shape.Seq:
		items, _ := shape.Sequence(coll)
		for i, item := range items {
			if item == nil {
				continue
			}
			if _, ok := shape.Object(item); !ok {
				return NewInvalidCollectionShapeError(name, coll,
					fmt.Sprintf("element %d is %T, want an entity", i, item))
			}
		}
		return nil
	case shape.Keyed:
		m, ok := coll.(map[string]any)
		if !ok {
			// map[string]map[string]any holds entities by construction.
			return nil
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if m[k] == nil {
				continue
			}
			if _, ok := shape.Object(m[k]); !ok {
				return NewInvalidCollectionShapeError(name, coll,
					fmt.Sprintf("key %q holds %T, want an entity", k, m[k]))
			}
		}
		return nil
	default:
		return NewInvalidCollectionShapeError(name, coll, "want a sequence of entities or a map keyed by id")
	}
}

// Pluralizer maps a singular field name to the plural collection name it
// refers to. It must be deterministic and free of side effects.
type Pluralizer func(word string) string

// Strategy selects how a populated view is evaluated.
type Strategy int

const (
	// Lazy wraps entities in views that resolve fields when they are read.
	Lazy Strategy = iota
	// Eager builds an independent deep copy with every reference resolved.
	Eager
)

// String returns the name of the strategy.
func (s Strategy) String() string {
	switch s {
	case Lazy:
		return "lazy"
	case Eager:
		return "eager"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy parses "lazy" or "eager" (case insensitive).
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lazy", "":
		return Lazy, nil
	case "eager":
		return Eager, nil
	default:
		return Lazy, NewConfigError("Strategy", s, "unsupported strategy; use lazy or eager")
	}
}
