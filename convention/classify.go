package convention

import (
	"github.com/syssam/denorm"
	"github.com/syssam/denorm/internal/shape"
)

// Kind is the classification of a field.
type Kind int

const (
	// Scalar is kept unchanged.
	Scalar Kind = iota
	// PluralArray is a list of ids under a collection-named field.
	PluralArray
	// PluralMap is an object keyed by ids under a collection-named field.
	PluralMap
	// Singular is a single id under a field whose plural is a collection name.
	Singular
	// Nested is a plain object or list, walked at the same depth.
	Nested
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case PluralArray:
		return "plural-array"
	case PluralMap:
		return "plural-map"
	case Singular:
		return "singular"
	case Nested:
		return "nested"
	default:
		return "unknown"
	}
}

// IsReference reports whether the kind resolves ids.
func (k Kind) IsReference() bool {
	return k == PluralArray || k == PluralMap || k == Singular
}

// Names is a set of collection names.
type Names map[string]struct{}

// NamesOf returns the collection names of g.
func NamesOf(g denorm.Graph) Names {
	names := make(Names, len(g))
	for name := range g {
		names[name] = struct{}{}
	}
	return names
}

// Has reports whether name is in the set.
func (n Names) Has(name string) bool {
	_, ok := n[name]
	return ok
}

// Classify maps a field name and its value to a Kind. For reference kinds it
// also returns the collection the ids belong to.
//
// The first matching rule wins:
//
//  1. a list under a collection name is PluralArray;
//  2. an object under a collection name is PluralMap;
//  3. any value under a name whose plural is a collection name is Singular;
//  4. any other object or list is Nested;
//  5. everything else, time values included, is Scalar.
//
// Classify does not look at depth; callers stop resolving when the budget is
// spent.
func Classify(key string, v any, names Names, plural denorm.Pluralizer) (Kind, string) {
	if shape.IsTimelike(v) {
		return Scalar, ""
	}
	if names.Has(key) {
		if _, ok := shape.Sequence(v); ok {
			return PluralArray, key
		}
		if _, ok := shape.Object(v); ok {
			return PluralMap, key
		}
	}
	if plural != nil {
		if p := plural(key); names.Has(p) {
			return Singular, p
		}
	}
	if shape.Structured(v) {
		return Nested, ""
	}
	return Scalar, ""
}
