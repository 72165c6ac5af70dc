// Package view implements lazily populated entities.
//
// An Object wraps a source entity together with the depth budget left at
// that point and the Resolver that knows how to interpret its fields. Nothing
// is resolved when the Object is created: every call to Get classifies and
// resolves the requested field again, so the cost of population is paid only
// for the fields that are actually read.
//
// Objects keep a reference to the source entity and, through the Resolver,
// to the graph. The graph must therefore stay unchanged while views over it
// are in use.
//
// Materialize converts a lazy result into plain map[string]any and []any
// values, which is also what the eager evaluators produce.
package view

import (
	"encoding/json"
	"slices"

	"github.com/syssam/denorm/internal/shape"
)

// Resolver resolves the value of a single field.
//
// Field is called only with depth > 0 and with values that are not
// time-like. It returns the populated value, which may itself contain
// Objects.
type Resolver interface {
	Field(depth int, key string, value any) any
}

// Accessor is notified of every field read. denorm.Stats implements it.
type Accessor interface {
	RecordAccess()
}

// Object is a lazily populated entity.
type Object struct {
	src      map[string]any
	depth    int
	resolver Resolver
	accessor Accessor
}

// New returns a view over src. A nil accessor is allowed.
func New(src map[string]any, depth int, r Resolver, a Accessor) *Object {
	return &Object{src: src, depth: depth, resolver: r, accessor: a}
}

// Get returns the populated value of a field and whether the field exists.
// The value is recomputed on every call.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.src[key]
	if !ok {
		return nil, false
	}
	if o.accessor != nil {
		o.accessor.RecordAccess()
	}
	if o.depth <= 0 || shape.IsTimelike(v) {
		return v, true
	}
	return o.resolver.Field(o.depth, key, v), true
}

// Value is like Get but returns nil for a missing field.
func (o *Object) Value(key string) any {
	v, _ := o.Get(key)
	return v
}

// Has reports whether the source entity has the field.
func (o *Object) Has(key string) bool {
	_, ok := o.src[key]
	return ok
}

// Keys returns the field names in sorted order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, len(o.src))
	for k := range o.src {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of fields.
func (o *Object) Len() int {
	return len(o.src)
}

// Raw returns the unresolved source entity. It must not be modified.
func (o *Object) Raw() map[string]any {
	return o.src
}

// Depth returns the depth budget left at this object.
func (o *Object) Depth() int {
	return o.depth
}

// Materialize returns o with every field read and materialized.
func (o *Object) Materialize() map[string]any {
	out := make(map[string]any, len(o.src))
	for k := range o.src {
		v, _ := o.Get(k)
		out[k] = Materialize(v)
	}
	return out
}

// MarshalJSON encodes the materialized object.
func (o *Object) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Materialize())
}

// MarshalYAML returns the materialized object for gopkg.in/yaml.v3.
func (o *Object) MarshalYAML() (any, error) {
	return o.Materialize(), nil
}

// Materialize converts a populated value into plain values: every Object
// becomes a map[string]any with all its fields read, sequences and maps are
// rebuilt, and the remaining unresolved source values are deep copied. The
// result shares no storage with the source graph.
func Materialize(v any) any {
	switch t := v.(type) {
	case *Object:
		if t == nil {
			return nil
		}
		return t.Materialize()
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Materialize(item)
		}
		return out
	case map[string]any:
		if t == nil {
			return t
		}
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = Materialize(item)
		}
		return out
	}
	return shape.Copy(v)
}
