// Package shape classifies the dynamic values that make up an entity graph.
//
// Graph data arrives as the generic values produced by decoders such as
// encoding/json, gopkg.in/yaml.v3 or msgpack: objects are map[string]any,
// sequences are []any, everything else is a scalar. The helpers here are the
// single place where those shapes are recognized.
package shape

import (
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/mohae/deepcopy"
)

// Timelike is implemented by values exposing a point in time.
// Such values are treated as scalars and never traversed.
type Timelike interface {
	Time() time.Time
}

// Object reports whether v is an object and returns it.
func Object(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	if !ok || m == nil {
		return nil, false
	}
	return m, true
}

// Sequence reports whether v is a sequence and returns it as []any.
// A []map[string]any is converted element-wise.
func Sequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		if s == nil {
			return nil, false
		}
		return s, true
	case []map[string]any:
		if s == nil {
			return nil, false
		}
		out := make([]any, len(s))
		for i, m := range s {
			out[i] = m
		}
		return out, true
	}
	return nil, false
}

// Structured reports whether v is an object or a sequence.
func Structured(v any) bool {
	if _, ok := Object(v); ok {
		return true
	}
	_, ok := Sequence(v)
	return ok
}

// IsTimelike reports whether v is a date-like value.
func IsTimelike(v any) bool {
	switch t := v.(type) {
	case time.Time:
		return true
	case *time.Time:
		return t != nil
	case Timelike:
		return true
	}
	return false
}

// Copy returns a deep copy of v. Objects and sequences are rebuilt, other
// maps and slices are copied with deepcopy, and everything else (time-like
// values and pointers included) is returned as is.
func Copy(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		if t == nil {
			return t
		}
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = Copy(item)
		}
		return out
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Copy(item)
		}
		return out
	case []map[string]any:
		if t == nil {
			return t
		}
		out := make([]map[string]any, len(t))
		for i, item := range t {
			out[i], _ = Copy(item).(map[string]any)
		}
		return out
	}
	if IsTimelike(v) {
		return v
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice:
		return deepcopy.Copy(v)
	}
	return v
}

// IDKey returns the comparable form of an id used for equality checks.
// Strings and booleans are kept as-is. Numbers compare by exact value:
// integers become int64 (uint64 above math.MaxInt64) and a float64 joins
// them only when it holds an integer it represents exactly, so 1, int64(1)
// and 1.0 are the same id while 1<<53 and 1<<53+1 stay distinct. NaN,
// infinities and any other value have no key.
func IDKey(v any) (any, bool) {
	switch id := v.(type) {
	case string, bool:
		return id, true
	case int:
		return int64(id), true
	case int8:
		return int64(id), true
	case int16:
		return int64(id), true
	case int32:
		return int64(id), true
	case int64:
		return id, true
	case uint:
		return uintKey(uint64(id)), true
	case uint8:
		return int64(id), true
	case uint16:
		return int64(id), true
	case uint32:
		return int64(id), true
	case uint64:
		return uintKey(id), true
	case float32:
		return floatKey(float64(id))
	case float64:
		return floatKey(id)
	}
	return nil, false
}

func uintKey(u uint64) any {
	if u <= math.MaxInt64 {
		return int64(u)
	}
	return u
}

const (
	two63 = 1 << 63
	two64 = 1 << 64
)

func floatKey(f float64) (any, bool) {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return nil, false
	case f != math.Trunc(f):
		return f, true
	case f >= -two63 && f < two63:
		return int64(f), true
	case f >= two63 && f < two64:
		return uint64(f), true
	}
	return f, true
}

// IDString returns the canonical string form of an id, used as a map key.
func IDString(v any) (string, bool) {
	k, ok := IDKey(v)
	if !ok {
		return "", false
	}
	switch id := k.(type) {
	case string:
		return id, true
	case bool:
		return strconv.FormatBool(id), true
	case int64:
		return strconv.FormatInt(id, 10), true
	case uint64:
		return strconv.FormatUint(id, 10), true
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), true
	}
	return "", false
}

// Kind is the storage shape of a collection.
type Kind int

const (
	// Invalid is any value that is neither a sequence nor a keyed map.
	Invalid Kind = iota
	// Empty is a nil collection; lookups never match.
	Empty
	// Seq is an ordered sequence of entities.
	Seq
	// Keyed is a map from id to entity.
	Keyed
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Seq:
		return "sequence"
	case Keyed:
		return "keyed"
	default:
		return "invalid"
	}
}

// CollectionKind returns the storage shape of a collection value.
// It only inspects the container, not the elements.
func CollectionKind(v any) Kind {
	if v == nil {
		return Empty
	}
	if _, ok := Sequence(v); ok {
		return Seq
	}
	switch m := v.(type) {
	case map[string]any:
		if m == nil {
			return Empty
		}
		return Keyed
	case map[string]map[string]any:
		if m == nil {
			return Empty
		}
		return Keyed
	case []any, []map[string]any:
		return Empty
	}
	return Invalid
}
