package view

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// upperResolver marks string fields and wraps nested objects in views.
type upperResolver struct {
	calls int
}

func (r *upperResolver) Field(depth int, key string, value any) any {
	r.calls++
	switch v := value.(type) {
	case string:
		return v + "!"
	case map[string]any:
		return New(v, depth-1, r, nil)
	}
	return value
}

type counter struct{ n int }

func (c *counter) RecordAccess() { c.n++ }

func TestObjectGet(t *testing.T) {
	t.Parallel()

	t.Run("resolves on every access", func(t *testing.T) {
		t.Parallel()
		r := &upperResolver{}
		c := &counter{}
		o := New(map[string]any{"name": "john"}, 1, r, c)

		v, ok := o.Get("name")
		require.True(t, ok)
		assert.Equal(t, "john!", v)

		_, _ = o.Get("name")
		assert.Equal(t, 2, r.calls)
		assert.Equal(t, 2, c.n)
	})

	t.Run("missing field", func(t *testing.T) {
		t.Parallel()
		r := &upperResolver{}
		o := New(map[string]any{"name": "john"}, 1, r, nil)

		v, ok := o.Get("age")
		assert.False(t, ok)
		assert.Nil(t, v)
		assert.Nil(t, o.Value("age"))
		assert.False(t, o.Has("age"))
		assert.Zero(t, r.calls)
	})

	t.Run("depth zero returns raw values", func(t *testing.T) {
		t.Parallel()
		r := &upperResolver{}
		o := New(map[string]any{"name": "john"}, 0, r, nil)

		assert.Equal(t, "john", o.Value("name"))
		assert.Zero(t, r.calls)
	})

	t.Run("time values bypass the resolver", func(t *testing.T) {
		t.Parallel()
		r := &upperResolver{}
		now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		o := New(map[string]any{"at": now}, 3, r, nil)

		assert.Equal(t, now, o.Value("at"))
		assert.Zero(t, r.calls)
	})

	t.Run("nil field is present", func(t *testing.T) {
		t.Parallel()
		o := New(map[string]any{"person": nil}, 1, &upperResolver{}, nil)
		v, ok := o.Get("person")
		assert.True(t, ok)
		assert.Nil(t, v)
	})
}

func TestObjectMetadata(t *testing.T) {
	t.Parallel()

	src := map[string]any{"b": 1, "a": 2, "c": 3}
	o := New(src, 2, &upperResolver{}, nil)

	assert.Equal(t, []string{"a", "b", "c"}, o.Keys())
	assert.Equal(t, 3, o.Len())
	assert.Equal(t, 2, o.Depth())
	assert.Equal(t, src, o.Raw())
	assert.True(t, o.Has("a"))
}

func TestMaterialize(t *testing.T) {
	t.Parallel()

	src := map[string]any{
		"name":  "john",
		"tags":  []any{"a", "b"},
		"child": map[string]any{"name": "jim", "meta": map[string]any{"n": 1}},
	}
	o := New(src, 2, &upperResolver{}, nil)

	got := Materialize(o)
	assert.Equal(t, map[string]any{
		"name": "john!",
		"tags": []any{"a", "b"},
		"child": map[string]any{
			"name": "jim!",
			"meta": map[string]any{"n": 1},
		},
	}, got)

	// The result shares nothing with the source.
	got.(map[string]any)["tags"].([]any)[0] = "z"
	assert.Equal(t, "a", src["tags"].([]any)[0])

	assert.Nil(t, Materialize((*Object)(nil)))
	assert.Nil(t, Materialize(nil))
	assert.Equal(t, 42, Materialize(42))
	assert.Equal(t, []any{map[string]any{"v": "x!"}}, Materialize([]any{New(map[string]any{"v": "x"}, 1, &upperResolver{}, nil)}))
}

func TestMarshal(t *testing.T) {
	t.Parallel()

	o := New(map[string]any{"name": "john", "n": 1}, 1, &upperResolver{}, nil)

	data, err := json.Marshal(o)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"john!","n":1}`, string(data))

	out, err := yaml.Marshal(o)
	require.NoError(t, err)
	var back map[string]any
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, map[string]any{"name": "john!", "n": 1}, back)
}
