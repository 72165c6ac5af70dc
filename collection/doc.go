// Package collection provides uniform id lookups over the two collection
// representations of a denorm.Graph.
//
// A collection is either an ordered sequence of entities, each carrying an
// "id" field, or a map whose keys are the ids:
//
//	people := []any{
//	    map[string]any{"id": "person-1", "name": "John"},
//	}
//	stories := map[string]any{
//	    "story-1": map[string]any{"id": "story-1"},
//	}
//
// Lookup answers a single query directly. Index precomputes an id table so
// repeated lookups are O(1); for sequences the first entity carrying an id
// wins. Set holds the indexes of a whole graph and builds each one on first
// use.
package collection
