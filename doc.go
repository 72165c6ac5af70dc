// Package denorm resolves a normalized entity graph into a denormalized view.
//
// A Graph is a set of named collections whose entities reference each other
// by id. Populating an entity replaces those references, down to a bounded
// depth, with the entities they point to. The source Graph is never modified.
//
// # Resolvers
//
// Two packages interpret references differently:
//
//   - convention: a field whose name is a collection name ("stories") holds
//     a list or map of ids; a field whose plural is a collection name
//     ("person" -> "people") holds a single id.
//   - reference: any object of the form {"$ref": "stories", "id": "story-1"}
//     is a pointer, whatever field holds it.
//
// Both expose Populate, PopulateLazy and PopulateEager:
//
//	out, err := convention.Populate(2, graph, person)
//	out, err := reference.PopulateEager(2, graph, person)
//
// # Depth
//
// Every reference hop consumes one unit of depth; walking into plain nested
// objects and sequences does not. References beyond the budget are left as
// they are in the source, so populating a cyclic graph always terminates.
//
// # Strategies
//
// The Lazy strategy returns *view.Object values that resolve a field each
// time it is read. The Eager strategy returns plain map[string]any and []any
// values that share nothing with the source. view.Materialize turns a lazy
// result into the eager representation; both strategies produce equal output.
//
//	out, err := convention.Populate(3, graph, person, denorm.WithStrategy(denorm.Eager))
//
// # Collections
//
// A collection is either a sequence of entities, scanned by their "id" field,
// or a map keyed by id. Any other value is rejected with an
// InvalidCollectionShapeError before population starts:
//
//	if err := graph.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package denorm
