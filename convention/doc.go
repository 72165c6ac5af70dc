// Package convention populates entities whose references are implied by
// field names.
//
// Given a graph with the collections "stories" and "people":
//
//   - a field named "stories" holding a list of ids is a plural reference and
//     becomes the list of matching stories; ids without a story are dropped;
//   - a field named "stories" holding an object uses the object's keys as ids
//     and becomes a map of stories keyed by each story's own id;
//   - a field named "person", whose plural is "people", holds a single id and
//     becomes that person, or nil when no person has that id;
//   - any other object or list is walked with the same rules, without using
//     depth;
//   - everything else is kept as is.
//
// The rules are tried in that order; see Classify.
//
// Example:
//
//	graph := denorm.Graph{"stories": stories, "people": people}
//	out, err := convention.PopulateEager(2, graph, people[0])
//
// Pluralization defaults to github.com/go-openapi/inflect and can be replaced
// with denorm.WithPluralizer.
package convention
