// Package reference populates entities whose references are explicit
// markers.
//
// A marker is any object carrying both a "$ref" key, naming a collection,
// and an "id" key:
//
//	{"$ref": "stories", "id": "story-1"}
//
// Markers are found anywhere in a value, in fields and in list elements
// alike, and the name of the field holding them plays no part. A marker
// whose entity does not exist populates to nil.
//
// Example:
//
//	graph := denorm.Graph{"stories": stories, "people": people}
//	out, err := reference.Populate(2, graph, people[0])
package reference
