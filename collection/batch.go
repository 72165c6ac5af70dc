package collection

import (
	"slices"

	"github.com/syssam/denorm"
	"github.com/syssam/denorm/internal/shape"
)

// KeyFunc extracts a key from an entity.
type KeyFunc[K comparable] func(denorm.Entity) (K, bool)

// Many resolves ids in order. Found entities keep the order of their ids;
// ids without an entity are returned separately, also in order.
//
// This is the resolution rule for plural references: the caller keeps the
// found entities and drops the rest.
func (idx *Index) Many(ids []any) (found []denorm.Entity, missing []any) {
	found = make([]denorm.Entity, 0, len(ids))
	for _, id := range ids {
		if e, ok := idx.Get(id); ok {
			found = append(found, e)
			continue
		}
		missing = append(missing, id)
	}
	return found, missing
}

// GroupBy groups entities by keyFn, preserving their order within a group.
// Entities without a key are skipped.
func GroupBy[K comparable](entities []denorm.Entity, keyFn KeyFunc[K]) map[K][]denorm.Entity {
	out := make(map[K][]denorm.Entity)
	for _, e := range entities {
		if k, ok := keyFn(e); ok {
			out[k] = append(out[k], e)
		}
	}
	return out
}

// Duplicates returns, in sorted order, the ids carried by more than one
// entity of a sequence collection. Lookups on such ids see the first entity
// only. Keyed collections cannot hold duplicates.
func Duplicates(coll any) []string {
	items, ok := shape.Sequence(coll)
	if !ok {
		return nil
	}
	entities := make([]denorm.Entity, 0, len(items))
	for _, item := range items {
		if e, ok := shape.Object(item); ok {
			entities = append(entities, e)
		}
	}
	groups := GroupBy(entities, func(e denorm.Entity) (string, bool) {
		return shape.IDString(e["id"])
	})
	var dups []string
	for id, group := range groups {
		if len(group) > 1 {
			dups = append(dups, id)
		}
	}
	slices.Sort(dups)
	return dups
}
