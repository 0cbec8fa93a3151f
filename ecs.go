// Package whalecs implements an Entity-Component-System runtime with dense
// per-type component storage, bitset signature matching, and automatic
// system membership bookkeeping.
//
// Features:
// - O(1) component add/remove backed by swap-removal dense arrays.
// - Required/excluded component and tag signatures per system.
// - Trait-based matching through per-type descriptor entities.
// - Parent/child hierarchy with recursive, deferred destruction.
// - Frame-stepped update groups with intervals and pause semantics.
package whalecs

// EntityID is the raw numeric identifier of an entity. ID 0 is reserved as
// the invalid sentinel, which doubles as the implicit root of the hierarchy.
type EntityID uint32

// ComponentType is the small integer id assigned to a component or tag type
// the first time it is seen. Components and tags draw ids from separate
// namespaces.
type ComponentType uint16

// Entity is an opaque handle to an object in a World. Entities own no state
// themselves; everything lives in the World's stores, keyed by id. Ids are
// recycled after destruction, so a handle must not be retained across a
// destroy/recreate boundary and treated as meaningful identity.
type Entity struct {
	ID EntityID
}

// IsValid reports whether the entity is a real allocation rather than the
// reserved sentinel returned when creation fails.
func (e Entity) IsValid() bool {
	return e.ID != 0
}
