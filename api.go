package whalecs

import (
	"reflect"

	"go.uber.org/zap"
)

// RegisterComponent assigns a stable id to component type T, creating its
// backing store and descriptor entity the first time it is seen. It is called
// implicitly by Add, so explicit registration is only needed to control id
// order or to reach the descriptor before any entity owns a T.
func RegisterComponent[T any](w *World) ComponentType {
	t := reflect.TypeOf((*T)(nil)).Elem()
	cm := w.components
	if id, ok := cm.compIDs[t]; ok {
		return id
	}
	if len(cm.arrays) >= cm.maxComponents {
		panic("ecs: too many component types")
	}
	id := ComponentType(len(cm.arrays))
	cm.compIDs[t] = id
	cm.arrays = append(cm.arrays, newStorage[T]())
	cm.compDescriptors = append(cm.compDescriptors, descriptor{
		typ:    t,
		name:   t.Name(),
		entity: w.newDescriptorEntity(t.Name()),
		id:     id,
	})
	w.logger.Debug("registered component type",
		zap.String("type", t.String()), zap.Uint16("id", uint16(id)))
	return id
}

// RegisterTag assigns a stable id to tag type T. Tags are zero-size markers:
// they set pattern bits and get a descriptor entity, but no value store.
func RegisterTag[T any](w *World) ComponentType {
	t := reflect.TypeOf((*T)(nil)).Elem()
	cm := w.components
	if id, ok := cm.tagIDs[t]; ok {
		return id
	}
	if len(cm.tagDescriptors) >= cm.maxComponents {
		panic("ecs: too many tag types")
	}
	id := ComponentType(len(cm.tagDescriptors))
	cm.tagIDs[t] = id
	cm.tagDescriptors = append(cm.tagDescriptors, descriptor{
		typ:    t,
		name:   t.Name(),
		entity: w.newDescriptorEntity(t.Name()),
		id:     id,
		isTag:  true,
	})
	w.logger.Debug("registered tag type",
		zap.String("type", t.String()), zap.Uint16("id", uint16(id)))
	return id
}

// ComponentID returns the id of component type T, registering it if needed.
func ComponentID[T any](w *World) ComponentType {
	return RegisterComponent[T](w)
}

// TagID returns the id of tag type T, registering it if needed.
func TagID[T any](w *World) ComponentType {
	return RegisterTag[T](w)
}

// ComponentEntity returns the descriptor entity backing component type T.
// Components added to it describe the type itself; adding a trait marker here
// makes every owner of T implement that trait.
func ComponentEntity[T any](w *World) Entity {
	return w.components.compDescriptors[RegisterComponent[T](w)].entity
}

// TagEntity returns the descriptor entity backing tag type T.
func TagEntity[T any](w *World) Entity {
	return w.components.tagDescriptors[RegisterTag[T](w)].entity
}

func componentStore[T any](w *World, id ComponentType) *storage[T] {
	return w.components.arrays[id].(*storage[T])
}

// Add inserts (or overwrites) the entity's T value, sets the matching pattern
// bit, and then re-evaluates system membership, in that order: a monitor's
// OnAdd callback can already read the new value.
func Add[T any](w *World, e Entity, value T) {
	if !e.IsValid() {
		return
	}
	id := RegisterComponent[T](w)
	componentStore[T](w, id).add(e, value)
	w.entities.patternMut(e).Set(int(id))
	w.notifyPatternChanged(e)
}

// Set overwrites the entity's existing T value. Setting a component that was
// never added is a programming error.
func Set[T any](w *World, e Entity, value T) {
	id, ok := w.components.compIDs[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		panic("ecs: cannot set a component that was never added to the entity")
	}
	componentStore[T](w, id).set(e, value)
}

// Remove erases the entity's T value. The pattern bit is cleared and systems
// are notified before the value leaves storage, so a monitor's OnRemove
// callback can still read it. Removing an absent component is a no-op.
func Remove[T any](w *World, e Entity) {
	if !e.IsValid() {
		return
	}
	id, ok := w.components.compIDs[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return
	}
	w.entities.patternMut(e).Reset(int(id))
	w.notifyPatternChanged(e)
	componentStore[T](w, id).remove(e)
}

// Get returns a pointer to the entity's T value. The entity must have the
// component; use TryGet when ownership is uncertain. The pointer is only
// valid until the next add or remove on any entity's T.
func Get[T any](w *World, e Entity) *T {
	id, ok := w.components.compIDs[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		panic("ecs: entity does not have the requested component")
	}
	return componentStore[T](w, id).get(e)
}

// TryGet returns a pointer to the entity's T value, or nil and false if the
// entity doesn't have one. The same invalidation rule as Get applies.
func TryGet[T any](w *World, e Entity) (*T, bool) {
	id, ok := w.components.compIDs[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return nil, false
	}
	return componentStore[T](w, id).tryGet(e)
}

// Has reports whether the entity owns a T value.
func Has[T any](w *World, e Entity) bool {
	id, ok := w.components.compIDs[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return false
	}
	return componentStore[T](w, id).has(e)
}

// AddTag sets the entity's tag bit for T and re-evaluates system membership.
func AddTag[T any](w *World, e Entity) {
	if !e.IsValid() {
		return
	}
	id := RegisterTag[T](w)
	w.entities.tagPatternMut(e).Set(int(id))
	w.notifyPatternChanged(e)
}

// RemoveTag clears the entity's tag bit for T. Removing an absent tag is a
// no-op.
func RemoveTag[T any](w *World, e Entity) {
	if !e.IsValid() {
		return
	}
	id, ok := w.components.tagIDs[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return
	}
	w.entities.tagPatternMut(e).Reset(int(id))
	w.notifyPatternChanged(e)
}

// HasTag reports whether the entity carries tag T.
func HasTag[T any](w *World, e Entity) bool {
	id, ok := w.components.tagIDs[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return false
	}
	return w.entities.tagPattern(e).Test(int(id))
}

// ForTrait invokes fn once for every component or tag the entity owns whose
// descriptor entity carries trait T. fn receives the owning entity and the
// descriptor, so type-level data (a Serialize hook, a display name) can be
// fetched from the descriptor while instance data stays on the owner.
func ForTrait[T any](w *World, e Entity, fn func(owner, desc Entity)) {
	traitID, ok := w.components.compIDs[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return
	}
	pattern := w.entities.pattern(e)
	for _, d := range w.components.compDescriptors {
		if pattern.Test(int(d.id)) && w.entities.pattern(d.entity).Test(int(traitID)) {
			fn(e, d.entity)
		}
	}
	tagPattern := w.entities.tagPattern(e)
	for _, d := range w.components.tagDescriptors {
		if tagPattern.Test(int(d.id)) && w.entities.pattern(d.entity).Test(int(traitID)) {
			fn(e, d.entity)
		}
	}
}
