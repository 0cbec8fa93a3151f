package whalecs

import "reflect"

// resources holds one value per Go type: engine-level singletons that are not
// entities, shared between systems and the external renderer through the
// World.
type resources struct {
	items map[reflect.Type]any
}

func newResources() *resources {
	return &resources{items: make(map[reflect.Type]any)}
}

// AddResource stores a world-level singleton of type T. Adding a second value
// of the same type is a programming error; use SetResource to overwrite.
func AddResource[T any](w *World, value T) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if _, ok := w.resources.items[t]; ok {
		panic("ecs: resource of this type already exists")
	}
	w.resources.items[t] = value
}

// SetResource stores or overwrites the world's T singleton.
func SetResource[T any](w *World, value T) {
	w.resources.items[reflect.TypeOf((*T)(nil)).Elem()] = value
}

// GetResource returns the world's T singleton. The resource must exist; use
// TryResource when ownership is uncertain.
func GetResource[T any](w *World) T {
	v, ok := w.resources.items[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		panic("ecs: resource of the requested type does not exist")
	}
	return v.(T)
}

// TryResource returns the world's T singleton, or the zero value and false if
// none was added.
func TryResource[T any](w *World) (T, bool) {
	v, ok := w.resources.items[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// RemoveResource drops the world's T singleton. Removing an absent resource is
// a no-op.
func RemoveResource[T any](w *World) {
	delete(w.resources.items, reflect.TypeOf((*T)(nil)).Elem())
}
