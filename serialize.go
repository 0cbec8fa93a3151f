package whalecs

// Serialize is a meta-component attached to a component type's descriptor
// entity. An external serializer walks an entity's owned types with
// ForTrait[Serialize] and invokes these callbacks for any type that
// registered them; the text framing and its parser live outside the core.
//
// To make component type T serializable:
//
//	Add(w, ComponentEntity[T](w), Serialize{
//		Ser: func(w *World, e Entity) string { ... },
//		De:  func(w *World, e Entity, data string) { ... },
//	})
//
// For tags Ser may be nil; the tag's presence is its whole payload.
type Serialize struct {
	Ser func(w *World, e Entity) string
	De  func(w *World, e Entity, data string)
}
