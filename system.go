package whalecs

// System is implemented by embedding SystemBase in a concrete system type.
// The unexported method keeps outside types from satisfying it by accident.
type System interface {
	base() *SystemBase
}

// SystemBase carries the bookkeeping every registered system shares: the
// required/excluded component and tag signatures, the trait requirements, and
// the set of currently matching, active entities. Concrete systems embed it
// and expose behavior through the capability interfaces below.
type SystemBase struct {
	world    *World
	entities map[EntityID]Entity

	required    Pattern
	excluded    Pattern
	tagRequired Pattern
	tagExcluded Pattern
	traits      []ComponentType

	attributes Attribute
	name       string
}

func (b *SystemBase) base() *SystemBase { return b }

// World returns the world the system was registered with.
func (b *SystemBase) World() *World { return b.world }

// Entities returns a snapshot of the system's current members. Order is
// unspecified.
func (b *SystemBase) Entities() []Entity {
	out := make([]Entity, 0, len(b.entities))
	for _, e := range b.entities {
		out = append(out, e)
	}
	return out
}

// First returns an arbitrary member, or the invalid entity if the system is
// empty. Intended for UniqueEntity systems, where it is the only member.
func (b *SystemBase) First() Entity {
	for _, e := range b.entities {
		return e
	}
	return Entity{}
}

// EntityCount returns the number of current members.
func (b *SystemBase) EntityCount() int {
	return len(b.entities)
}

// Contains reports whether the entity is currently a member.
func (b *SystemBase) Contains(e Entity) bool {
	_, ok := b.entities[e.ID]
	return ok
}

// Updatable systems run once per matching update-group frame.
type Updatable interface {
	System
	Update()
}

// Monitor systems receive membership transition callbacks. Each transition
// fires exactly once: OnAdd after the entity is inserted (the triggering
// component is already readable), OnRemove before the entity's data is torn
// down.
type Monitor interface {
	System
	OnAdd(e Entity)
	OnRemove(e Entity)
}

// Pausable systems are notified synchronously when the world pauses and
// unpauses.
type Pausable interface {
	System
	OnPause()
	OnUnpause()
}

// RenderContext and DrawQueue are supplied by an external renderer; the core
// never inspects or invokes them.
type (
	RenderContext = any
	DrawQueue     = any
)

// Renderable systems expose draw operations to an external renderer. The core
// only publishes them via World.RenderableSystems; it calls neither method.
type Renderable interface {
	System
	Draw(e Entity, ctx RenderContext)
	Enqueue(q DrawQueue)
}

// Attribute flags tune how the registry treats a system.
type Attribute uint8

const (
	// UpdateDuringPause keeps the system updating while the world is paused.
	UpdateDuringPause Attribute = 1 << iota
	// ExcludeChildren evicts an entity whose parent also matches the system.
	ExcludeChildren
	// UniqueEntity asserts the system never holds more than one member.
	UniqueEntity
)

// IgnoreParentExclusion is a built-in tag: entities carrying it are never
// evicted by ExcludeChildren systems even when their parent matches.
type IgnoreParentExclusion struct{}

// UpdateGroup places a system in an ordered per-frame batch. Groups run in
// first-registration order; a group is skipped on frames that are not a
// multiple of Interval. Parallel marks the members as theoretically safe to
// run concurrently; execution currently stays sequential.
type UpdateGroup struct {
	Interval uint32
	Parallel bool
}

// systemConfig accumulates registration options before the entry is built.
type systemConfig struct {
	required    Pattern
	excluded    Pattern
	tagRequired Pattern
	tagExcluded Pattern
	traits      []ComponentType
	attributes  Attribute
	group       UpdateGroup
}

// SystemOption configures a system at registration time.
type SystemOption func(w *World, c *systemConfig)

// Requires adds component type T to the system's required signature.
func Requires[T any]() SystemOption {
	return func(w *World, c *systemConfig) {
		c.required.Set(int(ComponentID[T](w)))
	}
}

// Excludes adds component type T to the system's excluded signature.
func Excludes[T any]() SystemOption {
	return func(w *World, c *systemConfig) {
		c.excluded.Set(int(ComponentID[T](w)))
	}
}

// RequiresTag adds tag type T to the system's required tag signature.
func RequiresTag[T any]() SystemOption {
	return func(w *World, c *systemConfig) {
		c.tagRequired.Set(int(TagID[T](w)))
	}
}

// ExcludesTag adds tag type T to the system's excluded tag signature.
func ExcludesTag[T any]() SystemOption {
	return func(w *World, c *systemConfig) {
		c.tagExcluded.Set(int(TagID[T](w)))
	}
}

// RequiresTrait makes membership demand at least one owned component or tag
// whose descriptor entity carries trait T.
func RequiresTrait[T any]() SystemOption {
	return func(w *World, c *systemConfig) {
		c.traits = append(c.traits, ComponentID[T](w))
	}
}

// WithAttributes ORs the given flags into the system's attributes.
func WithAttributes(a Attribute) SystemOption {
	return func(_ *World, c *systemConfig) {
		c.attributes |= a
	}
}

// InGroup assigns the system to an update group. Systems registered without
// it land in the default group (interval 1, sequential).
func InGroup(g UpdateGroup) SystemOption {
	return func(_ *World, c *systemConfig) {
		if g.Interval == 0 {
			g.Interval = 1
		}
		c.group = g
	}
}
