package whalecs

import (
	"reflect"

	"go.uber.org/zap"
)

// EntityCallback observes a single-entity lifecycle transition.
type EntityCallback func(e Entity)

// EntityPairCallback observes a child/parent lifecycle transition.
type EntityPairCallback func(child, parent Entity)

// World is the coordination point for the whole runtime. It exclusively owns
// the entity, component, and system managers and sequences every cross-
// cutting effect between them; callers never reach the managers directly.
// All operations assume single-threaded, same-frame access except entity
// creation, which may be called from multiple producer contexts.
type World struct {
	entities   *entityManager
	components *componentManager
	systems    *systemManager
	resources  *resources

	toKill          map[Entity]struct{}
	killedThisFrame map[Entity]struct{}

	deathCallback       EntityCallback
	createCallback      EntityCallback
	childCreateCallback EntityPairCallback
	adoptCallback       EntityPairCallback

	config Config
	logger *zap.Logger
}

// WorldOption configures a World at construction.
type WorldOption func(*World)

// WithConfig sets the world's capacity bounds. Invalid bounds make NewWorld
// panic.
func WithConfig(cfg Config) WorldOption {
	return func(w *World) {
		w.config = cfg
	}
}

// WithLogger attaches a structured logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) WorldOption {
	return func(w *World) {
		w.logger = logger
	}
}

// NewWorld creates an independent world with its own id space, stores, and
// system registry.
func NewWorld(opts ...WorldOption) *World {
	w := &World{
		toKill:          make(map[Entity]struct{}),
		killedThisFrame: make(map[Entity]struct{}),
		config:          DefaultConfig(),
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.config.validate(); err != nil {
		panic(err)
	}
	w.entities = newEntityManager(w.config)
	w.components = newComponentManager(w.config)
	w.systems = newSystemManager()
	w.resources = newResources()
	return w
}

// Entity creates a top-level entity. Check IsValid on the result: creation
// returns the invalid sentinel when the world is at capacity.
func (w *World) Entity(active bool) Entity {
	e := w.entities.create(active, Entity{})
	if !e.IsValid() {
		w.logger.Warn("entity capacity exhausted",
			zap.Int("max_entities", w.config.MaxEntities))
		return e
	}
	if w.createCallback != nil {
		w.createCallback(e)
	}
	return e
}

// NamedEntity creates a top-level entity with a display name.
func (w *World) NamedEntity(name string, active bool) Entity {
	e := w.Entity(active)
	if e.IsValid() {
		w.entities.setName(e, name)
	}
	return e
}

// CreateChild creates an entity parented under parent. The child starts
// active only if both active and the parent's active flag allow it.
func (w *World) CreateChild(parent Entity, active bool) Entity {
	e := w.entities.create(active, parent)
	if !e.IsValid() {
		w.logger.Warn("entity capacity exhausted",
			zap.Int("max_entities", w.config.MaxEntities))
		return e
	}
	if w.childCreateCallback != nil {
		w.childCreateCallback(e, parent)
	}
	return e
}

// newDescriptorEntity backs a freshly registered component or tag type.
func (w *World) newDescriptorEntity(name string) Entity {
	e := w.entities.create(false, Entity{})
	if !e.IsValid() {
		panic("ecs: entity capacity exhausted while registering a type descriptor")
	}
	if name != "" {
		w.entities.setName(e, name)
	}
	w.components.descriptorEntities[e.ID] = struct{}{}
	return e
}

// Kill queues the entity and, recursively, its children for destruction.
// Nothing is torn down until KillEntities drains the queue, so systems
// iterating their membership set during update are never mutated mid-pass.
// Killing an invalid, destroyed, or already-queued entity is a no-op.
func (w *World) Kill(e Entity) {
	if !e.IsValid() || !w.entities.exists(e) {
		return
	}
	if w.components.isDescriptor(e) {
		panic("ecs: cannot kill a component descriptor entity")
	}
	w.toKill[e] = struct{}{}
	for child := range w.entities.children(e) {
		w.Kill(child)
	}
}

// KillEntities drains the kill queue. Death callbacks and monitor OnRemove
// callbacks run while the entity's data is still live; kills they trigger
// are collected and drained in the same call. The killed-this-frame marker
// is cleared only after the whole cascade settles.
func (w *World) KillEntities() {
	for len(w.toKill) > 0 {
		batch := w.toKill
		w.toKill = make(map[Entity]struct{})
		for e := range batch {
			w.killedThisFrame[e] = struct{}{}
		}
		for e := range batch {
			if w.deathCallback != nil {
				w.deathCallback(e)
			}
			w.systems.onEntityDestroyed(w, e)
			w.entities.unlink(e)
			w.entities.destroy(e)
			w.components.entityDestroyed(e)
		}
		// drop redundant kills queued by the callbacks above
		for e := range batch {
			delete(w.toKill, e)
		}
	}
	clear(w.killedThisFrame)
}

// IsKilled reports whether the entity is queued for destruction or already
// destroyed during the current drain.
func (w *World) IsKilled(e Entity) bool {
	if _, ok := w.toKill[e]; ok {
		return true
	}
	_, ok := w.killedThisFrame[e]
	return ok
}

// Copy clones a prefab: component values, component and tag patterns, and
// the parent link. The clone starts inactive; pass active to activate it
// (which is when systems first see it). Mutating the clone never touches the
// prefab.
func (w *World) Copy(prefab Entity, active bool) Entity {
	e := w.Entity(false)
	if !e.IsValid() {
		return e
	}
	w.components.copyComponents(prefab, e)
	w.entities.setPattern(e, w.entities.pattern(prefab))
	w.entities.setTagPattern(e, w.entities.tagPattern(prefab))
	w.entities.link(e, w.entities.parent(prefab))
	if active {
		w.Activate(e)
	}
	return e
}

// Activate marks the entity and, recursively, its children active, entering
// them into every matching system.
func (w *World) Activate(e Entity) {
	if !e.IsValid() {
		return
	}
	if w.components.isDescriptor(e) {
		panic("ecs: cannot activate a component descriptor entity")
	}
	if w.entities.activate(e) {
		w.systems.onEntityPatternChanged(w, e, w.entities.pattern(e), w.entities.tagPattern(e))
	}
	for child := range w.entities.children(e) {
		w.Activate(child)
	}
}

// Deactivate removes the entity and, recursively, its children from all
// systems while leaving their components intact.
func (w *World) Deactivate(e Entity) {
	if !e.IsValid() {
		return
	}
	if w.entities.deactivate(e) {
		w.systems.onEntityDestroyed(w, e)
	}
	for child := range w.entities.children(e) {
		w.Deactivate(child)
	}
}

// IsActive reports whether the entity is currently active.
func (w *World) IsActive(e Entity) bool {
	return w.entities.isActive(e)
}

// Adopt reparents child under parent, severing the old parent link first.
func (w *World) Adopt(parent, child Entity) {
	w.entities.link(child, parent)
	if parent.IsValid() && child.IsValid() && w.adoptCallback != nil {
		w.adoptCallback(child, parent)
	}
	w.systems.onEntityParentChanged(w, child)
}

// Orphan reparents the entity to the root. Top-level entities are left
// untouched.
func (w *World) Orphan(e Entity) {
	if !w.entities.parent(e).IsValid() {
		return
	}
	w.entities.link(e, Entity{})
	w.systems.onEntityParentChanged(w, e)
}

// Parent returns the entity's parent, or the invalid entity for top-level
// entities.
func (w *World) Parent(e Entity) Entity {
	return w.entities.parent(e)
}

// Children returns the entity's children in unspecified order.
func (w *World) Children(e Entity) []Entity {
	set := w.entities.children(e)
	out := make([]Entity, 0, len(set))
	for child := range set {
		out = append(out, child)
	}
	return out
}

// Name returns the entity's display name, generating "entity N" lazily.
func (w *World) Name(e Entity) string {
	return w.entities.name(e)
}

// SetName sets the entity's display name.
func (w *World) SetName(e Entity, name string) {
	w.entities.setName(e, name)
}

// Lookup returns the entity with the given display name, or the invalid
// entity.
func (w *World) Lookup(name string) Entity {
	return w.entities.lookup(name)
}

// Update runs one frame of system updates. Destruction queued during the
// frame stays pending until KillEntities is called.
func (w *World) Update() {
	w.systems.autoUpdate()
}

// Pause suspends per-frame updates except for UpdateDuringPause systems and
// notifies every Pausable system in registration order. Pausing an already
// paused world is a programming error.
func (w *World) Pause() {
	w.systems.pause()
	w.logger.Debug("world paused")
}

// Unpause resumes per-frame updates and notifies every Pausable system.
// Unpausing a world that is not paused is a programming error.
func (w *World) Unpause() {
	w.systems.unpause()
	w.logger.Debug("world unpaused")
}

// IsPaused reports whether the world is paused.
func (w *World) IsPaused() bool {
	return w.systems.paused
}

// RenderableSystems publishes the registered Renderable systems for an
// external renderer to pull; the core never invokes them.
func (w *World) RenderableSystems() []Renderable {
	return w.systems.renderables()
}

// EntityCount returns the number of live entities, descriptors included.
func (w *World) EntityCount() int {
	return w.entities.entityCount
}

// ActiveEntityCount returns the number of active entities.
func (w *World) ActiveEntityCount() int {
	return w.entities.activeEntityCount()
}

// ComponentCount returns the number of registered component types.
func (w *World) ComponentCount() int {
	return w.components.registeredCount()
}

// TagCount returns the number of registered tag types.
func (w *World) TagCount() int {
	return w.components.registeredTagCount()
}

// IsDescriptor reports whether the entity backs a registered component or
// tag type.
func (w *World) IsDescriptor(e Entity) bool {
	return w.components.isDescriptor(e)
}

// SetDeathCallback registers a callback fired just before an entity is torn
// down, while its data is still readable.
func (w *World) SetDeathCallback(cb EntityCallback) {
	w.deathCallback = cb
}

// SetCreateCallback registers a callback fired after every successful
// entity creation.
func (w *World) SetCreateCallback(cb EntityCallback) {
	w.createCallback = cb
}

// SetChildCreateCallback registers a callback fired when an entity is
// created directly under a parent.
func (w *World) SetChildCreateCallback(cb EntityPairCallback) {
	w.childCreateCallback = cb
}

// SetAdoptCallback registers a callback fired when an entity is reparented
// via Adopt.
func (w *World) SetAdoptCallback(cb EntityPairCallback) {
	w.adoptCallback = cb
}

// Clear resets all entity, component, system, and resource state while
// keeping the world's config, logger, and lifecycle callbacks.
func (w *World) Clear() {
	w.systems.clear()
	w.entities = newEntityManager(w.config)
	w.components = newComponentManager(w.config)
	w.resources = newResources()
	w.toKill = make(map[Entity]struct{})
	w.killedThisFrame = make(map[Entity]struct{})
	w.logger.Debug("world cleared")
}

// notifyPatternChanged re-evaluates system membership after a pattern bit
// flip. Inactive entities (descriptors included) never reach systems.
func (w *World) notifyPatternChanged(e Entity) {
	if !w.entities.isActive(e) {
		return
	}
	w.systems.onEntityPatternChanged(w, e, w.entities.pattern(e), w.entities.tagPattern(e))
}

// implementsTrait reports whether a pattern pair owns at least one component
// or tag whose descriptor entity carries the trait.
func (w *World) implementsTrait(pattern, tagPattern Pattern, trait ComponentType) bool {
	for _, d := range w.components.compDescriptors {
		if pattern.Test(int(d.id)) && w.entities.pattern(d.entity).Test(int(trait)) {
			return true
		}
	}
	for _, d := range w.components.tagDescriptors {
		if tagPattern.Test(int(d.id)) && w.entities.pattern(d.entity).Test(int(trait)) {
			return true
		}
	}
	return false
}

func (w *World) hasIgnoreParentExclusion(e Entity) bool {
	id, ok := w.components.tagIDs[reflect.TypeOf((*IgnoreParentExclusion)(nil)).Elem()]
	return ok && w.entities.tagPattern(e).Test(int(id))
}
