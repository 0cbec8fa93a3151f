package whalecs

import "reflect"

// componentArray is the type-erased surface the componentManager drives when
// it has to touch every registered store (destruction, prefab copies).
type componentArray interface {
	entityDestroyed(e Entity)
	copyComponent(prefab, dest Entity)
}

// storage maintains the dense value table for one component type, plus the
// entity→index map and its inverse. Values occupy [0, len) contiguously;
// removal swaps the last live element into the freed slot, so a pointer
// obtained from get or tryGet is invalidated by any later add or remove.
type storage[T any] struct {
	table         []T
	entityToIndex map[EntityID]int
	indexToEntity map[int]EntityID
}

func newStorage[T any]() *storage[T] {
	return &storage[T]{
		entityToIndex: make(map[EntityID]int),
		indexToEntity: make(map[int]EntityID),
	}
}

// add inserts the value, or overwrites it if the entity already has one.
func (s *storage[T]) add(e Entity, value T) {
	if ix, ok := s.entityToIndex[e.ID]; ok {
		s.table[ix] = value
		return
	}
	ix := len(s.table)
	s.entityToIndex[e.ID] = ix
	s.indexToEntity[ix] = e.ID
	s.table = append(s.table, value)
}

// set overwrites an existing value. Setting a component that was never added
// is a programming error.
func (s *storage[T]) set(e Entity, value T) {
	ix, ok := s.entityToIndex[e.ID]
	if !ok {
		panic("ecs: cannot set a component that was never added to the entity")
	}
	s.table[ix] = value
}

// remove is a no-op if the entity has no value; otherwise it swaps the last
// live element into the freed slot to keep the table dense.
func (s *storage[T]) remove(e Entity) {
	removeIx, ok := s.entityToIndex[e.ID]
	if !ok {
		return
	}
	lastIx := len(s.table) - 1
	if removeIx != lastIx {
		s.table[removeIx] = s.table[lastIx]
		lastEntity := s.indexToEntity[lastIx]
		s.entityToIndex[lastEntity] = removeIx
		s.indexToEntity[removeIx] = lastEntity
	}
	var zero T
	s.table[lastIx] = zero
	s.table = s.table[:lastIx]
	delete(s.entityToIndex, e.ID)
	delete(s.indexToEntity, lastIx)
}

func (s *storage[T]) has(e Entity) bool {
	_, ok := s.entityToIndex[e.ID]
	return ok
}

func (s *storage[T]) get(e Entity) *T {
	ix, ok := s.entityToIndex[e.ID]
	if !ok {
		panic("ecs: entity does not have the requested component")
	}
	return &s.table[ix]
}

func (s *storage[T]) tryGet(e Entity) (*T, bool) {
	ix, ok := s.entityToIndex[e.ID]
	if !ok {
		return nil, false
	}
	return &s.table[ix], true
}

func (s *storage[T]) entityDestroyed(e Entity) {
	s.remove(e)
}

func (s *storage[T]) copyComponent(prefab, dest Entity) {
	if ix, ok := s.entityToIndex[prefab.ID]; ok {
		s.add(dest, s.table[ix])
	}
}

// descriptor records the identity of a registered component or tag type. The
// backing entity lets the type itself carry components: traits, display
// names, and serialization callbacks attach there.
type descriptor struct {
	typ    reflect.Type
	name   string
	entity Entity
	id     ComponentType
	isTag  bool
}

// componentManager assigns type ids and owns the dense stores. Registration
// of new types goes through the World so descriptor entities can be
// allocated; the manager itself never touches the entityManager.
type componentManager struct {
	compIDs map[reflect.Type]ComponentType
	tagIDs  map[reflect.Type]ComponentType

	arrays          []componentArray // indexed by component id
	compDescriptors []descriptor     // indexed by component id
	tagDescriptors  []descriptor     // indexed by tag id

	descriptorEntities map[EntityID]struct{}
	maxComponents      int
}

func newComponentManager(cfg Config) *componentManager {
	return &componentManager{
		compIDs:            make(map[reflect.Type]ComponentType, 16),
		tagIDs:             make(map[reflect.Type]ComponentType, 16),
		descriptorEntities: make(map[EntityID]struct{}),
		maxComponents:      cfg.MaxComponents,
	}
}

// isDescriptor reports whether the entity backs a registered type.
func (cm *componentManager) isDescriptor(e Entity) bool {
	_, ok := cm.descriptorEntities[e.ID]
	return ok
}

// entityDestroyed erases the entity's value from every registered store.
func (cm *componentManager) entityDestroyed(e Entity) {
	for _, arr := range cm.arrays {
		arr.entityDestroyed(e)
	}
}

// copyComponents duplicates every component value the prefab holds onto dest.
func (cm *componentManager) copyComponents(prefab, dest Entity) {
	for _, arr := range cm.arrays {
		arr.copyComponent(prefab, dest)
	}
}

func (cm *componentManager) registeredCount() int {
	return len(cm.arrays)
}

func (cm *componentManager) registeredTagCount() int {
	return len(cm.tagDescriptors)
}
