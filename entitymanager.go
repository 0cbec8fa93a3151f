package whalecs

import (
	"fmt"
	"sync"
)

// entityManager allocates and recycles entity ids and stores the per-entity
// component/tag patterns, the active flag, display names, and the hierarchy
// relation. It knows nothing about systems; the World sequences cross-cutting
// effects.
type entityManager struct {
	// mu guards id allocation, the only operation callable from multiple
	// producer contexts. Everything else assumes single-threaded access.
	mu sync.Mutex

	availableIDs []EntityID // FIFO free list, ids recycled in order
	patterns     []Pattern  // indexed by entity id
	tagPatterns  []Pattern
	active       Bitset // one bit per entity id
	names        map[EntityID]string

	childToParent    map[Entity]Entity
	parentToChildren map[Entity]map[Entity]struct{}

	entityCount   int
	maxEntities   int
	maxComponents int
}

func newEntityManager(cfg Config) *entityManager {
	em := &entityManager{
		availableIDs:     make([]EntityID, 0, cfg.MaxEntities-1),
		patterns:         make([]Pattern, cfg.MaxEntities),
		tagPatterns:      make([]Pattern, cfg.MaxEntities),
		active:           NewBitset(cfg.MaxEntities),
		names:            make(map[EntityID]string),
		childToParent:    make(map[Entity]Entity),
		parentToChildren: make(map[Entity]map[Entity]struct{}),
		maxEntities:      cfg.MaxEntities,
		maxComponents:    cfg.MaxComponents,
	}
	// id 0 is reserved as the invalid sentinel and hierarchy root
	for id := 1; id < cfg.MaxEntities; id++ {
		em.availableIDs = append(em.availableIDs, EntityID(id))
	}
	for i := range em.patterns {
		em.patterns[i] = NewBitset(cfg.MaxComponents)
		em.tagPatterns[i] = NewBitset(cfg.MaxComponents)
	}
	em.parentToChildren[Entity{}] = make(map[Entity]struct{})
	return em
}

// create allocates an entity, parented under parent. It returns the invalid
// sentinel entity when capacity is exhausted. The new entity starts active
// only if isAlive is set and the parent is active (or is the root).
func (em *entityManager) create(isAlive bool, parent Entity) Entity {
	em.mu.Lock()
	defer em.mu.Unlock()
	if em.entityCount+1 >= em.maxEntities {
		return Entity{}
	}
	id := em.availableIDs[0]
	em.availableIDs = em.availableIDs[1:]
	em.entityCount++
	if (!parent.IsValid() || em.isActive(parent)) && isAlive {
		em.active.Set(int(id))
	}

	self := Entity{ID: id}
	em.parentToChildren[self] = make(map[Entity]struct{})
	em.children(parent)[self] = struct{}{}
	em.childToParent[self] = parent
	return self
}

// destroy recycles the id and clears all per-entity state. It does not
// cascade to children; the World interleaves cascading with callbacks.
func (em *entityManager) destroy(e Entity) {
	em.active.Reset(int(e.ID))
	em.patterns[e.ID].Clear()
	em.tagPatterns[e.ID].Clear()
	delete(em.names, e.ID)
	delete(em.childToParent, e)
	delete(em.parentToChildren, e)
	em.availableIDs = append(em.availableIDs, e.ID)
	em.entityCount--
}

func (em *entityManager) pattern(e Entity) Pattern {
	return em.patterns[e.ID]
}

func (em *entityManager) patternMut(e Entity) *Pattern {
	return &em.patterns[e.ID]
}

func (em *entityManager) setPattern(e Entity, p Pattern) {
	em.patterns[e.ID] = p.Clone()
}

func (em *entityManager) tagPattern(e Entity) Pattern {
	return em.tagPatterns[e.ID]
}

func (em *entityManager) tagPatternMut(e Entity) *Pattern {
	return &em.tagPatterns[e.ID]
}

func (em *entityManager) setTagPattern(e Entity, p Pattern) {
	em.tagPatterns[e.ID] = p.Clone()
}

func (em *entityManager) isActive(e Entity) bool {
	return em.active.Test(int(e.ID))
}

// activate returns true if the entity transitioned to active, false if it
// already was.
func (em *entityManager) activate(e Entity) bool {
	if em.isActive(e) {
		return false
	}
	em.active.Set(int(e.ID))
	return true
}

// deactivate returns true if the entity transitioned to inactive.
func (em *entityManager) deactivate(e Entity) bool {
	if !em.isActive(e) {
		return false
	}
	em.active.Reset(int(e.ID))
	return true
}

func (em *entityManager) activeEntityCount() int {
	return em.active.Count()
}

func (em *entityManager) setName(e Entity, name string) {
	em.names[e.ID] = name
}

// name returns the entity's display name, generating "entity N" on the fly
// for entities that were never named.
func (em *entityManager) name(e Entity) string {
	if n, ok := em.names[e.ID]; ok {
		return n
	}
	n := fmt.Sprintf("entity %d", e.ID)
	em.names[e.ID] = n
	return n
}

// lookup returns the entity with the given display name, or the invalid
// sentinel if no entity carries it.
func (em *entityManager) lookup(name string) Entity {
	for id, n := range em.names {
		if n == name {
			return Entity{ID: id}
		}
	}
	return Entity{}
}

// exists reports whether the entity is currently allocated. Every live entity
// has a parent link (possibly to the root); destruction removes it.
func (em *entityManager) exists(e Entity) bool {
	_, ok := em.childToParent[e]
	return ok
}

func (em *entityManager) parent(e Entity) Entity {
	return em.childToParent[e]
}

func (em *entityManager) children(e Entity) map[Entity]struct{} {
	c, ok := em.parentToChildren[e]
	if !ok {
		c = make(map[Entity]struct{})
		em.parentToChildren[e] = c
	}
	return c
}

// link makes parent the entity's parent, severing the old link first.
func (em *entityManager) link(e, parent Entity) {
	old := em.childToParent[e]
	delete(em.parentToChildren[old], e)
	em.childToParent[e] = parent
	em.children(parent)[e] = struct{}{}
}

// unlink severs the entity's parent link without reparenting.
func (em *entityManager) unlink(e Entity) {
	old := em.childToParent[e]
	delete(em.childToParent, e)
	delete(em.parentToChildren[old], e)
}
