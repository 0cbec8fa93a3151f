package whalecs

import (
	"reflect"

	"go.uber.org/zap"
)

// systemEntry pairs a registered system with its probed capability handles.
// Probing happens once at registration so the per-frame and per-mutation
// paths never need type inspection.
type systemEntry struct {
	sys        System
	base       *SystemBase
	updatable  Updatable
	monitor    Monitor
	pausable   Pausable
	renderable Renderable
}

type updateGroup struct {
	spec    UpdateGroup
	members []int // indexes into systemManager.systems, registration order
}

// systemManager keeps each system's membership set correct as entities
// mutate, and drives per-frame invocation in registration order.
type systemManager struct {
	registered map[reflect.Type]struct{}
	systems    []*systemEntry
	groups     []*updateGroup // first-seen order
	frame      uint64
	paused     bool
}

func newSystemManager() *systemManager {
	return &systemManager{
		registered: make(map[reflect.Type]struct{}),
	}
}

// RegisterSystem registers exactly one instance of a concrete system type
// with the world. Registering the same type twice is a programming error.
// Options derive the required/excluded signatures, trait requirements,
// attributes, and update group; capability interfaces (Updatable, Monitor,
// Pausable, Renderable) are probed here and stored as typed handles.
func RegisterSystem[S System](w *World, sys S, opts ...SystemOption) S {
	t := reflect.TypeOf(sys)
	m := w.systems
	if _, ok := m.registered[t]; ok {
		panic("ecs: system already registered")
	}

	cfg := systemConfig{
		required:    NewBitset(w.config.MaxComponents),
		excluded:    NewBitset(w.config.MaxComponents),
		tagRequired: NewBitset(w.config.MaxComponents),
		tagExcluded: NewBitset(w.config.MaxComponents),
		group:       UpdateGroup{Interval: 1},
	}
	for _, opt := range opts {
		opt(w, &cfg)
	}

	base := sys.base()
	base.world = w
	base.entities = make(map[EntityID]Entity)
	base.required = cfg.required
	base.excluded = cfg.excluded
	base.tagRequired = cfg.tagRequired
	base.tagExcluded = cfg.tagExcluded
	base.traits = cfg.traits
	base.attributes = cfg.attributes
	base.name = t.String()

	entry := &systemEntry{sys: sys, base: base}
	entry.updatable, _ = any(sys).(Updatable)
	entry.monitor, _ = any(sys).(Monitor)
	entry.pausable, _ = any(sys).(Pausable)
	entry.renderable, _ = any(sys).(Renderable)

	m.registered[t] = struct{}{}
	ix := len(m.systems)
	m.systems = append(m.systems, entry)
	g := m.groupFor(cfg.group)
	g.members = append(g.members, ix)

	w.logger.Debug("registered system",
		zap.String("system", base.name),
		zap.Uint32("interval", cfg.group.Interval),
		zap.Bool("parallel", cfg.group.Parallel))
	return sys
}

func (m *systemManager) groupFor(spec UpdateGroup) *updateGroup {
	for _, g := range m.groups {
		if g.spec == spec {
			return g
		}
	}
	g := &updateGroup{spec: spec}
	m.groups = append(m.groups, g)
	return g
}

// matches evaluates the signature algebra for one system against a candidate
// pattern pair.
func (m *systemManager) matches(w *World, se *systemEntry, pattern, tagPattern Pattern) bool {
	b := se.base
	if !pattern.Contains(b.required) || !tagPattern.Contains(b.tagRequired) {
		return false
	}
	if !pattern.ContainsNone(b.excluded) || !tagPattern.ContainsNone(b.tagExcluded) {
		return false
	}
	for _, trait := range b.traits {
		if !w.implementsTrait(pattern, tagPattern, trait) {
			return false
		}
	}
	return true
}

// checkMembership performs at most one membership transition, firing the
// monitor callback exactly once when it does.
func (m *systemManager) checkMembership(w *World, se *systemEntry, e Entity, pattern, tagPattern Pattern) {
	b := se.base
	_, isMember := b.entities[e.ID]

	excluded := false
	if b.attributes&ExcludeChildren != 0 && !w.hasIgnoreParentExclusion(e) {
		parent := w.entities.parent(e)
		if parent.IsValid() && m.matches(w, se, w.entities.pattern(parent), w.entities.tagPattern(parent)) {
			excluded = true
		}
	}

	if m.matches(w, se, pattern, tagPattern) && !excluded {
		if isMember {
			return
		}
		if b.attributes&UniqueEntity != 0 && len(b.entities) >= 1 {
			panic("ecs: cannot assign more than one entity to a system with the UniqueEntity attribute")
		}
		b.entities[e.ID] = e
		if se.monitor != nil {
			se.monitor.OnAdd(e)
		}
		if b.attributes&ExcludeChildren != 0 {
			m.evictChildren(w, se, e)
		}
	} else if isMember {
		if se.monitor != nil {
			se.monitor.OnRemove(e)
		}
		delete(b.entities, e.ID)
	}
}

// evictChildren removes descendants of parent that are present in the
// system. Recursion continues only through evicted members.
func (m *systemManager) evictChildren(w *World, se *systemEntry, parent Entity) {
	for child := range w.entities.children(parent) {
		if w.hasIgnoreParentExclusion(child) {
			continue
		}
		if _, ok := se.base.entities[child.ID]; ok {
			if se.monitor != nil {
				se.monitor.OnRemove(child)
			}
			delete(se.base.entities, child.ID)
			m.evictChildren(w, se, child)
		}
	}
}

// onEntityPatternChanged re-evaluates every system's membership for e.
func (m *systemManager) onEntityPatternChanged(w *World, e Entity, pattern, tagPattern Pattern) {
	for _, se := range m.systems {
		m.checkMembership(w, se, e, pattern, tagPattern)
	}
}

// onEntityDestroyed removes e from every system currently containing it. The
// monitor callback runs before the erase so it can still read live data.
func (m *systemManager) onEntityDestroyed(w *World, e Entity) {
	for _, se := range m.systems {
		if _, ok := se.base.entities[e.ID]; !ok {
			continue
		}
		if se.monitor != nil {
			se.monitor.OnRemove(e)
		}
		delete(se.base.entities, e.ID)
	}
}

// onEntityParentChanged re-checks systems whose eligibility can change
// without a pattern change.
func (m *systemManager) onEntityParentChanged(w *World, e Entity) {
	for _, se := range m.systems {
		if se.base.attributes&ExcludeChildren == 0 {
			continue
		}
		m.checkMembership(w, se, e, w.entities.pattern(e), w.entities.tagPattern(e))
	}
}

// autoUpdate runs one frame: groups in registration order, members in
// registration order, each group skipped unless the frame counter is a
// multiple of its interval. Paused worlds only run UpdateDuringPause systems.
func (m *systemManager) autoUpdate() {
	for _, g := range m.groups {
		if m.frame%uint64(g.spec.Interval) != 0 {
			continue
		}
		for _, ix := range g.members {
			se := m.systems[ix]
			if se.updatable == nil {
				continue
			}
			if m.paused && se.base.attributes&UpdateDuringPause == 0 {
				continue
			}
			se.updatable.Update()
		}
	}
	m.frame++
}

func (m *systemManager) pause() {
	if m.paused {
		panic("ecs: world is already paused")
	}
	m.paused = true
	for _, se := range m.systems {
		if se.pausable != nil {
			se.pausable.OnPause()
		}
	}
}

func (m *systemManager) unpause() {
	if !m.paused {
		panic("ecs: world is not paused")
	}
	m.paused = false
	for _, se := range m.systems {
		if se.pausable != nil {
			se.pausable.OnUnpause()
		}
	}
}

func (m *systemManager) renderables() []Renderable {
	out := make([]Renderable, 0, len(m.systems))
	for _, se := range m.systems {
		if se.renderable != nil {
			out = append(out, se.renderable)
		}
	}
	return out
}

// clear forgets every registered system and resets the frame clock.
func (m *systemManager) clear() {
	m.registered = make(map[reflect.Type]struct{})
	m.systems = nil
	m.groups = nil
	m.frame = 0
	m.paused = false
}
