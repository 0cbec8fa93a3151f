package whalecs_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	whalecs "github.com/whaleymar/whalECS"
)

// --- Test Components ---

type Position struct{ X, Y float32 }
type Velocity struct{ VX, VY float32 }
type Health struct{ Current, Max int }

// --- Test Tags ---

type Visible struct{}
type Dead struct{}

func newTestWorld(_ *testing.T) *whalecs.World {
	return whalecs.NewWorld()
}

// go test -run ^TestCreateEntity$ . -count 1
func TestCreateEntity(t *testing.T) {
	w := newTestWorld(t)
	e1 := w.Entity(true)
	e2 := w.Entity(true)

	require.True(t, e1.IsValid())
	require.Equal(t, whalecs.EntityID(1), e1.ID)
	require.Equal(t, whalecs.EntityID(2), e2.ID)
	require.True(t, w.IsActive(e1))
	require.Equal(t, 2, w.EntityCount())

	inactive := w.Entity(false)
	require.True(t, inactive.IsValid())
	require.False(t, w.IsActive(inactive))
	require.Equal(t, 2, w.ActiveEntityCount())
}

func TestEntityCapacityExhaustion(t *testing.T) {
	w := whalecs.NewWorld(whalecs.WithConfig(whalecs.Config{
		MaxEntities:   4,
		MaxComponents: 8,
	}))
	for i := 0; i < 3; i++ {
		require.True(t, w.Entity(true).IsValid())
	}
	overflow := w.Entity(true)
	require.False(t, overflow.IsValid(), "creation past capacity must return the sentinel")
	require.Equal(t, 3, w.EntityCount())
}

func TestEntityIDRecycling(t *testing.T) {
	w := whalecs.NewWorld(whalecs.WithConfig(whalecs.Config{
		MaxEntities:   4,
		MaxComponents: 8,
	}))
	e1 := w.Entity(true)
	e2 := w.Entity(true)
	e3 := w.Entity(true)
	require.Equal(t, whalecs.EntityID(3), e3.ID)

	w.Kill(e2)
	w.KillEntities()
	require.Equal(t, 2, w.EntityCount())

	e4 := w.Entity(true)
	require.Equal(t, e2.ID, e4.ID, "freed id is recycled")
	require.True(t, w.IsActive(e1))
}

func TestAddGetComponent(t *testing.T) {
	w := newTestWorld(t)
	e := w.Entity(true)

	whalecs.Add(w, e, Position{X: 10, Y: 20})
	require.True(t, whalecs.Has[Position](w, e))

	p := whalecs.Get[Position](w, e)
	require.Equal(t, float32(10), p.X)
	p.Y = 99
	require.Equal(t, float32(99), whalecs.Get[Position](w, e).Y)

	// add overwrites
	whalecs.Add(w, e, Position{X: 1, Y: 2})
	require.Equal(t, float32(1), whalecs.Get[Position](w, e).X)
}

func TestSetComponent(t *testing.T) {
	w := newTestWorld(t)
	e := w.Entity(true)

	t.Run("SetWithoutAddPanics", func(t *testing.T) {
		require.Panics(t, func() {
			whalecs.Set(w, e, Position{X: 1})
		})
	})

	t.Run("SetAfterAdd", func(t *testing.T) {
		whalecs.Add(w, e, Position{X: 1, Y: 2})
		whalecs.Set(w, e, Position{X: 5, Y: 6})
		require.Equal(t, Position{X: 5, Y: 6}, *whalecs.Get[Position](w, e))
	})

	t.Run("SetOnEntityWithoutSlotPanics", func(t *testing.T) {
		other := w.Entity(true)
		require.Panics(t, func() {
			whalecs.Set(w, other, Position{})
		})
	})
}

func TestRemoveComponentRoundTrip(t *testing.T) {
	w := newTestWorld(t)
	e := w.Entity(true)

	require.NotPanics(t, func() {
		whalecs.Remove[Position](w, e)
	}, "removing an absent component is a soft no-op")

	whalecs.Add(w, e, Position{X: 1})
	whalecs.Remove[Position](w, e)
	require.False(t, whalecs.Has[Position](w, e))
	_, ok := whalecs.TryGet[Position](w, e)
	require.False(t, ok)

	// a second remove is still a no-op
	whalecs.Remove[Position](w, e)
	require.False(t, whalecs.Has[Position](w, e))
}

func TestTryGet(t *testing.T) {
	w := newTestWorld(t)
	e := w.Entity(true)

	p, ok := whalecs.TryGet[Position](w, e)
	require.False(t, ok)
	require.Nil(t, p)

	whalecs.Add(w, e, Position{X: 7})
	p, ok = whalecs.TryGet[Position](w, e)
	require.True(t, ok)
	require.Equal(t, float32(7), p.X)
}

func TestGetAbsentPanics(t *testing.T) {
	w := newTestWorld(t)
	e := w.Entity(true)
	whalecs.Add(w, e, Position{})
	other := w.Entity(true)
	require.Panics(t, func() {
		whalecs.Get[Position](w, other)
	})
}

func TestTags(t *testing.T) {
	w := newTestWorld(t)
	e := w.Entity(true)

	require.False(t, whalecs.HasTag[Visible](w, e))
	whalecs.AddTag[Visible](w, e)
	require.True(t, whalecs.HasTag[Visible](w, e))

	whalecs.RemoveTag[Visible](w, e)
	require.False(t, whalecs.HasTag[Visible](w, e))

	require.NotPanics(t, func() {
		whalecs.RemoveTag[Dead](w, e)
	}, "removing an absent tag is a soft no-op")
}

func TestComponentAndTagIDNamespaces(t *testing.T) {
	w := newTestWorld(t)
	compID := whalecs.RegisterComponent[Position](w)
	tagID := whalecs.RegisterTag[Visible](w)
	require.Equal(t, whalecs.ComponentType(0), compID)
	require.Equal(t, whalecs.ComponentType(0), tagID, "tags draw ids from their own namespace")

	require.Equal(t, compID, whalecs.ComponentID[Position](w), "ids are stable")
	require.Equal(t, whalecs.ComponentType(1), whalecs.RegisterComponent[Velocity](w))
	require.Equal(t, 2, w.ComponentCount())
	require.Equal(t, 1, w.TagCount())
}

func TestTooManyComponentTypesPanics(t *testing.T) {
	w := whalecs.NewWorld(whalecs.WithConfig(whalecs.Config{
		MaxEntities:   64,
		MaxComponents: 1,
	}))
	whalecs.RegisterComponent[Position](w)
	require.Panics(t, func() {
		whalecs.RegisterComponent[Velocity](w)
	})
}

func TestDescriptorEntities(t *testing.T) {
	w := newTestWorld(t)
	desc := whalecs.ComponentEntity[Position](w)
	require.True(t, desc.IsValid())
	require.True(t, w.IsDescriptor(desc))
	require.False(t, w.IsActive(desc))
	require.Equal(t, "Position", w.Name(desc))
	require.Equal(t, desc, whalecs.ComponentEntity[Position](w), "descriptor is stable")

	tagDesc := whalecs.TagEntity[Visible](w)
	require.True(t, w.IsDescriptor(tagDesc))
	require.NotEqual(t, desc, tagDesc)

	require.Panics(t, func() { w.Kill(desc) })
	require.Panics(t, func() { w.Activate(desc) })
}

func TestCopyPrefab(t *testing.T) {
	w := newTestWorld(t)
	prefab := w.Entity(false)
	whalecs.Add(w, prefab, Position{X: 1, Y: 2})
	whalecs.Add(w, prefab, Health{Current: 50, Max: 100})
	whalecs.AddTag[Visible](w, prefab)

	clone := w.Copy(prefab, true)
	require.True(t, clone.IsValid())
	require.NotEqual(t, prefab.ID, clone.ID)
	require.True(t, w.IsActive(clone))
	require.False(t, w.IsActive(prefab))

	require.Equal(t, Position{X: 1, Y: 2}, *whalecs.Get[Position](w, clone))
	require.Equal(t, Health{Current: 50, Max: 100}, *whalecs.Get[Health](w, clone))
	require.True(t, whalecs.HasTag[Visible](w, clone))

	// copies are independent
	whalecs.Get[Position](w, clone).X = 42
	require.Equal(t, float32(1), whalecs.Get[Position](w, prefab).X)
	whalecs.Get[Position](w, prefab).Y = -1
	require.Equal(t, float32(2), whalecs.Get[Position](w, clone).Y)

	require.Equal(t, w.Parent(prefab), w.Parent(clone))
}

func TestNamesAndLookup(t *testing.T) {
	w := newTestWorld(t)
	e := w.NamedEntity("player", true)
	require.Equal(t, "player", w.Name(e))
	require.Equal(t, e, w.Lookup("player"))
	require.False(t, w.Lookup("missing").IsValid())

	anon := w.Entity(true)
	require.Equal(t, "entity 2", w.Name(anon))

	w.SetName(anon, "boss")
	require.Equal(t, "boss", w.Name(anon))
}

func TestLifecycleCallbacks(t *testing.T) {
	w := newTestWorld(t)

	var created, died []whalecs.Entity
	w.SetCreateCallback(func(e whalecs.Entity) { created = append(created, e) })
	w.SetDeathCallback(func(e whalecs.Entity) { died = append(died, e) })

	e := w.Entity(true)
	require.Equal(t, []whalecs.Entity{e}, created)

	w.Kill(e)
	require.Empty(t, died, "death callback waits for the drain")
	w.KillEntities()
	require.Equal(t, []whalecs.Entity{e}, died)
}

func TestKillIsDeferredAndIdempotent(t *testing.T) {
	w := newTestWorld(t)
	e := w.Entity(true)
	whalecs.Add(w, e, Position{X: 3})

	w.Kill(e)
	w.Kill(e)
	require.True(t, w.IsKilled(e))
	require.True(t, whalecs.Has[Position](w, e), "data lives until the drain")

	w.KillEntities()
	require.False(t, w.IsKilled(e))
	require.False(t, whalecs.Has[Position](w, e))
	require.Equal(t, 1, w.EntityCount(), "only the Position descriptor survives")

	// killing a dead entity again is tolerated
	w.Kill(e)
	w.KillEntities()
}

func TestCascadingDeathCallback(t *testing.T) {
	w := newTestWorld(t)
	e1 := w.Entity(true)
	e2 := w.Entity(true)

	w.SetDeathCallback(func(dead whalecs.Entity) {
		if dead == e1 {
			w.Kill(e2)
		}
	})
	w.Kill(e1)
	w.KillEntities()
	require.Equal(t, 0, w.EntityCount(), "kills queued by the drain are drained too")
}

func TestSerializeHook(t *testing.T) {
	w := newTestWorld(t)
	whalecs.Add(w, whalecs.ComponentEntity[Health](w), whalecs.Serialize{
		Ser: func(w *whalecs.World, e whalecs.Entity) string { return "hp" },
	})

	e := w.Entity(true)
	whalecs.Add(w, e, Health{Current: 1, Max: 2})
	whalecs.Add(w, e, Position{})

	var visited []whalecs.Entity
	whalecs.ForTrait[whalecs.Serialize](w, e, func(owner, desc whalecs.Entity) {
		require.Equal(t, e, owner)
		visited = append(visited, desc)
	})
	require.Equal(t, []whalecs.Entity{whalecs.ComponentEntity[Health](w)}, visited,
		"only types that registered the hook are walked")

	hook := whalecs.Get[whalecs.Serialize](w, whalecs.ComponentEntity[Health](w))
	require.Equal(t, "hp", hook.Ser(w, e))
}

func TestClearResetsWorld(t *testing.T) {
	w := newTestWorld(t)
	e := w.Entity(true)
	whalecs.Add(w, e, Position{})
	require.NotZero(t, w.EntityCount())

	w.Clear()
	require.Equal(t, 0, w.EntityCount())
	require.Equal(t, 0, w.ComponentCount())
	require.Equal(t, 0, w.ActiveEntityCount())

	// the world is usable again
	e2 := w.Entity(true)
	whalecs.Add(w, e2, Position{X: 1})
	require.True(t, whalecs.Has[Position](w, e2))
}
