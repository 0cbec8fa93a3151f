package whalecs_test

import (
	"fmt"
	"testing"

	whalecs "github.com/whaleymar/whalECS"
)

func benchWorld(size int) *whalecs.World {
	return whalecs.NewWorld(whalecs.WithConfig(whalecs.Config{
		MaxEntities:   size + 8,
		MaxComponents: 16,
	}))
}

func BenchmarkCreateEntity(b *testing.B) {
	sizes := []int{1000, 10000, 100000}
	for _, size := range sizes {
		b.Run(fmt.Sprintf("%dK", size/1000), func(b *testing.B) {
			for n := 0; n < b.N; n++ {
				b.StopTimer()
				w := benchWorld(size)
				b.StartTimer()
				for i := 0; i < size; i++ {
					w.Entity(true)
				}
			}
			b.ReportAllocs()
		})
	}
}

func BenchmarkAddComponent(b *testing.B) {
	const size = 10000
	for n := 0; n < b.N; n++ {
		b.StopTimer()
		w := benchWorld(size)
		entities := make([]whalecs.Entity, size)
		for i := range entities {
			entities[i] = w.Entity(true)
		}
		b.StartTimer()
		for i, e := range entities {
			whalecs.Add(w, e, Position{X: float32(i)})
		}
	}
	b.ReportAllocs()
}

func BenchmarkGetComponent(b *testing.B) {
	const size = 10000
	w := benchWorld(size)
	entities := make([]whalecs.Entity, size)
	for i := range entities {
		entities[i] = w.Entity(true)
		whalecs.Add(w, entities[i], Position{X: float32(i)})
	}
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		for _, e := range entities {
			_ = whalecs.Get[Position](w, e)
		}
	}
	b.ReportAllocs()
}

type benchSystem struct {
	whalecs.SystemBase
}

func (s *benchSystem) Update() {
	w := s.World()
	for _, e := range s.Entities() {
		p := whalecs.Get[Position](w, e)
		v := whalecs.Get[Velocity](w, e)
		p.X += v.VX
		p.Y += v.VY
	}
}

func BenchmarkSystemUpdate(b *testing.B) {
	sizes := []int{1000, 10000}
	for _, size := range sizes {
		b.Run(fmt.Sprintf("%dK", size/1000), func(b *testing.B) {
			w := benchWorld(size)
			whalecs.RegisterSystem(w, &benchSystem{},
				whalecs.Requires[Position](),
				whalecs.Requires[Velocity]())
			for i := 0; i < size; i++ {
				e := w.Entity(true)
				whalecs.Add(w, e, Position{X: float32(i)})
				whalecs.Add(w, e, Velocity{VX: 1, VY: 1})
			}
			b.ResetTimer()
			for n := 0; n < b.N; n++ {
				w.Update()
			}
			b.ReportAllocs()
		})
	}
}
