// Profiling:
// go build ./profile/world
// go tool pprof -http=":8000" -nodefraction=0.001 ./world mem.pprof

package main

import (
	"github.com/pkg/profile"

	whalecs "github.com/whaleymar/whalECS"
)

type position struct {
	X, Y float64
}

type velocity struct {
	X, Y float64
}

type moveSystem struct {
	whalecs.SystemBase
}

func (s *moveSystem) Update() {
	w := s.World()
	for _, e := range s.Entities() {
		pos := whalecs.Get[position](w, e)
		vel := whalecs.Get[velocity](w, e)
		pos.X += vel.X
		pos.Y += vel.Y
	}
}

func main() {
	rounds := 20
	frames := 1000
	entities := 2000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, frames, entities)
	p.Stop()
}

func run(rounds, frames, numEntities int) {
	for i := 0; i < rounds; i++ {
		w := whalecs.NewWorld(whalecs.WithConfig(whalecs.Config{
			MaxEntities:   numEntities + 16,
			MaxComponents: 64,
		}))
		whalecs.RegisterSystem(w, &moveSystem{},
			whalecs.Requires[position](),
			whalecs.Requires[velocity]())

		created := make([]whalecs.Entity, 0, numEntities)
		for i := 0; i < numEntities; i++ {
			e := w.Entity(true)
			whalecs.Add(w, e, position{})
			whalecs.Add(w, e, velocity{X: 1, Y: 1})
			created = append(created, e)
		}
		for i := 0; i < frames; i++ {
			w.Update()
		}
		for _, e := range created {
			w.Kill(e)
		}
		w.KillEntities()
	}
}
