package scene

import (
	"sync/atomic"
	"testing"

	"github.com/Carmen-Shannon/oxy-runtime/engine/game_object"
	"github.com/Carmen-Shannon/oxy-runtime/engine/light"
	"github.com/Carmen-Shannon/oxy-runtime/engine/model"
)

func TestAddAssignsIDsAndModels(t *testing.T) {
	m1 := model.NewModel(model.WithName("m1"))
	m2 := model.NewModel(model.WithName("m2"))
	o1 := game_object.NewGameObject(game_object.WithModel(m1))
	o2 := game_object.NewGameObject(game_object.WithID(10), game_object.WithModel(m2))

	s := NewScene("test", WithObjects(o1, o2))
	if o1.ID() != 1 {
		t.Errorf("expected id 1, got %d", o1.ID())
	}
	if id := s.Add(game_object.NewGameObject()); id != 11 {
		t.Errorf("expected id 11 after an explicit id 10, got %d", id)
	}
	if s.Count() != 3 {
		t.Errorf("expected 3 objects, got %d", s.Count())
	}

	models := s.Models()
	if len(models) != 2 || models[0] != m1 || models[1] != m2 {
		t.Fatalf("expected m1 and m2 in insertion order, got %d models", len(models))
	}

	s.AddModel(m1)
	if n := len(s.Models()); n != 2 {
		t.Errorf("expected adding a model twice to be a no-op, got %d models", n)
	}

	s.Remove(o1.ID())
	if s.Get(o1.ID()) != nil {
		t.Error("expected the object to be removed")
	}
	if models := s.Models(); len(models) != 1 || models[0] != m2 {
		t.Errorf("expected only m2 after removal, got %d models", len(models))
	}
}

func TestLightsAreSortedByType(t *testing.T) {
	sun := light.NewLight(light.LightTypeDirectional)
	sun2 := light.NewLight(light.LightTypeDirectional)
	spot := light.NewLight(light.LightTypeSpot)
	point := light.NewLight(light.LightTypePoint)

	s := NewScene("lights", WithLights(sun, sun2, spot, point))
	if s.MainLight() != sun {
		t.Error("expected the first directional light to be the main light")
	}
	if spots := s.SpotLights(); len(spots) != 1 || spots[0] != spot {
		t.Errorf("expected one spot light, got %d", len(spots))
	}
	if spheres := s.SphereLights(); len(spheres) != 1 || spheres[0] != point {
		t.Errorf("expected one point light, got %d", len(spheres))
	}

	s.RemoveLight(sun)
	if s.MainLight() != nil {
		t.Error("expected the main light to be cleared")
	}
	s.SetMainLight(sun2)
	if s.MainLight() != sun2 {
		t.Error("expected sun2 to be the main light")
	}
}

func TestSetMainLightRejectsLocalLights(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for a point main light")
		}
	}()
	NewScene("bad").SetMainLight(light.NewLight(light.LightTypePoint))
}

type countingObject struct {
	game_object.GameObject
	updates *atomic.Int32
}

func (c countingObject) Update(dt float32) {
	c.updates.Add(1)
	c.GameObject.Update(dt)
}

func TestUpdateRunsEveryEnabledObject(t *testing.T) {
	var updates atomic.Int32
	s := NewScene("update", WithUpdateWorkers(2))
	for i := range 20 {
		obj := countingObject{GameObject: game_object.NewGameObject(), updates: &updates}
		if i%4 == 0 {
			obj.SetEnabled(false)
		}
		s.Add(obj)
	}

	s.Update(0.016)
	if got := updates.Load(); got != 15 {
		t.Errorf("expected 15 updates, got %d", got)
	}
}

func TestClear(t *testing.T) {
	s := NewScene("clear",
		WithObjects(game_object.NewGameObject(game_object.WithModel(model.NewModel()))),
		WithLights(light.NewLight(light.LightTypeDirectional)),
	)
	s.Clear()
	if s.Count() != 0 || len(s.Models()) != 0 || s.MainLight() != nil {
		t.Error("expected an empty scene after Clear")
	}
}
