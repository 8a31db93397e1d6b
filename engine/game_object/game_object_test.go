package game_object

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-runtime/common"
	"github.com/Carmen-Shannon/oxy-runtime/engine/light"
	"github.com/Carmen-Shannon/oxy-runtime/engine/model"

	"github.com/go-gl/mathgl/mgl32"
)

func approxVec3(a, b mgl32.Vec3) bool {
	for i := range 3 {
		if math.Abs(float64(a[i]-b[i])) > 1e-4 {
			return false
		}
	}
	return true
}

func TestNewGameObjectDefaults(t *testing.T) {
	obj := NewGameObject()
	if !obj.Enabled() {
		t.Error("expected a new object to be enabled")
	}
	if obj.Layer() != DefaultLayer {
		t.Errorf("expected layer %d, got %d", DefaultLayer, obj.Layer())
	}
	if sx, sy, sz := obj.Scale(); sx != 1 || sy != 1 || sz != 1 {
		t.Errorf("expected unit scale, got (%f, %f, %f)", sx, sy, sz)
	}
	if obj.WorldMatrix() != mgl32.Ident4() {
		t.Errorf("expected identity world matrix, got %v", obj.WorldMatrix())
	}
}

func TestModelFollowsTransform(t *testing.T) {
	m := model.NewModel(model.WithLocalBounds(common.AABB{HalfExtents: mgl32.Vec3{1, 1, 1}}))
	obj := NewGameObject(WithModel(m), WithPosition(5, 0, 0), WithScale(2, 2, 2))

	if m.Node() != obj {
		t.Fatal("expected the model to be attached to the object")
	}
	b, ok := m.WorldBounds()
	if !ok {
		t.Fatal("expected world bounds")
	}
	if !approxVec3(b.Center, mgl32.Vec3{5, 0, 0}) || !approxVec3(b.HalfExtents, mgl32.Vec3{2, 2, 2}) {
		t.Errorf("expected bounds at (5, 0, 0) half (2, 2, 2), got %v", b)
	}

	obj.SetPosition(0, 3, 0)
	b, _ = m.WorldBounds()
	if !approxVec3(b.Center, mgl32.Vec3{0, 3, 0}) {
		t.Errorf("expected bounds to move to (0, 3, 0), got %v", b.Center)
	}

	other := model.NewModel()
	obj.SetModel(other)
	if m.Node() != nil {
		t.Error("expected the replaced model to be detached")
	}
	if other.Node() != obj {
		t.Error("expected the new model to be attached")
	}
}

func TestUpdateAppliesRotationSpeed(t *testing.T) {
	obj := NewGameObject(WithRotationSpeed(0, float32(math.Pi), 0))
	obj.Update(0.5)

	_, ry, _ := obj.Rotation()
	if math.Abs(float64(ry)-math.Pi/2) > 1e-5 {
		t.Errorf("expected rotation pi/2, got %f", ry)
	}
	fwd := obj.WorldRotation().Rotate(mgl32.Vec3{0, 0, -1})
	if !approxVec3(fwd, mgl32.Vec3{-1, 0, 0}) {
		t.Errorf("expected -Z to turn to -X, got %v", fwd)
	}
}

func TestAttachedLightFollowsPosition(t *testing.T) {
	l := light.NewLight(light.LightTypePoint)
	obj := NewGameObject(WithLight(l), WithPosition(1, 2, 3))
	if l.Position() != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("expected light at (1, 2, 3), got %v", l.Position())
	}
	obj.SetPosition(4, 5, 6)
	if l.Position() != (mgl32.Vec3{4, 5, 6}) {
		t.Errorf("expected light at (4, 5, 6), got %v", l.Position())
	}

	sun := light.NewLight(light.LightTypeDirectional)
	obj.SetLight(sun)
	if sun.Position() != (mgl32.Vec3{}) {
		t.Errorf("expected a directional light to keep its position, got %v", sun.Position())
	}
}
