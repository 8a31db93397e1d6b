package camera

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-runtime/common"
	"github.com/Carmen-Shannon/oxy-runtime/engine/scene"

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

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()
	if c.Visibility() != VisibilityAll {
		t.Errorf("expected visibility %x, got %x", VisibilityAll, c.Visibility())
	}
	if c.ClearFlag()&ClearFlagSkybox != 0 {
		t.Error("expected the skybox flag to be off by default")
	}
	if !approxVec3(c.Forward(), mgl32.Vec3{0, 0, -1}) {
		t.Errorf("expected forward (0, 0, -1), got %v", c.Forward())
	}
}

func TestLookAtUpdatesFrustum(t *testing.T) {
	s := scene.NewScene("cam")
	c := NewCamera(WithScene(s), WithAspect(1), WithNearFar(0.1, 50))
	if c.Scene() != s {
		t.Error("expected the camera to keep its scene")
	}

	box := common.AABB{Center: mgl32.Vec3{20, 0, 0}, HalfExtents: mgl32.Vec3{1, 1, 1}}
	f := c.Frustum()
	if f.IntersectsAABB(box) {
		t.Error("expected the box on +X to be outside the default view")
	}

	c.LookAt(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0})
	f = c.Frustum()
	if !f.IntersectsAABB(box) {
		t.Error("expected the box to be visible after turning to +X")
	}
	if !approxVec3(c.Forward(), mgl32.Vec3{1, 0, 0}) {
		t.Errorf("expected forward (1, 0, 0), got %v", c.Forward())
	}
	if c.ViewProjectionMatrix() != c.ProjectionMatrix().Mul4(c.ViewMatrix()) {
		t.Error("expected view projection to equal projection times view")
	}
}

func TestControllerDrivesUpdate(t *testing.T) {
	ctrl := NewOrbitController(
		WithTarget(mgl32.Vec3{0, 1, 0}),
		WithRadius(10),
		WithElevation(0),
		WithAutoOrbit(float32(math.Pi)),
	)
	c := NewCamera(WithController(ctrl))
	if !approxVec3(c.Position(), mgl32.Vec3{0, 1, 10}) {
		t.Errorf("expected position (0, 1, 10), got %v", c.Position())
	}

	ctrl.Advance(0.5)
	c.Update()
	if !approxVec3(c.Position(), mgl32.Vec3{10, 1, 0}) {
		t.Errorf("expected position (10, 1, 0) after a quarter turn, got %v", c.Position())
	}
	if !approxVec3(c.Target(), mgl32.Vec3{0, 1, 0}) {
		t.Errorf("expected target (0, 1, 0), got %v", c.Target())
	}
}

func TestOrbitControllerClamps(t *testing.T) {
	ctrl := NewOrbitController(WithRadiusBounds(2, 5), WithElevationBounds(-0.5, 0.5))
	ctrl.SetRadius(100)
	if ctrl.Radius() != 5 {
		t.Errorf("expected radius 5, got %f", ctrl.Radius())
	}
	ctrl.Zoom(10)
	if ctrl.Radius() != 2 {
		t.Errorf("expected radius 2, got %f", ctrl.Radius())
	}
	ctrl.Orbit(0, 3)
	if ctrl.Elevation() != 0.5 {
		t.Errorf("expected elevation 0.5, got %f", ctrl.Elevation())
	}
}
