package engine

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-runtime/common"
	"github.com/Carmen-Shannon/oxy-runtime/engine/asset"
	"github.com/Carmen-Shannon/oxy-runtime/engine/assetmanager"
	"github.com/Carmen-Shannon/oxy-runtime/engine/camera"
	"github.com/Carmen-Shannon/oxy-runtime/engine/culling"
	"github.com/Carmen-Shannon/oxy-runtime/engine/model"
	"github.com/Carmen-Shannon/oxy-runtime/engine/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// countingScene wraps a Scene and counts Update calls.
type countingScene struct {
	scene.Scene
	updates int
}

func (s *countingScene) Update(dt float32) {
	s.updates++
	s.Scene.Update(dt)
}

func newTestScene() *countingScene {
	m := model.NewModel(
		model.WithName("cube"),
		model.WithVisFlags(1),
		model.WithLocalBounds(common.NewAABBFromMinMax(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})),
	)
	return &countingScene{Scene: scene.NewScene("test", scene.WithModels(m))}
}

func TestStepCullsCamerasInKeyOrder(t *testing.T) {
	s := newTestScene()
	front := camera.NewCamera(camera.WithName("front"), camera.WithScene(s))
	back := camera.NewCamera(camera.WithName("back"), camera.WithScene(s),
		camera.WithLookAt(mgl32.Vec3{0, 0, -10}, mgl32.Vec3{}))

	var order []string
	var counts []int
	e := NewEngine(
		WithCamera(2, back),
		WithCamera(1, front),
		WithFrameCallback(func(cam camera.Camera, c culling.Culler, _ float32) {
			order = append(order, cam.Name())
			counts = append(counts, len(c.RenderObjects()))
		}),
	)

	e.Step(1.0 / 60)

	if len(order) != 2 || order[0] != "front" || order[1] != "back" {
		t.Fatalf("expected [front back], got %v", order)
	}
	for i, n := range counts {
		if n != 1 {
			t.Errorf("expected camera %d to see 1 object, got %d", i, n)
		}
	}
	if s.updates != 1 {
		t.Errorf("expected shared scene updated once, got %d", s.updates)
	}
}

func TestStepSkipsInactiveScene(t *testing.T) {
	s := newTestScene()
	s.SetActive(false)
	calls := 0
	e := NewEngine(
		WithCamera(0, camera.NewCamera(camera.WithScene(s))),
		WithFrameCallback(func(camera.Camera, culling.Culler, float32) { calls++ }),
	)

	e.Step(0.016)

	if calls != 0 {
		t.Errorf("expected no frame callbacks, got %d", calls)
	}
	if s.updates != 0 {
		t.Errorf("expected inactive scene not updated, got %d", s.updates)
	}
}

func TestStepAdvancesController(t *testing.T) {
	ctrl := camera.NewOrbitController(camera.WithRadius(10), camera.WithElevation(0), camera.WithAutoOrbit(1))
	cam := camera.NewCamera(camera.WithScene(newTestScene()), camera.WithController(ctrl))
	e := NewEngine(WithCamera(0, cam))

	before := ctrl.Azimuth()
	e.Step(0.5)

	if got := ctrl.Azimuth() - before; mgl32.Abs(got-0.5) > 1e-5 {
		t.Errorf("expected azimuth to advance by 0.5, got %v", got)
	}
	if !cam.Position().ApproxEqualThreshold(ctrl.Position(), 1e-5) {
		t.Errorf("expected camera at %v, got %v", ctrl.Position(), cam.Position())
	}
}

func TestStepFlushesDeferredReleases(t *testing.T) {
	m := assetmanager.New(assetmanager.WithDeferredRelease(true))
	a := asset.NewTextAsset("note", "hello")
	a.SetUUID("note-uuid")

	m.ReleaseManager().TryRelease(a, false)
	if got := m.ReleaseManager().Pending(); got != 1 {
		t.Fatalf("expected 1 pending release, got %d", got)
	}

	e := NewEngine(WithAssets(m))
	e.Step(0.016)

	if got := m.ReleaseManager().Pending(); got != 0 {
		t.Errorf("expected pending releases flushed, got %d", got)
	}
	if a.IsValid() {
		t.Error("expected asset destroyed by the flush")
	}
}

func TestCameraRegistry(t *testing.T) {
	e := NewEngine()
	cam := camera.NewCamera()
	e.AddCamera(3, cam)

	if e.Camera(3) != cam {
		t.Error("expected camera at key 3")
	}
	cams := e.Cameras()
	delete(cams, 3)
	if e.Camera(3) == nil {
		t.Error("expected Cameras to return a copy")
	}
	e.RemoveCamera(3)
	if e.Camera(3) != nil {
		t.Error("expected camera removed")
	}
	if e.Culler() == nil {
		t.Error("expected a default culler")
	}
}
