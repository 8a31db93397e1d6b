package release

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-runtime/engine/asset"
	"github.com/Carmen-Shannon/oxy-runtime/engine/cache"
	"github.com/Carmen-Shannon/oxy-runtime/engine/depend"
)

type fixture struct {
	assets  cache.Cache[string, asset.Asset]
	depends depend.DependUtil
}

func newFixture() *fixture {
	return &fixture{
		assets:  cache.NewCache[string, asset.Asset](),
		depends: depend.NewDependUtil(),
	}
}

// add caches a text asset under uuid with the given direct dependencies and reference count.
func (f *fixture) add(uuid string, refs int, deps ...string) *asset.TextAsset {
	a := asset.NewTextAsset(uuid, "")
	a.SetUUID(uuid)
	for i := 0; i < refs; i++ {
		a.AddRef()
	}
	f.assets.Add(uuid, a)
	f.depends.Parse(uuid, &asset.ImportData{Type: asset.TypeText, Deps: deps}, "")
	return a
}

func TestReleaseOnlyAtZeroRefs(t *testing.T) {
	f := newFixture()
	r := NewReleaseManager(f.assets, f.depends)
	a := f.add("a", 1)

	r.TryRelease(a, false)
	if !a.IsValid() {
		t.Fatal("expected a retained asset to survive a non-forced release")
	}

	r.ReleaseRef(a)
	if a.IsValid() {
		t.Fatal("expected the asset to be destroyed when its last reference is dropped")
	}
	if f.assets.Has("a") || f.depends.Has("a") {
		t.Error("expected the asset to leave the cache and dependency records")
	}

	r.ReleaseRef(a)
	if a.RefCount() != 0 {
		t.Errorf("expected refcount to stay at 0, got %d", a.RefCount())
	}
}

func TestForceReleaseCascadesToUnusedDeps(t *testing.T) {
	f := newFixture()
	r := NewReleaseManager(f.assets, f.depends)
	tex := f.add("tex", 1)
	shared := f.add("shared", 2)
	mat := f.add("mat", 3, "tex", "shared")

	r.TryRelease(mat, true)

	if mat.IsValid() {
		t.Error("expected a forced release to destroy a retained asset")
	}
	if tex.IsValid() {
		t.Error("expected tex to be released once its only owner is gone")
	}
	if !shared.IsValid() || shared.RefCount() != 1 {
		t.Errorf("expected shared to survive with 1 ref, valid=%t refs=%d", shared.IsValid(), shared.RefCount())
	}
	if f.assets.Len() != 1 {
		t.Errorf("expected only shared left in cache, got %v", f.assets.Keys())
	}
}

func TestReleaseCycleTerminates(t *testing.T) {
	f := newFixture()
	r := NewReleaseManager(f.assets, f.depends)
	a := f.add("a", 0, "b")
	b := f.add("b", 1, "a")

	r.TryRelease(a, false)
	if a.IsValid() || b.IsValid() {
		t.Error("expected both assets of the cycle to be destroyed")
	}
}

func TestDeferredReleaseWaitsForFlush(t *testing.T) {
	f := newFixture()
	var removed []string
	r := NewReleaseManager(f.assets, f.depends,
		WithDeferred(true),
		WithRemoveHook(func(a asset.Asset) { removed = append(removed, a.UUID()) }),
	)
	a := f.add("a", 0)

	r.TryRelease(a, false)
	r.TryRelease(a, false)
	if !a.IsValid() || r.Pending() != 1 {
		t.Fatalf("expected one queued release, valid=%t pending=%d", a.IsValid(), r.Pending())
	}

	r.Flush()
	if a.IsValid() || r.Pending() != 0 {
		t.Error("expected Flush to perform the queued release")
	}
	if len(removed) != 1 || removed[0] != "a" {
		t.Errorf("expected remove hook for a, got %v", removed)
	}

	b := f.add("b", 5)
	r.TryRelease(b, true)
	if b.IsValid() {
		t.Error("expected forced releases to bypass the queue")
	}
}

func TestDeferredReleaseSkipsRevivedAsset(t *testing.T) {
	f := newFixture()
	r := NewReleaseManager(f.assets, f.depends, WithDeferred(true))
	a := f.add("a", 0)

	r.TryRelease(a, false)
	a.AddRef()
	r.Flush()
	if !a.IsValid() {
		t.Error("expected an asset retained before Flush to survive")
	}
}

func TestPersistRoots(t *testing.T) {
	f := newFixture()
	r := NewReleaseManager(f.assets, f.depends)
	a := f.add("a", 0)

	r.AddPersistRoot(a)
	r.AddPersistRoot(a)
	if a.RefCount() != 1 || !r.IsPersistRoot(a) {
		t.Fatalf("expected one retain from the persist root, got %d", a.RefCount())
	}
	r.TryRelease(a, false)
	if !a.IsValid() {
		t.Fatal("expected a persistent root to survive a non-forced release")
	}

	r.RemovePersistRoot(a)
	if a.IsValid() || r.IsPersistRoot(a) {
		t.Error("expected the asset to be released with its persist root")
	}
}

func TestAutoReleaseKeepsSharedDeps(t *testing.T) {
	f := newFixture()
	r := NewReleaseManager(f.assets, f.depends)
	onlyOld := f.add("only-old", 1)
	shared := f.add("shared", 2)
	onlyNew := f.add("only-new", 1)

	oldScene := asset.NewSceneAsset("old", true)
	oldScene.SetUUID("old")
	f.depends.Parse("old", &asset.ImportData{Deps: []string{"only-old", "shared"}}, "")
	newScene := asset.NewSceneAsset("new", true)
	newScene.SetUUID("new")
	f.depends.Parse("new", &asset.ImportData{Deps: []string{"shared", "only-new"}}, "")

	r.AutoRelease(oldScene, newScene)

	if onlyOld.IsValid() {
		t.Error("expected the old scene's exclusive dependency to be released")
	}
	if !shared.IsValid() || shared.RefCount() != 1 {
		t.Errorf("expected shared to survive with 1 ref, valid=%t refs=%d", shared.IsValid(), shared.RefCount())
	}
	if !onlyNew.IsValid() {
		t.Error("expected the new scene's dependency to be untouched")
	}
	if f.depends.Has("old") || !f.depends.Has("new") {
		t.Error("expected only the old scene's dependency record to be removed")
	}
}

func TestAutoReleaseDisabledOnlyDropsRefs(t *testing.T) {
	f := newFixture()
	r := NewReleaseManager(f.assets, f.depends)
	dep := f.add("dep", 1)

	oldScene := asset.NewSceneAsset("old", false)
	oldScene.SetUUID("old")
	f.depends.Parse("old", &asset.ImportData{Deps: []string{"dep"}}, "")

	r.AutoRelease(oldScene, nil)
	if !dep.IsValid() || dep.RefCount() != 0 {
		t.Fatalf("expected dep to stay loaded with 0 refs, valid=%t refs=%d", dep.IsValid(), dep.RefCount())
	}

	r.TryRelease(dep, false)
	if dep.IsValid() {
		t.Error("expected the unused dep to be released by a later sweep")
	}
}
