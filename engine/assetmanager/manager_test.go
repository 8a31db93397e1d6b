package assetmanager

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-runtime/engine/asset"
	"github.com/Carmen-Shannon/oxy-runtime/engine/downloader"
	"github.com/Carmen-Shannon/oxy-runtime/engine/pipeline"
)

// counter records how often each url was downloaded.
type counter struct {
	mu    sync.Mutex
	calls map[string]int
}

func (c *counter) handler() downloader.Handler {
	return downloader.HandlerFunc(func(_ context.Context, url string, _ *pipeline.Options) ([]byte, error) {
		c.mu.Lock()
		c.calls[url]++
		c.mu.Unlock()
		return os.ReadFile(url)
	})
}

func (c *counter) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

// fixture is an assets root on disk plus a manager serving it.
type fixture struct {
	t       *testing.T
	root    string
	count   *counter
	manager AssetManager
}

func newFixture(t *testing.T, force bool, opts ...AssetManagerBuilderOption) *fixture {
	t.Helper()
	f := &fixture{t: t, root: t.TempDir(), count: &counter{calls: map[string]int{}}}
	h := f.count.handler()
	base := []AssetManagerBuilderOption{
		WithLogger(log.New(io.Discard, "", 0)),
		WithConfig(Config{AssetsRoot: f.root, Force: force, Editor: true}),
		WithDownloaderOptions(
			downloader.WithMaxRetryCount(0),
			downloader.WithRetryInterval(time.Millisecond),
			downloader.WithFrameInterval(time.Millisecond),
			downloader.WithHandler(".json", h),
			downloader.WithHandler(".txt", h),
		),
	}
	f.manager = New(append(base, opts...)...)
	t.Cleanup(f.manager.Close)
	return f
}

func (f *fixture) write(rel string, data []byte) string {
	f.t.Helper()
	p := filepath.Join(f.root, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		f.t.Fatal(err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		f.t.Fatal(err)
	}
	return p
}

func (f *fixture) bundle(cfg pipeline.BundleConfig) {
	f.t.Helper()
	data, err := json.Marshal(cfg)
	if err != nil {
		f.t.Fatal(err)
	}
	f.write(filepath.Join(cfg.Name, "config.json"), data)
}

func (f *fixture) importFile(bundle, uuid string, d asset.ImportData) {
	f.t.Helper()
	data, err := json.Marshal(d)
	if err != nil {
		f.t.Fatal(err)
	}
	f.write(filepath.Join(bundle, DefaultImportBase, uuid[:2], uuid+".json"), data)
}

func (f *fixture) nativeFile(bundle, uuid, ext, content string) {
	f.write(filepath.Join(bundle, DefaultNativeBase, uuid[:2], uuid+ext), []byte(content))
}

func (f *fixture) loadBundle(name string) Bundle {
	f.t.Helper()
	out, err := f.manager.LoadBundle(name, nil, nil).Wait(context.Background())
	if err != nil {
		f.t.Fatalf("expected bundle %s to load, got %v", name, err)
	}
	return out[0].(Bundle)
}

func text(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}

func textAsset(deps ...string) asset.ImportData {
	return asset.ImportData{Type: asset.TypeText, Content: text("x"), Deps: deps}
}

// mainBundle writes a bundle where a1 depends on b1 and c1, and b1 depends on c1.
func (f *fixture) mainBundle() Bundle {
	f.bundle(pipeline.BundleConfig{
		Name: BundleMain,
		Assets: map[string]pipeline.BundleAssetEntry{
			"a1": {Path: "a", Type: asset.TypeText},
			"b1": {Path: "b", Type: asset.TypeText},
			"c1": {Path: "dir/c", Type: asset.TypeText},
		},
	})
	f.importFile(BundleMain, "a1", textAsset("b1", "c1"))
	f.importFile(BundleMain, "b1", textAsset("c1"))
	f.importFile(BundleMain, "c1", textAsset())
	return f.loadBundle(BundleMain)
}

func TestLoadResolvesDependenciesAndCountsReferences(t *testing.T) {
	f := newFixture(t, false)
	f.mainBundle()

	out, err := f.manager.Load(context.Background(), pipeline.UUIDs("a1"), nil)
	if err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}
	a, ok := out[0].(*asset.TextAsset)
	if !ok || !a.Loaded() {
		t.Fatalf("expected a loaded text asset, got %T", out[0])
	}

	b, _ := f.manager.Assets().Get("b1")
	c, _ := f.manager.Assets().Get("c1")
	if b == nil || c == nil {
		t.Fatal("expected dependencies to be cached")
	}
	if b.RefCount() != 1 {
		t.Errorf("expected b1 to be held once, got %d", b.RefCount())
	}
	if c.RefCount() != 2 {
		t.Errorf("expected c1 to be held twice, got %d", c.RefCount())
	}
	if a.RefCount() != 0 {
		t.Errorf("expected the root to hold no references, got %d", a.RefCount())
	}
	if f.manager.Files().Len() != 0 || f.manager.Parsed().Len() != 0 {
		t.Error("expected intermediate caches to be empty after load")
	}
}

func TestConcurrentLoadsDownloadOnce(t *testing.T) {
	f := newFixture(t, false)
	f.mainBundle()

	var wg sync.WaitGroup
	results := make([]any, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := f.manager.Load(context.Background(), pipeline.UUIDs("c1"), nil)
			if err != nil {
				t.Errorf("expected load to succeed, got %v", err)
				return
			}
			results[i] = out[0]
		}()
	}
	wg.Wait()

	if n := f.count.total(); n != 1 {
		t.Errorf("expected 1 download, got %d", n)
	}
	for i := 1; i < len(results); i++ {
		if results[i] != results[0] {
			t.Fatal("expected every caller to receive the same asset")
		}
	}
}

func TestCachedAssetSkipsDownloadUnlessReloaded(t *testing.T) {
	f := newFixture(t, false)
	f.mainBundle()

	first, err := f.manager.Load(context.Background(), pipeline.UUIDs("c1"), nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.manager.Load(context.Background(), pipeline.UUIDs("c1"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if first[0] != second[0] || f.count.total() != 1 {
		t.Errorf("expected a cache hit without download, got %d downloads", f.count.total())
	}

	third, err := f.manager.Load(context.Background(), pipeline.UUIDs("c1"), &pipeline.Options{ReloadAsset: true})
	if err != nil {
		t.Fatal(err)
	}
	if third[0] == first[0] {
		t.Error("expected reload to build a new asset")
	}
	if n := f.count.total(); n != 2 {
		t.Errorf("expected 2 downloads, got %d", n)
	}
}

func TestFailureAbortsTaskWithoutForce(t *testing.T) {
	f := newFixture(t, false)
	f.mainBundle()
	os.Remove(filepath.Join(f.root, BundleMain, DefaultImportBase, "b1", "b1.json"))

	var calls int
	var gotErr error
	task := f.manager.LoadAny(pipeline.UUIDs("c1", "b1", "a1"), nil, nil, func(err error, data []any) {
		calls++
		gotErr = err
		if data != nil {
			t.Error("expected no data on failure")
		}
	})
	if _, err := task.Wait(context.Background()); !errors.Is(err, pipeline.ErrDownload) {
		t.Fatalf("expected a download error, got %v", err)
	}
	if calls != 1 || gotErr == nil {
		t.Errorf("expected one failing completion, got %d", calls)
	}
}

func TestForceModeLeavesFailedSlotsEmpty(t *testing.T) {
	f := newFixture(t, true)
	f.mainBundle()
	os.Remove(filepath.Join(f.root, BundleMain, DefaultImportBase, "b1", "b1.json"))

	out, err := f.manager.Load(context.Background(), pipeline.UUIDs("c1", "b1", "a1"), nil)
	if err != nil {
		t.Fatalf("expected force mode to complete without error, got %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 results, got %d", len(out))
	}
	if out[0] == nil {
		t.Error("expected c1 to load")
	}
	if out[1] != nil {
		t.Errorf("expected a nil slot for b1, got %v", out[1])
	}
	if out[2] == nil {
		t.Error("expected a1 to load with its missing dependency skipped")
	}
}

func TestPreloadThenLoadReusesFiles(t *testing.T) {
	f := newFixture(t, false)
	f.mainBundle()

	if _, err := f.manager.Preload(context.Background(), pipeline.UUIDs("a1"), nil); err != nil {
		t.Fatalf("expected preload to succeed, got %v", err)
	}
	if f.manager.Assets().Len() != 0 {
		t.Error("expected preload to build nothing")
	}
	if n := f.count.total(); n != 3 {
		t.Fatalf("expected 3 downloads, got %d", n)
	}

	if _, err := f.manager.Load(context.Background(), pipeline.UUIDs("a1"), nil); err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}
	if n := f.count.total(); n != 3 {
		t.Errorf("expected no further downloads, got %d", n)
	}
	if f.manager.Parsed().Len() != 0 {
		t.Errorf("expected the parsed cache to drain, got %d", f.manager.Parsed().Len())
	}
}

func TestLoadByPathDirAndScene(t *testing.T) {
	f := newFixture(t, false)
	f.bundle(pipeline.BundleConfig{
		Name: BundleResources,
		Assets: map[string]pipeline.BundleAssetEntry{
			"d1": {Path: "ui/one", Type: asset.TypeText},
			"d2": {Path: "ui/two", Type: asset.TypeText},
			"s1": {Path: "levels/intro", Type: asset.TypeScene},
		},
		Scenes: map[string]string{"levels/intro": "s1"},
	})
	f.importFile(BundleResources, "d1", textAsset())
	f.importFile(BundleResources, "d2", textAsset())
	f.importFile(BundleResources, "s1", asset.ImportData{Type: asset.TypeScene, Deps: []string{"d1"}})
	b := f.loadBundle(BundleResources)

	out, err := b.Load("ui/two", "", nil, nil, nil).Wait(context.Background())
	if err != nil || out[0].(asset.Asset).UUID() != "d2" {
		t.Fatalf("expected d2 by path, got %v %v", out, err)
	}
	if b.Get("ui/two", "") != out[0] {
		t.Error("expected the bundle to track the loaded asset")
	}

	out, err = b.LoadDir("ui", asset.TypeText, nil, nil, nil).Wait(context.Background())
	if err != nil || len(out) != 2 {
		t.Fatalf("expected 2 assets in ui, got %d %v", len(out), err)
	}

	out, err = b.LoadScene("intro", nil, nil, nil).Wait(context.Background())
	if err != nil {
		t.Fatalf("expected the scene to load, got %v", err)
	}
	if _, ok := out[0].(*asset.SceneAsset); !ok {
		t.Errorf("expected a scene asset, got %T", out[0])
	}

	if _, err := b.Load("missing", "", nil, nil, nil).Wait(context.Background()); !errors.Is(err, pipeline.ErrUnknownRequest) {
		t.Errorf("expected an unknown request error, got %v", err)
	}
}

func TestCyclicDependencyFails(t *testing.T) {
	f := newFixture(t, false)
	f.bundle(pipeline.BundleConfig{
		Name: BundleMain,
		Assets: map[string]pipeline.BundleAssetEntry{
			"x1": {Path: "x", Type: asset.TypeText},
			"y1": {Path: "y", Type: asset.TypeText},
		},
	})
	f.importFile(BundleMain, "x1", textAsset("y1"))
	f.importFile(BundleMain, "y1", textAsset("x1"))
	f.loadBundle(BundleMain)

	_, err := f.manager.Load(context.Background(), pipeline.UUIDs("x1"), nil)
	if !errors.Is(err, pipeline.ErrCyclicDependency) {
		t.Errorf("expected a cyclic dependency error, got %v", err)
	}
}

func TestProgressIsMonotonic(t *testing.T) {
	f := newFixture(t, false)
	f.mainBundle()

	var mu sync.Mutex
	var seen [][2]int
	task := f.manager.LoadAny(pipeline.UUIDs("a1"), nil, func(finished, total int, _ *pipeline.RequestItem) {
		mu.Lock()
		seen = append(seen, [2]int{finished, total})
		mu.Unlock()
	}, nil)
	if _, err := task.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) == 0 {
		t.Fatal("expected progress callbacks")
	}
	for i, s := range seen {
		if s[0] > s[1] {
			t.Errorf("expected finished <= total, got %d/%d", s[0], s[1])
		}
		if i > 0 && s[0] < seen[i-1][0] {
			t.Errorf("expected finished to never decrease, got %d after %d", s[0], seen[i-1][0])
		}
	}
	finished, total := task.Counts()
	if finished != total {
		t.Errorf("expected every item to settle, got %d/%d", finished, total)
	}
}

func TestLoadRemoteCachesByURL(t *testing.T) {
	f := newFixture(t, false)
	p := f.write("remote/hello.txt", []byte("hello"))

	out, err := f.manager.LoadRemote(p, nil, nil).Wait(context.Background())
	if err != nil {
		t.Fatalf("expected remote load to succeed, got %v", err)
	}
	a, ok := out[0].(*asset.TextAsset)
	if !ok || a.Text() != "hello" {
		t.Fatalf("expected text hello, got %#v", out[0])
	}
	if cached, _ := f.manager.Assets().Get(p); cached != a {
		t.Error("expected the asset to be cached under its url")
	}

	again, err := f.manager.LoadRemote(p, nil, nil).Wait(context.Background())
	if err != nil || again[0] != a {
		t.Errorf("expected the cached asset, got %v %v", again, err)
	}
	if n := f.count.total(); n != 1 {
		t.Errorf("expected 1 download, got %d", n)
	}
}

func TestLoadBundleLoadsDependenciesFirst(t *testing.T) {
	f := newFixture(t, false)
	f.bundle(pipeline.BundleConfig{Name: "common"})
	f.bundle(pipeline.BundleConfig{Name: "level", Deps: []string{"common"}})

	b := f.loadBundle("level")
	if f.manager.GetBundle("common") == nil {
		t.Error("expected the dependency bundle to be loaded")
	}
	if again := f.loadBundle("level"); again != b {
		t.Error("expected the cached bundle on a second load")
	}

	f.manager.RemoveBundle(b)
	if f.manager.GetBundle("level") != nil {
		t.Error("expected the bundle to be forgotten")
	}
}

func TestLoadBundleRejectsCycles(t *testing.T) {
	f := newFixture(t, false)
	f.bundle(pipeline.BundleConfig{Name: "p", Deps: []string{"q"}})
	f.bundle(pipeline.BundleConfig{Name: "q", Deps: []string{"p"}})

	_, err := f.manager.LoadBundle("p", nil, nil).Wait(context.Background())
	if !errors.Is(err, pipeline.ErrCyclicDependency) {
		t.Errorf("expected a cyclic dependency error, got %v", err)
	}
}

func TestRemovedBundleRejectsLoads(t *testing.T) {
	f := newFixture(t, false)
	b := f.mainBundle()

	out, err := b.Load("a", "", nil, nil, nil).Wait(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	a := out[0].(asset.Asset)

	f.manager.RemoveBundle(b)
	if a.IsValid() {
		t.Error("expected the bundle's assets to be destroyed")
	}
	if _, err := b.Load("a", "", nil, nil, nil).Wait(context.Background()); !errors.Is(err, pipeline.ErrInvalidAssetState) {
		t.Errorf("expected an invalid state error, got %v", err)
	}
}

func TestPostLoadNative(t *testing.T) {
	f := newFixture(t, false)
	f.bundle(pipeline.BundleConfig{
		Name:   BundleMain,
		Assets: map[string]pipeline.BundleAssetEntry{"n1": {Path: "n", Type: asset.TypeText}},
	})
	f.importFile(BundleMain, "n1", asset.ImportData{Type: asset.TypeText, Native: ".txt", AsyncNative: true})
	f.nativeFile(BundleMain, "n1", ".txt", "payload")
	f.loadBundle(BundleMain)

	out, err := f.manager.Load(context.Background(), pipeline.UUIDs("n1"), nil)
	if err != nil {
		t.Fatal(err)
	}
	a := out[0].(*asset.TextAsset)
	if !a.NativeDepend() || a.Text() != "" {
		t.Fatalf("expected the native payload to be pending, got %q", a.Text())
	}

	if _, err := f.manager.PostLoadNative(a, nil, nil).Wait(context.Background()); err != nil {
		t.Fatalf("expected the native payload to load, got %v", err)
	}
	if a.NativeDepend() || a.Text() != "payload" {
		t.Errorf("expected text payload, got %q", a.Text())
	}

	f.manager.ReleaseAsset(a)
	if _, err := f.manager.PostLoadNative(a, nil, nil).Wait(context.Background()); !errors.Is(err, pipeline.ErrInvalidAssetState) {
		t.Errorf("expected an invalid state error, got %v", err)
	}
}

func TestNativePayloadLoadsWithAsset(t *testing.T) {
	f := newFixture(t, false)
	f.bundle(pipeline.BundleConfig{
		Name:   BundleMain,
		Assets: map[string]pipeline.BundleAssetEntry{"n2": {Path: "n", Type: asset.TypeText, NativeVer: "v2"}},
	})
	f.importFile(BundleMain, "n2", asset.ImportData{Type: asset.TypeText, Native: ".txt"})
	f.write(filepath.Join(BundleMain, DefaultNativeBase, "n2", "n2.v2.txt"), []byte("versioned"))
	f.loadBundle(BundleMain)

	out, err := f.manager.Load(context.Background(), pipeline.UUIDs("n2"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := out[0].(*asset.TextAsset).Text(); got != "versioned" {
		t.Errorf("expected versioned, got %q", got)
	}
}

func TestLoadWithJSON(t *testing.T) {
	f := newFixture(t, false)
	data, _ := json.Marshal(asset.ImportData{Type: asset.TypeText, Content: text("inline")})

	out, err := f.manager.LoadWithJSON(data, &pipeline.Options{AssetID: "inline"}, nil, nil).Wait(context.Background())
	if err != nil {
		t.Fatalf("expected inline load to succeed, got %v", err)
	}
	if got := out[0].(*asset.TextAsset).Text(); got != "inline" {
		t.Errorf("expected inline, got %q", got)
	}
	if f.manager.Assets().Has("inline") {
		t.Error("expected inline assets to stay out of the cache")
	}

	f.manager.Init(Config{AssetsRoot: f.root})
	defer func() {
		if recover() == nil {
			t.Error("expected LoadWithJSON to panic outside editor mode")
		}
	}()
	f.manager.LoadWithJSON(data, nil, nil, nil)
}

func TestReservedOptionKeysPanic(t *testing.T) {
	f := newFixture(t, false)
	defer func() {
		if recover() == nil {
			t.Error("expected a reserved option key to panic")
		}
	}()
	f.manager.LoadAny(pipeline.UUIDs("a1"), &pipeline.Options{Custom: map[string]any{"preset": "x"}}, nil, nil)
}

func TestReplaceSceneReleasesExclusiveDependencies(t *testing.T) {
	f := newFixture(t, false)
	f.bundle(pipeline.BundleConfig{
		Name: BundleMain,
		Assets: map[string]pipeline.BundleAssetEntry{
			"s1": {Type: asset.TypeScene},
			"s2": {Type: asset.TypeScene},
			"e1": {Type: asset.TypeText},
			"sh": {Type: asset.TypeText},
		},
	})
	f.importFile(BundleMain, "s1", asset.ImportData{Type: asset.TypeScene, AutoRelease: true, Deps: []string{"e1", "sh"}})
	f.importFile(BundleMain, "s2", asset.ImportData{Type: asset.TypeScene, Deps: []string{"sh"}})
	f.importFile(BundleMain, "e1", textAsset())
	f.importFile(BundleMain, "sh", textAsset())
	f.loadBundle(BundleMain)

	out, err := f.manager.Load(context.Background(), pipeline.UUIDs("s1"), nil)
	if err != nil {
		t.Fatal(err)
	}
	s1 := out[0].(*asset.SceneAsset)
	f.manager.ReplaceScene(s1)

	out, err = f.manager.Load(context.Background(), pipeline.UUIDs("s2"), nil)
	if err != nil {
		t.Fatal(err)
	}
	s2 := out[0].(*asset.SceneAsset)
	exclusive, _ := f.manager.Assets().Get("e1")
	shared, _ := f.manager.Assets().Get("sh")

	f.manager.ReplaceScene(s2)
	if exclusive.IsValid() {
		t.Error("expected the exclusive dependency to be released")
	}
	if !shared.IsValid() || shared.RefCount() != 1 {
		t.Errorf("expected the shared dependency to survive with 1 reference, got %d", shared.RefCount())
	}
}

// fragileAsset is destroyed by the first attempt to retain it.
type fragileAsset struct {
	*asset.TextAsset
}

func (a fragileAsset) TryAddRef() bool {
	a.Destroy()
	return a.TextAsset.TryAddRef()
}

func TestDestroyedDependencyFailsBuild(t *testing.T) {
	f := newFixture(t, false, WithRegistryOptions(
		asset.WithConstructor("fragile", func(*asset.ImportData) (asset.Asset, error) {
			return fragileAsset{asset.NewTextAsset("fragile", "x")}, nil
		}),
	))
	f.bundle(pipeline.BundleConfig{
		Name: BundleMain,
		Assets: map[string]pipeline.BundleAssetEntry{
			"b1": {Path: "b", Type: asset.TypeText},
			"f1": {Path: "f", Type: "fragile"},
			"p1": {Path: "p", Type: asset.TypeText},
		},
	})
	f.importFile(BundleMain, "b1", textAsset())
	f.importFile(BundleMain, "f1", asset.ImportData{Type: "fragile"})
	f.importFile(BundleMain, "p1", textAsset("b1", "f1"))
	f.loadBundle(BundleMain)

	_, err := f.manager.Load(context.Background(), pipeline.UUIDs("p1"), nil)
	if !errors.Is(err, pipeline.ErrInvalidAssetState) {
		t.Fatalf("expected an invalid state error, got %v", err)
	}
	b, _ := f.manager.Assets().Get("b1")
	if b == nil || b.RefCount() != 0 {
		t.Errorf("expected the retain on b1 to be dropped again, got %v", b)
	}
	if f.manager.Assets().Has("p1") {
		t.Error("expected the failed asset to stay out of the cache")
	}
}

func TestPanickingConstructorFailsLoad(t *testing.T) {
	f := newFixture(t, false, WithRegistryOptions(
		asset.WithConstructor("broken", func(*asset.ImportData) (asset.Asset, error) {
			panic("corrupt payload")
		}),
	))
	f.bundle(pipeline.BundleConfig{
		Name:   BundleMain,
		Assets: map[string]pipeline.BundleAssetEntry{"x1": {Path: "x", Type: "broken"}},
	})
	f.importFile(BundleMain, "x1", asset.ImportData{Type: "broken"})
	f.loadBundle(BundleMain)

	_, err := f.manager.Load(context.Background(), pipeline.UUIDs("x1"), nil)
	if !errors.Is(err, pipeline.ErrInvalidAssetState) {
		t.Errorf("expected the panic to surface as an error, got %v", err)
	}
}

func TestCacheAssetKeepsFirstLiveAsset(t *testing.T) {
	f := newFixture(t, false)
	m := f.manager.(*managerImpl)
	first := asset.NewTextAsset("first", "1")
	second := asset.NewTextAsset("second", "2")

	if got, ok := m.cacheAsset("t1", first, false); !ok || got != first {
		t.Fatal("expected the first insert to be recorded")
	}
	if got, ok := m.cacheAsset("t1", second, false); ok || got != first {
		t.Errorf("expected the live asset to win, got %v", got)
	}
	if got, ok := m.cacheAsset("t1", second, true); !ok || got != second {
		t.Error("expected a reload to replace the entry")
	}

	second.Destroy()
	third := asset.NewTextAsset("third", "3")
	if got, ok := m.cacheAsset("t1", third, false); !ok || got != third {
		t.Error("expected a destroyed entry to be replaced")
	}
}

func TestReloadUsesSeparateFlight(t *testing.T) {
	plain := &pipeline.RequestItem{ID: "a1", Options: &pipeline.Options{}}
	reload := &pipeline.RequestItem{ID: "a1", Options: &pipeline.Options{ReloadAsset: true}}
	if flightKey("load", plain) == flightKey("load", reload) {
		t.Errorf("expected distinct flight keys, got %s", flightKey("load", plain))
	}
}

func TestReloadReplacesDependencyRecord(t *testing.T) {
	f := newFixture(t, false)
	f.mainBundle()

	if _, err := f.manager.Load(context.Background(), pipeline.UUIDs("a1"), nil); err != nil {
		t.Fatal(err)
	}
	f.importFile(BundleMain, "a1", textAsset("c1"))
	if _, err := f.manager.Load(context.Background(), pipeline.UUIDs("a1"), &pipeline.Options{ReloadAsset: true}); err != nil {
		t.Fatal(err)
	}
	if deps := f.manager.DependUtil().GetDeps("a1"); len(deps) != 1 || deps[0] != "c1" {
		t.Errorf("expected [c1] after reload, got %v", deps)
	}
}
