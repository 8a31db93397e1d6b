package asset

import (
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-runtime/common"
	"github.com/Carmen-Shannon/oxy-runtime/engine/gfx"
)

type fakeTexture struct {
	w, h     uint32
	released int
}

func (f *fakeTexture) Width() uint32  { return f.w }
func (f *fakeTexture) Height() uint32 { return f.h }
func (f *fakeTexture) Release()       { f.released++ }

type fakeUploader struct {
	mu       sync.Mutex
	uploaded []*fakeTexture
	err      error
}

func (u *fakeUploader) UploadTexture(label string, data common.TextureStagingData) (gfx.Texture, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return nil, u.err
	}
	tex := &fakeTexture{w: data.Width, h: data.Height}
	u.uploaded = append(u.uploaded, tex)
	return tex, nil
}

func solidImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	return img
}

func TestBaseDestroyOnlyOnce(t *testing.T) {
	b := NewBase("a")
	b.SetUUID("u1")
	if err := b.SetNativeAsset([]byte{1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b.SetLoaded(true)

	if !b.Destroy() {
		t.Fatal("expected first Destroy to report true")
	}
	if b.Destroy() {
		t.Error("expected second Destroy to report false")
	}
	if b.IsValid() {
		t.Error("expected destroyed asset to be invalid")
	}
	if b.NativeAsset() != nil || b.Loaded() {
		t.Error("expected Destroy to clear the native payload and loaded flag")
	}
}

func TestBaseRefCountNeverNegative(t *testing.T) {
	b := NewBase("a")
	b.DecRef()
	if b.RefCount() != 0 {
		t.Fatalf("expected 0, got %d", b.RefCount())
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.AddRef()
		}()
	}
	wg.Wait()
	for i := 0; i < 60; i++ {
		b.DecRef()
	}
	if b.RefCount() != 0 {
		t.Errorf("expected 0 after over-release, got %d", b.RefCount())
	}
}

func TestAddRefOnDestroyedPanics(t *testing.T) {
	b := NewBase("a")
	b.Destroy()
	defer func() {
		if recover() == nil {
			t.Error("expected AddRef on a destroyed asset to panic")
		}
	}()
	b.AddRef()
}

func TestTryAddRefSkipsDestroyedAsset(t *testing.T) {
	b := NewBase("a")
	if !b.TryAddRef() || b.RefCount() != 1 {
		t.Fatalf("expected a retain on a live asset, got %d", b.RefCount())
	}
	b.Destroy()
	if b.TryAddRef() {
		t.Error("expected TryAddRef on a destroyed asset to fail")
	}
	if b.RefCount() != 1 {
		t.Errorf("expected the count to stay at 1, got %d", b.RefCount())
	}
}

func TestTexture2DUploadsImageDependency(t *testing.T) {
	up := &fakeUploader{}
	img, err := NewImageAsset("img", solidImage(4, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	img.SetUUID("img-uuid")

	tex := NewTexture2D("tex", up)
	tex.SetUUID("tex-uuid")
	if err := tex.SetDependencies(map[string]Asset{"img-uuid": img}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tex.Width() != 4 || tex.Height() != 2 {
		t.Errorf("expected 4x2, got %dx%d", tex.Width(), tex.Height())
	}
	if len(up.uploaded) != 1 {
		t.Fatalf("expected 1 upload, got %d", len(up.uploaded))
	}
	if got := len(img.Data().Pixels); got != 4*2*4 {
		t.Errorf("expected 32 bytes of pixels, got %d", got)
	}

	if !tex.Destroy() {
		t.Fatal("expected Destroy to report true")
	}
	if up.uploaded[0].released != 1 {
		t.Errorf("expected the GPU texture to be released once, got %d", up.uploaded[0].released)
	}
	tex.Destroy()
	if up.uploaded[0].released != 1 {
		t.Errorf("expected second Destroy to be a no-op, got %d releases", up.uploaded[0].released)
	}
}

func TestTexture2DUploadError(t *testing.T) {
	boom := errors.New("out of memory")
	tex := NewTexture2D("tex", &fakeUploader{err: boom})
	if err := tex.SetNativeAsset(solidImage(1, 1)); !errors.Is(err, boom) {
		t.Errorf("expected upload error, got %v", err)
	}
}

func TestNativePayloadTypeChecks(t *testing.T) {
	if err := NewFontAsset("f", nil).SetNativeAsset("not a face"); err == nil {
		t.Error("expected font asset to reject a string payload")
	}
	if err := NewTextAsset("t", "").SetNativeAsset(42); err == nil {
		t.Error("expected text asset to reject an int payload")
	}
	if err := NewMeshAsset("m", common.AABB{}).SetNativeAsset([]byte{}); err == nil {
		t.Error("expected mesh asset to reject a byte payload")
	}
	if err := NewBufferAsset("b", nil).SetNativeAsset([]byte{1, 2}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRegistryDeserialize(t *testing.T) {
	r := NewRegistry()

	d, err := DecodeImportData([]byte(`{"__type__":"TextAsset","name":"readme","content":"hello"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, err := r.Deserialize(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text, ok := a.(*TextAsset)
	if !ok {
		t.Fatalf("expected *TextAsset, got %T", a)
	}
	if text.Text() != "hello" || text.Name() != "readme" {
		t.Errorf("unexpected text asset %q %q", text.Name(), text.Text())
	}

	d, _ = DecodeImportData([]byte(`{"__type__":"Mesh","name":"box","content":{"min":[-1,-2,-3],"max":[1,2,3]}}`))
	a, err = r.Deserialize(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := a.(*MeshAsset).Bounds().HalfExtents; got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("expected half extents (1,2,3), got %v", got)
	}

	d, _ = DecodeImportData([]byte(`{"__type__":"SceneAsset","name":"level","autoRelease":true}`))
	a, _ = r.Deserialize(d)
	if !a.(*SceneAsset).AutoReleaseAssets() {
		t.Error("expected scene to carry the autoRelease flag")
	}
}

func TestRegistryUnknownType(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Deserialize(&ImportData{Type: "cc.Prefab"}); err == nil {
		t.Error("expected unknown type to fail")
	}
	r.Register("cc.Prefab", func(d *ImportData) (Asset, error) {
		return NewJSONAsset(d.Name, nil), nil
	})
	if _, err := r.Deserialize(&ImportData{Type: "cc.Prefab"}); err != nil {
		t.Errorf("unexpected error after Register: %v", err)
	}
}

func TestDecodeImportDataRequiresType(t *testing.T) {
	if _, err := DecodeImportData([]byte(`{"name":"x"}`)); err == nil {
		t.Error("expected missing __type__ to fail")
	}
	if _, err := DecodeImportData([]byte(`{`)); err == nil {
		t.Error("expected malformed json to fail")
	}
}
