package parser

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/Carmen-Shannon/oxy-runtime/engine/asset"
	"github.com/Carmen-Shannon/oxy-runtime/engine/pipeline"

	"golang.org/x/image/bmp"
)

const boxGLTF = `{
	"asset": {"version": "2.0"},
	"meshes": [
		{"name": "box", "primitives": [{"attributes": {"POSITION": 0}}, {"attributes": {"POSITION": 1}}]}
	],
	"accessors": [
		{"count": 24, "min": [-1, -1, -1], "max": [1, 1, 1]},
		{"count": 8, "min": [0, -3, 0], "max": [2, 0, 0.5]}
	]
}`

func buildGLB(t *testing.T, jsonChunk string) []byte {
	t.Helper()
	for len(jsonChunk)%4 != 0 {
		jsonChunk += " "
	}
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, glbHeader{Magic: glbMagic, Version: glbVersion, Length: uint32(12 + 8 + len(jsonChunk))})
	binary.Write(&buf, binary.LittleEndian, glbChunkHeader{ChunkLength: uint32(len(jsonChunk)), ChunkType: glbChunkJSON})
	buf.WriteString(jsonChunk)
	return buf.Bytes()
}

func TestParseImportStripsBOM(t *testing.T) {
	p := NewParser()
	file := append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{"__type__":"JSONAsset","name":"cfg","deps":["a"]}`)...)

	out, err := p.Parse("cfg", pipeline.ImportExt, file, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d, ok := out.(*asset.ImportData)
	if !ok {
		t.Fatalf("expected *asset.ImportData, got %T", out)
	}
	if d.Type != "JSONAsset" || len(d.Deps) != 1 || d.Deps[0] != "a" {
		t.Errorf("unexpected import data %+v", d)
	}
}

func TestParseUTF16Text(t *testing.T) {
	p := NewParser()
	// "hi" as UTF-16LE with a byte order mark.
	file := []byte{0xFF, 0xFE, 'h', 0, 'i', 0}
	out, err := p.Parse("t", ".txt", file, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.(string) != "hi" {
		t.Errorf("expected hi, got %q", out)
	}
}

func TestParseBundleConfig(t *testing.T) {
	p := NewParser()
	out, err := p.Parse("main", pipeline.BundleExt, []byte(`{"name":"main","deps":["resources"],"assets":{"u1":{"path":"a/b","type":"TextAsset"}}}`), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg := out.(*pipeline.BundleConfig)
	if cfg.Name != "main" || cfg.Assets["u1"].Path != "a/b" || cfg.Scenes == nil {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestParseImages(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(1, 1, color.RGBA{G: 255, A: 255})

	var pngBuf, bmpBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		t.Fatal(err)
	}
	if err := bmp.Encode(&bmpBuf, img); err != nil {
		t.Fatal(err)
	}

	p := NewParser()
	for ext, file := range map[string][]byte{".png": pngBuf.Bytes(), ".bmp": bmpBuf.Bytes()} {
		out, err := p.Parse("img", ext, file, nil)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", ext, err)
		}
		decoded := out.(image.Image)
		if decoded.Bounds().Dx() != 3 || decoded.Bounds().Dy() != 2 {
			t.Errorf("%s: expected 3x2, got %v", ext, decoded.Bounds())
		}
	}
}

func TestParseGLTFBounds(t *testing.T) {
	p := NewParser()
	for ext, file := range map[string][]byte{".gltf": []byte(boxGLTF), ".glb": buildGLB(t, boxGLTF)} {
		out, err := p.Parse("box", ext, file, nil)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", ext, err)
		}
		m := out.(*asset.MeshData)
		if m.Name != "box" || m.Primitives != 2 || m.Vertices != 32 {
			t.Errorf("%s: unexpected summary %+v", ext, m)
		}
		minV, maxV := m.Bounds.Min(), m.Bounds.Max()
		if minV[0] != -1 || minV[1] != -3 || minV[2] != -1 || maxV[0] != 2 || maxV[1] != 1 || maxV[2] != 1 {
			t.Errorf("%s: unexpected bounds %v %v", ext, minV, maxV)
		}
	}
}

func TestParseGLBRejectsBadMagic(t *testing.T) {
	file := buildGLB(t, boxGLTF)
	file[0] = 'x'
	_, err := NewParser().Parse("box", ".glb", file, nil)
	if !errors.Is(err, pipeline.ErrParse) || !errors.Is(err, errInvalidGLBMagic) {
		t.Errorf("expected ErrParse wrapping bad magic, got %v", err)
	}
}

func TestParseErrorsAreLoadErrors(t *testing.T) {
	p := NewParser()
	cases := map[string][]byte{
		pipeline.ImportExt: []byte(`{"name":"x"}`),
		".json":            []byte(`{`),
		".png":             []byte("not an image"),
		".ttf":             []byte("not a font"),
	}
	for key, file := range cases {
		_, err := p.Parse("bad", key, file, nil)
		var le *pipeline.LoadError
		if !errors.As(err, &le) || le.ID != "bad" || !errors.Is(err, pipeline.ErrParse) {
			t.Errorf("%s: expected ErrParse LoadError, got %v", key, err)
		}
	}
}

func TestUnknownKeyPassesBytesThrough(t *testing.T) {
	p := NewParser()
	out, err := p.Parse("x", ".dat", []byte{1, 2, 3}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b, ok := out.([]byte); !ok || len(b) != 3 {
		t.Errorf("expected raw bytes, got %v", out)
	}

	p.Register(".dat", HandlerFunc(func(file []byte, _ *pipeline.Options) (any, error) {
		return len(file), nil
	}))
	out, _ = p.Parse("x", ".dat", []byte{1, 2, 3}, nil)
	if out.(int) != 3 {
		t.Errorf("expected registered handler to run, got %v", out)
	}
}
