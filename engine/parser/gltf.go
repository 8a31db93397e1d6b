package parser

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Carmen-Shannon/oxy-runtime/common"
	"github.com/Carmen-Shannon/oxy-runtime/engine/asset"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	errInvalidGLTFVersion = errors.New("invalid glTF version: must be 2.0")
	errInvalidGLBMagic    = errors.New("invalid GLB magic number")
	errInvalidGLBVersion  = errors.New("invalid GLB version: must be 2")
	errMissingJSONChunk   = errors.New("GLB file missing JSON chunk")
	errMissingPosition    = errors.New("glTF file has no POSITION bounds")
)

// GLB framing constants.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
const (
	glbMagic     = 0x46546C67 // "glTF"
	glbVersion   = 2
	glbChunkJSON = 0x4E4F534A // "JSON"
)

type glbHeader struct {
	Magic   uint32
	Version uint32
	Length  uint32
}

type glbChunkHeader struct {
	ChunkLength uint32
	ChunkType   uint32
}

// gltfBoundsDocument is the subset of a glTF document needed to compute mesh bounds.
// Position accessors are required to carry min and max, so no buffer data is read.
type gltfBoundsDocument struct {
	Asset struct {
		Version string `json:"version"`
	} `json:"asset"`
	Meshes []struct {
		Name       string `json:"name,omitempty"`
		Primitives []struct {
			Attributes map[string]int `json:"attributes"`
		} `json:"primitives"`
	} `json:"meshes"`
	Accessors []struct {
		Count int       `json:"count"`
		Min   []float32 `json:"min,omitempty"`
		Max   []float32 `json:"max,omitempty"`
	} `json:"accessors"`
}

// parseGLB extracts the JSON chunk of a binary glTF file and summarizes it.
func parseGLB(data []byte) (*asset.MeshData, error) {
	if len(data) < 12 {
		return nil, errors.New("GLB file too small")
	}
	r := bytes.NewReader(data)

	var header glbHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read GLB header: %w", err)
	}
	if header.Magic != glbMagic {
		return nil, errInvalidGLBMagic
	}
	if header.Version != glbVersion {
		return nil, errInvalidGLBVersion
	}

	for {
		var ch glbChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &ch); err != nil {
			if err == io.EOF {
				return nil, errMissingJSONChunk
			}
			return nil, fmt.Errorf("failed to read chunk header: %w", err)
		}
		chunk := make([]byte, ch.ChunkLength)
		if _, err := io.ReadFull(r, chunk); err != nil {
			return nil, fmt.Errorf("failed to read chunk data: %w", err)
		}
		if ch.ChunkType == glbChunkJSON {
			return parseGLTF(chunk)
		}
	}
}

// parseGLTF summarizes a glTF JSON document: mesh and vertex counts plus the union of
// every primitive's POSITION bounds.
func parseGLTF(data []byte) (*asset.MeshData, error) {
	var doc gltfBoundsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse glTF JSON: %w", err)
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return nil, errInvalidGLTFVersion
	}

	out := &asset.MeshData{}
	var minV, maxV mgl32.Vec3
	found := false
	for _, m := range doc.Meshes {
		if out.Name == "" {
			out.Name = m.Name
		}
		for _, prim := range m.Primitives {
			out.Primitives++
			idx, ok := prim.Attributes["POSITION"]
			if !ok || idx < 0 || idx >= len(doc.Accessors) {
				continue
			}
			acc := doc.Accessors[idx]
			out.Vertices += acc.Count
			if len(acc.Min) != 3 || len(acc.Max) != 3 {
				continue
			}
			lo := mgl32.Vec3{acc.Min[0], acc.Min[1], acc.Min[2]}
			hi := mgl32.Vec3{acc.Max[0], acc.Max[1], acc.Max[2]}
			if !found {
				minV, maxV, found = lo, hi, true
				continue
			}
			for i := 0; i < 3; i++ {
				minV[i] = min(minV[i], lo[i])
				maxV[i] = max(maxV[i], hi[i])
			}
		}
	}
	if !found {
		return nil, errMissingPosition
	}
	out.Bounds = common.NewAABBFromMinMax(minV, maxV)
	return out, nil
}
