package light

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxGPULights is the maximum number of lights marshaled into the light buffer per
// camera per frame.
const MaxGPULights = 1024

// UBOShadow float offsets. Matrices take 16 floats, vectors 4.
const (
	UBOShadowMatLightPlaneProjOffset      = 0
	UBOShadowMatLightInvProjOffset        = 16
	UBOShadowMatLightViewProjOffset       = 32
	UBOShadowNearFarLinearSelfInfoOffset  = 48
	UBOShadowWidthHeightPCFBiasInfoOffset = 52
	UBOShadowColorOffset                  = 56
	UBOShadowCount                        = 60
	UBOShadowSize                         = UBOShadowCount * 4
)

// UBOShadow is the CPU copy of the shadow uniform block. Ranges are written by the
// culling pass and uploaded by the renderer with Marshal.
type UBOShadow [UBOShadowCount]float32

// SetMat4 writes a column-major matrix at offset.
//
// Parameters:
//   - offset: one of the UBOShadow*Offset matrix constants
//   - m: the matrix
func (u *UBOShadow) SetMat4(offset int, m mgl32.Mat4) {
	copy(u[offset:offset+16], m[:])
}

// SetVec4 writes a vector at offset.
//
// Parameters:
//   - offset: one of the UBOShadow*Offset vector constants
//   - v: the vector
func (u *UBOShadow) SetVec4(offset int, v mgl32.Vec4) {
	copy(u[offset:offset+4], v[:])
}

// Mat4 reads the matrix stored at offset.
func (u *UBOShadow) Mat4(offset int) mgl32.Mat4 {
	var m mgl32.Mat4
	copy(m[:], u[offset:offset+16])
	return m
}

// Vec4 reads the vector stored at offset.
func (u *UBOShadow) Vec4(offset int) mgl32.Vec4 {
	var v mgl32.Vec4
	copy(v[:], u[offset:offset+4])
	return v
}

// Marshal serializes the block into a little-endian byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: UBOShadowSize bytes
func (u *UBOShadow) Marshal() []byte {
	buf := make([]byte, UBOShadowSize)
	for i, f := range u {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(f))
	}
	return buf
}

// GPULight is the GPU-aligned representation of a single light source.
// Size: 64 bytes (std430 aligned).
type GPULight struct {
	Position     [3]float32 // offset  0: world-space position (point/spot) or unused (directional)
	LightType    uint32     // offset 12: 0 = directional, 1 = point, 2 = spot
	Color        [3]float32 // offset 16: RGB color
	Intensity    float32    // offset 28: scalar multiplier
	Direction    [3]float32 // offset 32: normalized direction (directional/spot) or unused (point)
	LightRange   float32    // offset 44: attenuation cutoff distance
	InnerCone    float32    // offset 48: cos(inner half-angle) for spot
	OuterCone    float32    // offset 52: cos(outer half-angle) for spot
	CastsShadows uint32     // offset 56: 1 = casts shadows, 0 = does not
	_pad         uint32     // offset 60: padding to 64-byte alignment
}

// gpuLightSize is the marshaled size of a GPULight.
const gpuLightSize = 64

// gpuLightHeaderSize is the size of the header that precedes the lights: ambient RGB
// and the light count.
const gpuLightHeaderSize = 16

// Marshal serializes the GPULight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, gpuLightSize)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], g.LightType)
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Color[0]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Color[1]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.Color[2]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.Intensity))
	binary.LittleEndian.PutUint32(buf[32:36], math.Float32bits(g.Direction[0]))
	binary.LittleEndian.PutUint32(buf[36:40], math.Float32bits(g.Direction[1]))
	binary.LittleEndian.PutUint32(buf[40:44], math.Float32bits(g.Direction[2]))
	binary.LittleEndian.PutUint32(buf[44:48], math.Float32bits(g.LightRange))
	binary.LittleEndian.PutUint32(buf[48:52], math.Float32bits(g.InnerCone))
	binary.LittleEndian.PutUint32(buf[52:56], math.Float32bits(g.OuterCone))
	binary.LittleEndian.PutUint32(buf[56:60], g.CastsShadows)
	binary.LittleEndian.PutUint32(buf[60:64], 0) // padding
	return buf
}

// ToGPULight converts a Light to its GPU representation.
//
// Parameters:
//   - l: the Light to convert
//
// Returns:
//   - GPULight: the GPU-aligned representation
func ToGPULight(l Light) GPULight {
	shadowVal := uint32(0)
	if l.CastsShadows() {
		shadowVal = 1
	}
	return GPULight{
		Position:     l.Position(),
		LightType:    uint32(l.Type()),
		Color:        l.Color(),
		Intensity:    l.Intensity(),
		Direction:    l.Direction(),
		LightRange:   l.Range(),
		InnerCone:    l.InnerCone(),
		OuterCone:    l.OuterCone(),
		CastsShadows: shadowVal,
	}
}

// MarshalLightBuffer marshals the visible lights of one camera into a byte buffer
// suitable for GPU upload. The buffer layout is:
//
//	[header: ambient RGB + count (16 bytes)] [GPULight × count (64 bytes each)]
//
// Disabled lights are skipped. Lights beyond MaxGPULights are dropped.
//
// Parameters:
//   - lights: the lights, usually the result of CollectVisible
//   - ambient: the scene ambient color as RGB
//
// Returns:
//   - []byte: the marshaled buffer ready for GPU upload
func MarshalLightBuffer(lights []Light, ambient mgl32.Vec3) []byte {
	enabled := make([]Light, 0, len(lights))
	for _, l := range lights {
		if l != nil && l.Enabled() && len(enabled) < MaxGPULights {
			enabled = append(enabled, l)
		}
	}

	buf := make([]byte, gpuLightHeaderSize+len(enabled)*gpuLightSize)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(ambient[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(ambient[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(ambient[2]))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(len(enabled)))

	offset := gpuLightHeaderSize
	for _, l := range enabled {
		gpu := ToGPULight(l)
		copy(buf[offset:offset+gpuLightSize], gpu.Marshal())
		offset += gpuLightSize
	}
	return buf
}
