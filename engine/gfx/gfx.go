package gfx

import (
	"github.com/Carmen-Shannon/oxy-runtime/common"
)

// Texture is a GPU texture owned by a texture asset.
type Texture interface {
	// Width returns the texture width in pixels.
	//
	// Returns:
	//   - uint32: the width
	Width() uint32

	// Height returns the texture height in pixels.
	//
	// Returns:
	//   - uint32: the height
	Height() uint32

	// Release frees the GPU memory. Further calls are no-ops.
	Release()
}

// Uploader creates GPU textures from staged pixel data.
type Uploader interface {
	// UploadTexture creates a sampled 2D texture and copies the pixels into it.
	//
	// Parameters:
	//   - label: the debug label of the GPU texture
	//   - data: RGBA pixels with dimensions
	//
	// Returns:
	//   - Texture: the uploaded texture
	//   - error: error if creation or upload fails
	UploadTexture(label string, data common.TextureStagingData) (Texture, error)
}
