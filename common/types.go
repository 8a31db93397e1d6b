// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"fmt"
	"image"
	"image/draw"
)

// TextureStagingData holds RGBA pixel data for a texture pending GPU upload.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// NewTextureStagingData converts any decoded image into tightly packed RGBA staging data.
// Images that are already *image.RGBA with a zero origin and no row padding are used
// without copying.
// Reference: https://pkg.go.dev/image/draw
//
// Parameters:
//   - img: the decoded image
//
// Returns:
//   - TextureStagingData: the RGBA pixels with dimensions
//   - error: error if the image is nil or empty
func NewTextureStagingData(img image.Image) (TextureStagingData, error) {
	if img == nil {
		return TextureStagingData{}, fmt.Errorf("image is nil")
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return TextureStagingData{}, fmt.Errorf("image has no pixels")
	}

	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}, nil
}
