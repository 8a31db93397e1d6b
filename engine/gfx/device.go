package gfx

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-runtime/common"

	"github.com/cogentcore/webgpu/wgpu"
)

// deviceImpl is the implementation of the Device interface.
type deviceImpl struct {
	mu sync.Mutex

	label                string
	forceFallbackAdapter bool

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	released bool
}

// Device is a headless WebGPU device used to upload texture assets. No surface is
// created, so it works without a window.
type Device interface {
	Uploader

	// Release frees the device, adapter and instance. Textures created by the device
	// must be released first.
	Release()
}

var _ Device = &deviceImpl{}

// NewDevice creates a headless Device with the provided options applied.
//
// Parameters:
//   - options: a variadic list of DeviceBuilderOption functions
//
// Returns:
//   - Device: the device
//   - error: error if no adapter or device could be acquired
func NewDevice(options ...DeviceBuilderOption) (Device, error) {
	d := &deviceImpl{
		label: "Asset Device",
	}
	for _, opt := range options {
		opt(d)
	}

	d.instance = wgpu.CreateInstance(nil)

	a, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: d.forceFallbackAdapter,
	})
	if err != nil {
		d.instance.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	d.adapter = a

	dev, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: d.label,
	})
	if err != nil {
		a.Release()
		d.instance.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	d.device = dev
	d.queue = dev.GetQueue()

	return d, nil
}

func (d *deviceImpl) UploadTexture(label string, data common.TextureStagingData) (Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.released {
		return nil, fmt.Errorf("device %s is released", d.label)
	}
	if uint64(len(data.Pixels)) < uint64(data.Width)*uint64(data.Height)*4 {
		return nil, fmt.Errorf("texture %s: %d bytes is too small for %dx%d RGBA", label, len(data.Pixels), data.Width, data.Height)
	}

	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     label,
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              data.Width,
			Height:             data.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create texture %s: %w", label, err)
	}

	d.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		data.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  data.Width * 4,
			RowsPerImage: data.Height,
		},
		&wgpu.Extent3D{
			Width:              data.Width,
			Height:             data.Height,
			DepthOrArrayLayers: 1,
		},
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create view for texture %s: %w", label, err)
	}

	return &gpuTexture{
		texture: tex,
		view:    view,
		width:   data.Width,
		height:  data.Height,
	}, nil
}

func (d *deviceImpl) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return
	}
	d.released = true
	d.queue.Release()
	d.device.Release()
	d.adapter.Release()
	d.instance.Release()
}

// gpuTexture is a texture and its default view.
type gpuTexture struct {
	once    sync.Once
	texture *wgpu.Texture
	view    *wgpu.TextureView
	width   uint32
	height  uint32
}

// View returns the default texture view for binding.
func (t *gpuTexture) View() *wgpu.TextureView {
	return t.view
}

func (t *gpuTexture) Width() uint32 {
	return t.width
}

func (t *gpuTexture) Height() uint32 {
	return t.height
}

func (t *gpuTexture) Release() {
	t.once.Do(func() {
		t.view.Release()
		t.texture.Release()
	})
}
