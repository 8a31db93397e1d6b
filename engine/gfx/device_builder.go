package gfx

// DeviceBuilderOption is a functional option for configuring a Device via NewDevice.
type DeviceBuilderOption func(*deviceImpl)

// WithLabel is an option builder that sets the device debug label.
//
// Parameters:
//   - label: the label
//
// Returns:
//   - DeviceBuilderOption: a function that applies the label option to a deviceImpl
func WithLabel(label string) DeviceBuilderOption {
	return func(d *deviceImpl) {
		d.label = label
	}
}

// WithForceFallbackAdapter is an option builder that requests the software adapter,
// which is useful on CI machines without a GPU.
//
// Parameters:
//   - force: true to force the fallback adapter
//
// Returns:
//   - DeviceBuilderOption: a function that applies the adapter option to a deviceImpl
func WithForceFallbackAdapter(force bool) DeviceBuilderOption {
	return func(d *deviceImpl) {
		d.forceFallbackAdapter = force
	}
}
