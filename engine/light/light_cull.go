package light

import (
	"github.com/Carmen-Shannon/oxy-runtime/common"
)

// CollectVisible returns the lights that can affect what a camera sees: the main light
// first, then each spot light whose range sphere touches the frustum, until limit lights
// are collected. A limit of zero or less collects every visible spot light. out is
// truncated and reused.
//
// Parameters:
//   - out: the slice to reuse, may be nil
//   - frustum: the camera frustum
//   - main: the main directional light, may be nil
//   - spots: the spot lights of the scene
//   - limit: the light budget including the main light, <= 0 for no cap
//
// Returns:
//   - []Light: the visible lights
func CollectVisible(out []Light, frustum *common.Frustum, main Light, spots []Light, limit int) []Light {
	out = out[:0]
	if main != nil {
		out = append(out, main)
	}
	for _, l := range spots {
		if limit > 0 && len(out) >= limit {
			break
		}
		if l == nil || !l.Enabled() {
			continue
		}
		if frustum.IntersectsSphere(l.BoundingSphere()) {
			out = append(out, l)
		}
	}
	return out
}
