package culling

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-runtime/common"
	"github.com/Carmen-Shannon/oxy-runtime/engine/camera"
	"github.com/Carmen-Shannon/oxy-runtime/engine/light"
	"github.com/Carmen-Shannon/oxy-runtime/engine/model"
)

// defaultPoolCapacity is the number of render objects pre-allocated per list.
const defaultPoolCapacity = 128

// RenderObject is a model selected for drawing together with its sort key.
type RenderObject struct {
	Model model.Model
	// Depth is the projection of the model position minus the camera position onto the
	// camera forward axis. It orders the render queue and is not a view-space depth.
	Depth float32
}

// Skybox is the skybox drawn by cameras that clear with ClearFlagSkybox.
type Skybox struct {
	Enabled bool
	Model   model.Model
}

// PipelineSceneData is the per-pipeline state shared by every camera culled through it.
type PipelineSceneData struct {
	Shadows *light.Shadows
	Skybox  Skybox
}

// Stats counts the output of the last culling pass.
type Stats struct {
	RenderObjects int
	ShadowObjects int
	ShadowCasters bool
}

type cullerImpl struct {
	mu sync.Mutex

	sceneData     *PipelineSceneData
	ubo           light.UBOShadow
	renderObjects *objectList
	shadowObjects *objectList
	validLights   []light.Light
	poolCapacity  int
}

// Culler selects, once per camera per frame, the models a render pipeline draws and the
// models that cast shadows. Passes on one Culler run one at a time.
type Culler interface {
	// SceneCulling rebuilds the render and shadow object lists for cam. The previous
	// lists are returned to their pools first. Only the pooled lists, the Shadows state
	// and the shadow uniform block are written.
	//
	// Parameters:
	//   - cam: a camera attached to a scene
	SceneCulling(cam camera.Camera)

	// LightCollecting returns the main light followed by the spot lights whose range
	// sphere touches the camera frustum, at most limit lights in total. The returned
	// slice is reused by the next call.
	//
	// Parameters:
	//   - cam: a camera attached to a scene
	//   - limit: the light budget
	//
	// Returns:
	//   - []light.Light: the visible lights
	LightCollecting(cam camera.Camera, limit int) []light.Light

	// RenderObjects returns a copy of the render objects of the last pass.
	//
	// Returns:
	//   - []RenderObject: the render objects in scene order, skybox first
	RenderObjects() []RenderObject

	// ShadowObjects returns a copy of the shadow casters of the last pass.
	//
	// Returns:
	//   - []RenderObject: the shadow casters in scene order
	ShadowObjects() []RenderObject

	// SceneData returns the pipeline scene data. Callers may change the shadow and
	// skybox settings between passes.
	//
	// Returns:
	//   - *PipelineSceneData: the shared scene data
	SceneData() *PipelineSceneData

	// ShadowUBO returns a copy of the shadow uniform block.
	//
	// Returns:
	//   - light.UBOShadow: the uniform block
	ShadowUBO() light.UBOShadow

	// Stats returns the counts of the last pass.
	Stats() Stats
}

var _ Culler = &cullerImpl{}

// NewCuller creates a Culler with the given options applied. Shadows default to
// light.NewShadows() and the skybox is disabled.
//
// Parameters:
//   - options: a variadic list of CullerBuilderOption functions
//
// Returns:
//   - Culler: the culler
func NewCuller(options ...CullerBuilderOption) Culler {
	c := &cullerImpl{
		sceneData:    &PipelineSceneData{},
		poolCapacity: defaultPoolCapacity,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.sceneData.Shadows == nil {
		c.sceneData.Shadows = light.NewShadows()
	}
	c.renderObjects = newObjectList(c.poolCapacity)
	c.shadowObjects = newObjectList(c.poolCapacity)
	return c
}

func (c *cullerImpl) SceneCulling(cam camera.Camera) {
	scn := cam.Scene()
	if scn == nil {
		panic("culling: SceneCulling requires a camera attached to a scene")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	shadows := c.sceneData.Shadows
	skybox := c.sceneData.Skybox
	mainLight := scn.MainLight()

	c.renderObjects.begin()

	var shadowObjects *objectList
	if shadows.Enabled {
		c.ubo.SetVec4(light.UBOShadowColorOffset, shadows.ShadowColor)
		if shadows.Type == light.ShadowTypeShadowMap {
			shadowObjects = c.shadowObjects
		}
	}
	c.shadowObjects.begin()

	if mainLight != nil && shadows.Type == light.ShadowTypePlanar {
		UpdatePlanarProj(shadows, mainLight, &c.ubo)
	}

	camPos := cam.Position()
	camFwd := cam.Forward()
	depthOf := func(m model.Model) float32 {
		n := m.Node()
		if n == nil {
			return 0
		}
		return n.WorldPosition().Sub(camPos).Dot(camFwd)
	}

	if skybox.Enabled && skybox.Model != nil && cam.ClearFlag()&camera.ClearFlagSkybox != 0 {
		c.renderObjects.emit(RenderObject{Model: skybox.Model, Depth: depthOf(skybox.Model)})
	}

	frustum := cam.Frustum()
	visibility := cam.Visibility()

	var castBounds common.AABB
	castInited := false

	for _, m := range scn.Models() {
		if !m.Enabled() || !visible(m, visibility) {
			continue
		}

		bounds, hasBounds := m.WorldBounds()
		if shadowObjects != nil && m.CastShadow() && hasBounds {
			if !castInited {
				castBounds = bounds
				castInited = true
			} else {
				castBounds = common.MergeAABB(castBounds, bounds)
			}
			shadowObjects.emit(RenderObject{Model: m, Depth: depthOf(m)})
		}

		if hasBounds && !frustum.IntersectsAABB(bounds) {
			continue
		}
		c.renderObjects.emit(RenderObject{Model: m, Depth: depthOf(m)})
	}

	if castInited {
		shadows.Sphere = castBounds.ToBoundingSphere()
		shadows.SphereValid = true
	} else {
		shadows.Sphere = common.Sphere{}
		shadows.SphereValid = false
	}
}

func (c *cullerImpl) LightCollecting(cam camera.Camera, limit int) []light.Light {
	scn := cam.Scene()
	if scn == nil {
		panic("culling: LightCollecting requires a camera attached to a scene")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	frustum := cam.Frustum()
	c.validLights = light.CollectVisible(c.validLights[:0], &frustum, scn.MainLight(), scn.SpotLights(), limit)
	return c.validLights
}

func (c *cullerImpl) RenderObjects() []RenderObject {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderObjects.snapshot()
}

func (c *cullerImpl) ShadowObjects() []RenderObject {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shadowObjects.snapshot()
}

func (c *cullerImpl) SceneData() *PipelineSceneData {
	return c.sceneData
}

func (c *cullerImpl) ShadowUBO() light.UBOShadow {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ubo
}

func (c *cullerImpl) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		RenderObjects: len(c.renderObjects.items),
		ShadowObjects: len(c.shadowObjects.items),
		ShadowCasters: c.sceneData.Shadows.SphereValid,
	}
}

// visible reports whether m passes the camera layer test or the visibility flag test.
func visible(m model.Model, visibility uint32) bool {
	if n := m.Node(); n != nil {
		if layer := n.Layer(); visibility&layer == layer {
			return true
		}
	}
	return visibility&m.VisFlags() != 0
}
