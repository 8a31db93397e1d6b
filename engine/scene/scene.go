package scene

import (
	"maps"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-runtime/engine/game_object"
	"github.com/Carmen-Shannon/oxy-runtime/engine/light"
	"github.com/Carmen-Shannon/oxy-runtime/engine/model"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/go-gl/mathgl/mgl32"
)

// Scene is the render scene read by culling: the models to test, the main directional
// light and the local lights. Game objects added to the scene contribute their model.
type Scene interface {
	// Name returns the name of the scene.
	//
	// Returns:
	//   - string: the scene name
	Name() string

	// SetName sets the name of the scene.
	//
	// Parameters:
	//   - name: the new name
	SetName(name string)

	// Active reports whether the scene is culled each frame.
	//
	// Returns:
	//   - bool: true if active
	Active() bool

	// SetActive sets whether the scene is culled each frame.
	//
	// Parameters:
	//   - active: true to activate
	SetActive(active bool)

	// Models returns the models in insertion order. The returned slice is a copy.
	//
	// Returns:
	//   - []model.Model: the models
	Models() []model.Model

	// AddModel adds a model that is not owned by a game object. Adding a model twice
	// is a no-op.
	//
	// Parameters:
	//   - m: the model
	AddModel(m model.Model)

	// RemoveModel removes a model.
	//
	// Parameters:
	//   - m: the model
	RemoveModel(m model.Model)

	// MainLight returns the main directional light, or nil.
	//
	// Returns:
	//   - light.Light: the main light or nil
	MainLight() light.Light

	// SetMainLight sets the main directional light. Pass nil to clear it.
	//
	// Parameters:
	//   - l: a directional light or nil
	SetMainLight(l light.Light)

	// SpotLights returns the spot lights. The returned slice is a copy.
	//
	// Returns:
	//   - []light.Light: the spot lights
	SpotLights() []light.Light

	// SphereLights returns the point lights. The returned slice is a copy.
	//
	// Returns:
	//   - []light.Light: the point lights
	SphereLights() []light.Light

	// AddLight adds a light. The first directional light added becomes the main light
	// when none is set; further directional lights are ignored.
	//
	// Parameters:
	//   - l: the light
	AddLight(l light.Light)

	// RemoveLight removes a light, clearing the main light if it matches.
	//
	// Parameters:
	//   - l: the light
	RemoveLight(l light.Light)

	// AmbientColor returns the ambient light colour.
	AmbientColor() mgl32.Vec3

	// SetAmbientColor sets the ambient light colour.
	SetAmbientColor(color mgl32.Vec3)

	// Count returns the number of registered game objects.
	//
	// Returns:
	//   - int: the object count
	Count() int

	// Add registers a game object, assigning an ID when it has none, and adds its
	// model and attached light.
	//
	// Parameters:
	//   - obj: the object
	//
	// Returns:
	//   - uint64: the object ID
	Add(obj game_object.GameObject) uint64

	// Get returns the object with the given ID, or nil.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - game_object.GameObject: the object or nil
	Get(id uint64) game_object.GameObject

	// Remove unregisters an object together with its model and attached light.
	//
	// Parameters:
	//   - id: the object ID
	Remove(id uint64)

	// Clear removes every object, model and light.
	Clear()

	// Update advances every enabled object by dt on the scene's worker pool and
	// returns once all of them are done.
	//
	// Parameters:
	//   - dt: elapsed seconds
	Update(dt float32)
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	registry map[uint64]game_object.GameObject
	nextID   uint64

	models       []model.Model
	mainLight    light.Light
	spotLights   []light.Light
	sphereLights []light.Light
	ambientColor mgl32.Vec3

	updatePool    worker.DynamicWorkerPool
	updateWorkers int
	taskID        int
}

var _ Scene = &scene{}

// NewScene creates a new Scene with the given options applied.
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:            &sync.RWMutex{},
		name:          name,
		active:        true,
		registry:      make(map[uint64]game_object.GameObject),
		nextID:        1,
		updateWorkers: max(runtime.NumCPU()-1, 1),
		ambientColor:  mgl32.Vec3{0.1, 0.1, 0.1},
	}

	for _, option := range options {
		option(s)
	}

	s.updatePool = worker.NewDynamicWorkerPool(s.updateWorkers, 256, 1*time.Second)
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Models() []model.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.models)
}

func (s *scene) AddModel(m model.Model) {
	if m == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addModel(m)
}

func (s *scene) RemoveModel(m model.Model) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeModel(m)
}

func (s *scene) MainLight() light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mainLight
}

func (s *scene) SetMainLight(l light.Light) {
	if l != nil && l.Type() != light.LightTypeDirectional {
		panic("scene: main light must be directional, got " + l.Type().String())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mainLight = l
}

func (s *scene) SpotLights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.spotLights)
}

func (s *scene) SphereLights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.sphereLights)
}

func (s *scene) AddLight(l light.Light) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addLight(l)
}

func (s *scene) RemoveLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLight(l)
}

func (s *scene) AmbientColor() mgl32.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ambientColor
}

func (s *scene) SetAmbientColor(color mgl32.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ambientColor = color
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) Add(obj game_object.GameObject) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(obj)
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.registry[id]
	if !ok {
		return
	}
	delete(s.registry, id)
	if m := obj.Model(); m != nil {
		s.removeModel(m)
	}
	if l := obj.Light(); l != nil {
		s.removeLight(l)
	}
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.registry)
	s.models = nil
	s.mainLight = nil
	s.spotLights = nil
	s.sphereLights = nil
}

func (s *scene) Update(dt float32) {
	s.mu.Lock()
	objs := make([]game_object.GameObject, 0, len(s.registry))
	for _, id := range slices.Sorted(maps.Keys(s.registry)) {
		if obj := s.registry[id]; obj.Enabled() {
			objs = append(objs, obj)
		}
	}
	firstID := s.taskID
	s.taskID += len(objs)
	s.mu.Unlock()

	var wg sync.WaitGroup
	for i, obj := range objs {
		wg.Add(1)
		s.updatePool.SubmitTask(worker.Task{
			ID: firstID + i,
			Do: func() (any, error) {
				defer wg.Done()
				obj.Update(dt)
				return nil, nil
			},
		})
	}
	wg.Wait()
}

// add registers obj. The caller holds s.mu.
func (s *scene) add(obj game_object.GameObject) uint64 {
	if obj.ID() == 0 {
		obj.SetID(s.nextID)
		s.nextID++
	} else if obj.ID() >= s.nextID {
		s.nextID = obj.ID() + 1
	}
	s.registry[obj.ID()] = obj
	if m := obj.Model(); m != nil {
		s.addModel(m)
	}
	if l := obj.Light(); l != nil {
		s.addLight(l)
	}
	return obj.ID()
}

func (s *scene) addModel(m model.Model) {
	if !slices.Contains(s.models, m) {
		s.models = append(s.models, m)
	}
}

func (s *scene) removeModel(m model.Model) {
	s.models = slices.DeleteFunc(s.models, func(x model.Model) bool { return x == m })
}

func (s *scene) addLight(l light.Light) {
	switch l.Type() {
	case light.LightTypeDirectional:
		if s.mainLight == nil {
			s.mainLight = l
		}
	case light.LightTypeSpot:
		if !slices.Contains(s.spotLights, l) {
			s.spotLights = append(s.spotLights, l)
		}
	case light.LightTypePoint:
		if !slices.Contains(s.sphereLights, l) {
			s.sphereLights = append(s.sphereLights, l)
		}
	}
}

func (s *scene) removeLight(l light.Light) {
	if s.mainLight == l {
		s.mainLight = nil
	}
	match := func(x light.Light) bool { return x == l }
	s.spotLights = slices.DeleteFunc(s.spotLights, match)
	s.sphereLights = slices.DeleteFunc(s.sphereLights, match)
}
