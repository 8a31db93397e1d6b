package depend

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-runtime/engine/asset"
	"github.com/Carmen-Shannon/oxy-runtime/engine/cache"
	"github.com/Carmen-Shannon/oxy-runtime/engine/pipeline"
)

// NativeDep locates the native payload of an asset.
type NativeDep struct {
	UUID   string
	Ext    string
	Bundle string
}

// Deps is the recorded dependency information of one asset.
type Deps struct {
	// UUIDs lists the direct dependencies without duplicates or self references.
	UUIDs []string
	// NativeDep is nil when the asset has no native payload.
	NativeDep *NativeDep
}

// dependUtilImpl is the implementation of the DependUtil interface.
type dependUtilImpl struct {
	deps cache.Cache[string, Deps]
}

// DependUtil records which assets each asset depends on, as declared in its serialized
// form. It is the source of truth for reference counting and recursive preloading.
type DependUtil interface {
	// Parse records the dependencies declared by a serialized asset. A uuid that was
	// already parsed keeps its first record.
	//
	// Parameters:
	//   - uuid: the asset uuid
	//   - data: the serialized asset
	//   - bundle: the bundle the native payload lives in
	//
	// Returns:
	//   - Deps: the recorded dependencies
	Parse(uuid string, data *asset.ImportData, bundle string) Deps

	// Reparse records the dependencies declared by a serialized asset, replacing any
	// earlier record of uuid.
	//
	// Parameters:
	//   - uuid: the asset uuid
	//   - data: the serialized asset
	//   - bundle: the bundle the native payload lives in
	//
	// Returns:
	//   - Deps: the recorded dependencies
	Reparse(uuid string, data *asset.ImportData, bundle string) Deps

	// Has reports whether dependencies were recorded for uuid.
	//
	// Parameters:
	//   - uuid: the asset uuid
	//
	// Returns:
	//   - bool: true if Parse ran for uuid
	Has(uuid string) bool

	// GetDeps returns the direct dependencies of uuid.
	//
	// Parameters:
	//   - uuid: the asset uuid
	//
	// Returns:
	//   - []string: a copy of the dependency uuids, nil when unknown
	GetDeps(uuid string) []string

	// GetNativeDep returns the native payload location of uuid.
	//
	// Parameters:
	//   - uuid: the asset uuid
	//
	// Returns:
	//   - *NativeDep: the location, nil when the asset has none
	GetNativeDep(uuid string) *NativeDep

	// GetDepsRecursively returns every transitive dependency of uuid, deepest first.
	// uuid itself is not included. Dependencies that were never parsed are leaves.
	//
	// Parameters:
	//   - uuid: the asset uuid
	//
	// Returns:
	//   - []string: the dependency uuids in post order, each once
	//   - error: a *pipeline.LoadError wrapping pipeline.ErrCyclicDependency on a cycle
	GetDepsRecursively(uuid string) ([]string, error)

	// GetNativeDepsRecursively returns the native payload locations of uuid and every
	// transitive dependency.
	//
	// Parameters:
	//   - uuid: the asset uuid
	//
	// Returns:
	//   - []NativeDep: the locations
	//   - error: a *pipeline.LoadError wrapping pipeline.ErrCyclicDependency on a cycle
	GetNativeDepsRecursively(uuid string) ([]NativeDep, error)

	// Remove forgets the record of uuid.
	//
	// Parameters:
	//   - uuid: the asset uuid
	Remove(uuid string)

	// Init forgets every record.
	Init()
}

var _ DependUtil = &dependUtilImpl{}

// NewDependUtil creates an empty DependUtil.
func NewDependUtil() DependUtil {
	return &dependUtilImpl{
		deps: cache.NewCache[string, Deps](),
	}
}

func (d *dependUtilImpl) Parse(uuid string, data *asset.ImportData, bundle string) Deps {
	if existing, ok := d.deps.Get(uuid); ok {
		return existing
	}
	recorded, _ := d.deps.AddIfAbsent(uuid, declared(uuid, data, bundle))
	return recorded
}

func (d *dependUtilImpl) Reparse(uuid string, data *asset.ImportData, bundle string) Deps {
	return d.deps.Add(uuid, declared(uuid, data, bundle))
}

// declared collects the dependencies data lists for uuid, without self references
// or duplicates.
func declared(uuid string, data *asset.ImportData, bundle string) Deps {
	out := Deps{}
	if data != nil {
		for _, dep := range data.Deps {
			if dep == "" || dep == uuid || slices.Contains(out.UUIDs, dep) {
				continue
			}
			out.UUIDs = append(out.UUIDs, dep)
		}
		if data.Native != "" {
			out.NativeDep = &NativeDep{UUID: uuid, Ext: data.Native, Bundle: bundle}
		}
	}

	return out
}

func (d *dependUtilImpl) Has(uuid string) bool {
	return d.deps.Has(uuid)
}

func (d *dependUtilImpl) GetDeps(uuid string) []string {
	deps, ok := d.deps.Get(uuid)
	if !ok {
		return nil
	}
	return slices.Clone(deps.UUIDs)
}

func (d *dependUtilImpl) GetNativeDep(uuid string) *NativeDep {
	deps, ok := d.deps.Get(uuid)
	if !ok || deps.NativeDep == nil {
		return nil
	}
	n := *deps.NativeDep
	return &n
}

func (d *dependUtilImpl) GetDepsRecursively(uuid string) ([]string, error) {
	var out []string
	visited := map[string]bool{uuid: true}
	onPath := map[string]bool{uuid: true}

	var walk func(id string) error
	walk = func(id string) error {
		deps, _ := d.deps.Get(id)
		for _, dep := range deps.UUIDs {
			if onPath[dep] {
				return pipeline.NewLoadError(pipeline.ErrCyclicDependency, uuid, "", fmt.Errorf("%s depends on %s", id, dep))
			}
			if visited[dep] {
				continue
			}
			visited[dep] = true
			onPath[dep] = true
			if err := walk(dep); err != nil {
				return err
			}
			onPath[dep] = false
			out = append(out, dep)
		}
		return nil
	}

	if err := walk(uuid); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *dependUtilImpl) GetNativeDepsRecursively(uuid string) ([]NativeDep, error) {
	all, err := d.GetDepsRecursively(uuid)
	if err != nil {
		return nil, err
	}
	var out []NativeDep
	for _, id := range append(all, uuid) {
		if n := d.GetNativeDep(id); n != nil {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (d *dependUtilImpl) Remove(uuid string) {
	d.deps.Remove(uuid)
}

func (d *dependUtilImpl) Init() {
	d.deps.Clear()
}
