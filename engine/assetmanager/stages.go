package assetmanager

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-runtime/common"
	"github.com/Carmen-Shannon/oxy-runtime/engine/asset"
	"github.com/Carmen-Shannon/oxy-runtime/engine/depend"
	"github.com/Carmen-Shannon/oxy-runtime/engine/pipeline"

	"golang.org/x/sync/errgroup"
)

const nativeSuffix = "@native"

// preprocess expands the task's requests into request items through the transform pipeline.
func (m *managerImpl) preprocess(task *pipeline.Task) error {
	sub := pipeline.NewTask(pipeline.WithInput(task.Input...), pipeline.WithOptions(task.Options))
	out, err := m.transformPipeline.Sync(sub)
	if err != nil {
		return err
	}
	task.Output = out
	return nil
}

// parseRequests resolves each request to one or more request items. In force mode
// requests that cannot be resolved are logged and skipped.
func (m *managerImpl) parseRequests(task *pipeline.Task) error {
	for _, in := range task.Input {
		var req pipeline.Request
		switch v := in.(type) {
		case pipeline.Request:
			req = v
		case *pipeline.RequestItem:
			task.Output = append(task.Output, v)
			continue
		case string:
			req = pipeline.Request{UUID: v}
		default:
			return pipeline.NewLoadError(pipeline.ErrUnknownRequest, fmt.Sprint(in), "", fmt.Errorf("unsupported request %T", in))
		}

		items, err := m.resolve(req, task.Options)
		if err != nil {
			if m.force() {
				m.logger.Printf("[AssetManager] skipping request: %v", err)
				continue
			}
			return err
		}
		for _, item := range items {
			task.Output = append(task.Output, item)
		}
	}
	return nil
}

// combine fills in the url of every item that does not have one.
func (m *managerImpl) combine(task *pipeline.Task) error {
	for _, in := range task.Input {
		item := in.(*pipeline.RequestItem)
		if item.URL == "" {
			item.URL = m.combineURL(item)
		}
		task.Output = append(task.Output, item)
	}
	return nil
}

// parseInline parses items that already carry their file bytes.
func (m *managerImpl) parseInline(task *pipeline.Task) error {
	for _, in := range task.Input {
		item := in.(*pipeline.RequestItem)
		if item.Content == nil && item.File != nil {
			content, err := m.parser.Parse(item.ID, item.ParseKey(), item.File, item.Options)
			if err != nil {
				return err
			}
			item.Content = content
		}
		task.Output = append(task.Output, item)
	}
	return nil
}

// load builds every item of the task.
func (m *managerImpl) load(task *pipeline.Task) error {
	items := requestItems(task.Input)
	task.AddTotal(len(items))
	out, err := m.loadItems(m.ctx, task, items)
	if err != nil {
		return err
	}
	task.Output = out
	return nil
}

// fetch downloads every item of the task and its dependencies.
func (m *managerImpl) fetch(task *pipeline.Task) error {
	items := requestItems(task.Input)
	task.AddTotal(len(items))
	if err := m.fetchItems(m.ctx, task, items); err != nil {
		return err
	}
	task.Output = make([]any, len(items))
	for i, item := range items {
		task.Output[i] = item
	}
	return nil
}

// loadItems loads items concurrently. Without force the first failure aborts the rest
// and is returned; with force failures are logged and leave a nil result.
func (m *managerImpl) loadItems(ctx context.Context, task *pipeline.Task, items []*pipeline.RequestItem) ([]any, error) {
	results := make([]any, len(items))

	if m.force() {
		var wg sync.WaitGroup
		for i, item := range items {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := m.loadOne(ctx, task, item)
				if err != nil {
					m.logger.Printf("[AssetManager] failed to load %s: %v", item.ID, err)
				} else {
					results[i] = v
				}
				task.Progress(item)
			}()
		}
		wg.Wait()
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		g.Go(func() error {
			v, err := m.loadOne(gctx, task, item)
			if err != nil {
				return err
			}
			results[i] = v
			task.Progress(item)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// loadOne returns the cached asset for item or joins the single in-flight load of it.
func (m *managerImpl) loadOne(ctx context.Context, task *pipeline.Task, item *pipeline.RequestItem) (any, error) {
	if !item.Options.ReloadAsset && !item.IsNative {
		if a, ok := m.assets.Get(item.ID); ok && a.IsValid() {
			return a, nil
		}
	}

	ch := m.flights.DoChan(flightKey("load", item), func() (any, error) {
		return guard(item.ID, item.URL, func() (any, error) {
			return m.loadFlight(task, item)
		})
	})
	select {
	case r := <-ch:
		return r.Val, r.Err
	case <-ctx.Done():
		return nil, pipeline.NewLoadError(pipeline.ErrAborted, item.ID, item.URL, ctx.Err())
	}
}

// loadFlight performs the single load of item shared by every concurrent request for it.
func (m *managerImpl) loadFlight(task *pipeline.Task, item *pipeline.RequestItem) (any, error) {
	if !item.Options.ReloadAsset && !item.IsNative {
		if a, ok := m.assets.Get(item.ID); ok && a.IsValid() {
			return a, nil
		}
	}

	content, err := m.fetchAndParse(m.ctx, item)
	if err != nil {
		return nil, err
	}
	if item.IsNative {
		m.files.Remove(item.ID)
		return content, nil
	}

	data, ok := content.(*asset.ImportData)
	if !ok {
		return nil, pipeline.NewLoadError(pipeline.ErrParse, item.ID, item.URL, fmt.Errorf("expected a serialized asset, got %T", content))
	}
	return m.build(task, item, data)
}

// build deserializes an asset, loads its dependencies and native payload, and caches it.
func (m *managerImpl) build(task *pipeline.Task, item *pipeline.RequestItem, data *asset.ImportData) (asset.Asset, error) {
	id := common.Coalesce(item.UUID, item.ID)
	if item.Options.ReloadAsset {
		m.depends.Reparse(id, data, item.Config)
	} else {
		m.depends.Parse(id, data, item.Config)
	}
	if _, err := m.depends.GetDepsRecursively(id); err != nil {
		return nil, err
	}

	a, err := m.registry.Deserialize(data)
	if err != nil {
		return nil, pipeline.NewLoadError(pipeline.ErrParse, id, item.URL, err)
	}
	a.SetUUID(id)

	loaded := map[string]asset.Asset{}
	if deps := m.depends.GetDeps(id); len(deps) > 0 {
		depItems := make([]*pipeline.RequestItem, len(deps))
		for i, dep := range deps {
			depItems[i] = m.depItem(dep, item)
		}
		task.AddTotal(len(depItems))
		results, err := m.loadItems(m.ctx, task, depItems)
		if err != nil {
			return nil, pipeline.NewLoadError(pipeline.ErrDependency, id, item.URL, err)
		}
		for i, r := range results {
			if dep, ok := r.(asset.Asset); ok && dep != nil {
				loaded[deps[i]] = dep
			}
		}
	}

	if nd := m.depends.GetNativeDep(id); nd != nil {
		native := m.nativeItem(id, nd, item.Options)
		if data.AsyncNative {
			a.SetNativeURL(native.URL)
			a.SetNativeDepend(true)
		} else {
			content, err := m.fetchAndParse(m.ctx, native)
			if err != nil {
				return nil, err
			}
			m.files.Remove(native.ID)
			if err := a.SetNativeAsset(content); err != nil {
				return nil, pipeline.NewLoadError(pipeline.ErrParse, native.ID, native.URL, err)
			}
			a.SetNativeURL(native.URL)
		}
	}

	retained, err := retainAll(id, item.URL, loaded)
	if err != nil {
		return nil, err
	}
	if d, ok := a.(asset.Dependent); ok {
		if err := d.SetDependencies(loaded); err != nil {
			releaseAll(retained)
			return nil, pipeline.NewLoadError(pipeline.ErrDependency, id, item.URL, err)
		}
	}
	a.SetLoaded(true)

	if item.Options.ShouldCacheAsset() {
		if cached, ok := m.cacheAsset(id, a, item.Options.ReloadAsset); !ok {
			releaseAll(retained)
			a.Destroy()
			m.files.Remove(item.ID)
			m.parsed.Remove(item.ID)
			return cached, nil
		}
		if b, ok := m.GetBundle(item.Config).(*bundleImpl); ok {
			b.add(id, a)
		}
	}
	m.files.Remove(item.ID)
	m.parsed.Remove(item.ID)
	return a, nil
}

// retainAll takes one reference on every dependency in uuid order. If a dependency was
// destroyed since it was loaded, the references already taken are dropped again.
func retainAll(id, url string, deps map[string]asset.Asset) ([]asset.Asset, error) {
	retained := make([]asset.Asset, 0, len(deps))
	for _, uuid := range slices.Sorted(maps.Keys(deps)) {
		if !deps[uuid].TryAddRef() {
			releaseAll(retained)
			return nil, pipeline.NewLoadError(pipeline.ErrInvalidAssetState, id, url, fmt.Errorf("dependency %s was destroyed", uuid))
		}
		retained = append(retained, deps[uuid])
	}
	return retained, nil
}

func releaseAll(assets []asset.Asset) {
	for _, a := range assets {
		a.DecRef()
	}
}

// cacheAsset records a under id. A reload always replaces the entry. Otherwise a live
// asset recorded first wins and is returned with false.
func (m *managerImpl) cacheAsset(id string, a asset.Asset, reload bool) (asset.Asset, bool) {
	if reload {
		m.assets.Add(id, a)
		return a, true
	}
	cached, added := m.assets.AddIfAbsent(id, a)
	if added || cached == a {
		return a, true
	}
	if cached.IsValid() {
		return cached, false
	}
	m.assets.Add(id, a)
	return a, true
}

// flightKey keys the shared flight of item. Reloads never join a plain load of the
// same item, and the reverse.
func flightKey(stage string, item *pipeline.RequestItem) string {
	if item.Options.ReloadAsset {
		return "re" + stage + ":" + item.ID
	}
	return stage + ":" + item.ID
}

// guard runs fn and returns a panic raised inside it as an error.
func guard[T any](id, url string, fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v = zero
			err = pipeline.NewLoadError(pipeline.ErrInvalidAssetState, id, url, fmt.Errorf("panic while loading: %v", r))
		}
	}()
	return fn()
}

// fetchAndParse returns the parsed content of item, reusing preloaded bytes and content.
func (m *managerImpl) fetchAndParse(ctx context.Context, item *pipeline.RequestItem) (any, error) {
	if item.Content != nil {
		return item.Content, nil
	}
	if content, ok := m.parsed.Get(item.ID); ok {
		return content, nil
	}
	file, err := m.fetchFile(ctx, item)
	if err != nil {
		return nil, err
	}
	return m.parser.Parse(item.ID, item.ParseKey(), file, item.Options)
}

// fetchFile returns the bytes of item from the item itself, the file cache or the downloader.
func (m *managerImpl) fetchFile(ctx context.Context, item *pipeline.RequestItem) ([]byte, error) {
	if item.File != nil {
		return item.File, nil
	}
	if file, ok := m.files.Get(item.ID); ok {
		return file, nil
	}
	if item.URL == "" {
		item.URL = m.combineURL(item)
	}
	ext := ".json"
	if item.IsNative {
		ext = item.Ext
	}
	return m.downloader.Download(ctx, item.ID, item.URL, ext, item.Options)
}

// fetchItems downloads items concurrently under the same failure policy as loadItems.
func (m *managerImpl) fetchItems(ctx context.Context, task *pipeline.Task, items []*pipeline.RequestItem) error {
	if m.force() {
		var wg sync.WaitGroup
		for _, item := range items {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := m.fetchOne(ctx, task, item); err != nil {
					m.logger.Printf("[AssetManager] failed to preload %s: %v", item.ID, err)
				}
				task.Progress(item)
			}()
		}
		wg.Wait()
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, item := range items {
		g.Go(func() error {
			if err := m.fetchOne(gctx, task, item); err != nil {
				return err
			}
			task.Progress(item)
			return nil
		})
	}
	return g.Wait()
}

// fetchOne joins the single in-flight preload of item.
func (m *managerImpl) fetchOne(ctx context.Context, task *pipeline.Task, item *pipeline.RequestItem) error {
	ch := m.flights.DoChan("fetch:"+item.ID, func() (any, error) {
		return guard(item.ID, item.URL, func() (any, error) {
			return nil, m.fetchFlight(task, item)
		})
	})
	select {
	case r := <-ch:
		return r.Err
	case <-ctx.Done():
		return pipeline.NewLoadError(pipeline.ErrAborted, item.ID, item.URL, ctx.Err())
	}
}

// fetchFlight downloads item into the file cache, records its dependencies and
// downloads those too. Loaded assets are skipped.
func (m *managerImpl) fetchFlight(task *pipeline.Task, item *pipeline.RequestItem) error {
	if !item.IsNative {
		if a, ok := m.assets.Get(item.ID); ok && a.IsValid() {
			return nil
		}
	}
	if m.parsed.Has(item.ID) || (item.IsNative && m.files.Has(item.ID)) {
		return nil
	}

	file, err := m.fetchFile(m.ctx, item)
	if err != nil {
		return err
	}
	if item.Options.ShouldCacheFile() {
		m.files.Add(item.ID, file)
	}
	if item.IsNative {
		return nil
	}

	content, err := m.parser.Parse(item.ID, pipeline.ImportExt, file, item.Options)
	if err != nil {
		return err
	}
	data, ok := content.(*asset.ImportData)
	if !ok {
		return pipeline.NewLoadError(pipeline.ErrParse, item.ID, item.URL, fmt.Errorf("expected a serialized asset, got %T", content))
	}
	m.parsed.Add(item.ID, data)

	id := common.Coalesce(item.UUID, item.ID)
	m.depends.Parse(id, data, item.Config)
	if _, err := m.depends.GetDepsRecursively(id); err != nil {
		return err
	}

	var children []*pipeline.RequestItem
	for _, dep := range m.depends.GetDeps(id) {
		children = append(children, m.depItem(dep, item))
	}
	if nd := m.depends.GetNativeDep(id); nd != nil && !data.AsyncNative {
		children = append(children, m.nativeItem(id, nd, item.Options))
	}
	if len(children) == 0 {
		return nil
	}
	task.AddTotal(len(children))
	if err := m.fetchItems(m.ctx, task, children); err != nil {
		return pipeline.NewLoadError(pipeline.ErrDependency, id, item.URL, err)
	}
	return nil
}

// loadRemote loads a url and wraps the content through the factory, once per url.
func (m *managerImpl) loadRemote(item *pipeline.RequestItem) (asset.Asset, error) {
	if !item.Options.ReloadAsset {
		if a, ok := m.assets.Get(item.ID); ok && a.IsValid() {
			return a, nil
		}
	}

	v, err, _ := m.flights.Do(flightKey("remote", item), func() (any, error) {
		return guard(item.ID, item.URL, func() (any, error) {
			return m.remoteFlight(item)
		})
	})
	if err != nil {
		return nil, err
	}
	return v.(asset.Asset), nil
}

// remoteFlight performs the single load of a remote url.
func (m *managerImpl) remoteFlight(item *pipeline.RequestItem) (asset.Asset, error) {
	if !item.Options.ReloadAsset {
		if a, ok := m.assets.Get(item.ID); ok && a.IsValid() {
			return a, nil
		}
	}
	content, err := m.fetchAndParse(m.ctx, item)
	if err != nil {
		return nil, err
	}
	created, err := m.factory.Create(item.URL, item.Ext, content, item.Options)
	if err != nil {
		return nil, pipeline.NewLoadError(pipeline.ErrParse, item.ID, item.URL, err)
	}
	a, ok := created.(asset.Asset)
	if !ok {
		return nil, pipeline.NewLoadError(pipeline.ErrParse, item.ID, item.URL, fmt.Errorf("factory returned %T for %s", created, item.Ext))
	}
	a.SetUUID(item.ID)
	a.SetNativeURL(item.URL)
	a.SetLoaded(true)
	if item.Options.ShouldCacheAsset() {
		if cached, ok := m.cacheAsset(item.ID, a, item.Options.ReloadAsset); !ok {
			a.Destroy()
			return cached, nil
		}
	}
	return a, nil
}

// loadBundle loads a bundle and, before registering it, every bundle it depends on.
// chain holds the bundles being loaded above this one and guards against cycles.
func (m *managerImpl) loadBundle(nameOrURL string, opts *pipeline.Options, chain []string) (Bundle, error) {
	url := m.bundleURL(nameOrURL)
	name := bundleName(url)
	if b := m.GetBundle(name); b != nil {
		return b, nil
	}
	if slices.Contains(chain, name) {
		return nil, pipeline.NewLoadError(pipeline.ErrCyclicDependency, name, url, fmt.Errorf("bundle chain %v", append(chain, name)))
	}

	v, err, _ := m.flights.Do("bundle:"+name, func() (any, error) {
		return guard(name, url, func() (any, error) {
			return m.bundleFlight(name, url, opts, chain)
		})
	})
	if err != nil {
		return nil, err
	}
	return v.(Bundle), nil
}

// bundleFlight performs the single load of the bundle name from url.
func (m *managerImpl) bundleFlight(name, url string, opts *pipeline.Options, chain []string) (Bundle, error) {
	if b := m.GetBundle(name); b != nil {
		return b, nil
	}
	o := opts.Clone()
	o.Version = common.Coalesce(opts.Version, m.downloader.BundleVersion(name))

	file, err := m.downloader.Download(m.ctx, url, url, pipeline.BundleExt, o)
	if err != nil {
		return nil, err
	}
	content, err := m.parser.Parse(url, pipeline.BundleExt, file, o)
	if err != nil {
		return nil, err
	}
	cfg, ok := content.(*pipeline.BundleConfig)
	if !ok {
		return nil, pipeline.NewLoadError(pipeline.ErrParse, name, url, fmt.Errorf("expected a bundle config, got %T", content))
	}
	cfg.Base = url

	for _, dep := range cfg.Deps {
		if _, err := m.loadBundle(dep, opts, append(slices.Clone(chain), name)); err != nil {
			return nil, pipeline.NewLoadError(pipeline.ErrDependency, name, url, err)
		}
	}

	created, err := m.factory.Create(url, pipeline.BundleExt, cfg, o)
	if err != nil {
		return nil, pipeline.NewLoadError(pipeline.ErrParse, name, url, err)
	}
	b, ok := created.(Bundle)
	if !ok {
		return nil, pipeline.NewLoadError(pipeline.ErrParse, name, url, fmt.Errorf("factory returned %T for a bundle", created))
	}
	m.bundles.Add(b.Name(), b)
	if b.Name() != name {
		m.bundles.Add(name, b)
	}
	return b, nil
}

// postLoadNative loads the deferred native payload of a and assigns it if a is still
// alive and still waiting for it.
func (m *managerImpl) postLoadNative(a asset.Asset, opts *pipeline.Options) error {
	if a == nil || !a.IsValid() {
		id := ""
		if a != nil {
			id = a.UUID()
		}
		return pipeline.NewLoadError(pipeline.ErrInvalidAssetState, id, "", errors.New("asset is destroyed"))
	}
	if !a.NativeDepend() {
		return nil
	}

	id := a.UUID()
	nd := m.depends.GetNativeDep(id)
	if nd == nil {
		return pipeline.NewLoadError(pipeline.ErrInvalidAssetState, id, "", errors.New("no native dependency recorded"))
	}
	if m.GetBundle(nd.Bundle) == nil {
		if name, _ := m.findAsset(id, ""); name != "" {
			nd.Bundle = name
		}
	}
	item := m.nativeItem(id, nd, opts)

	v, err, _ := m.flights.Do("native:"+item.ID, func() (any, error) {
		return guard(item.ID, item.URL, func() (any, error) {
			content, err := m.fetchAndParse(m.ctx, item)
			m.files.Remove(item.ID)
			return content, err
		})
	})
	if err != nil {
		return err
	}

	if !a.IsValid() || !a.NativeDepend() {
		m.logger.Printf("[AssetManager] discarding native payload of %s: asset changed while loading", id)
		return nil
	}
	if err := a.SetNativeAsset(v); err != nil {
		return pipeline.NewLoadError(pipeline.ErrParse, item.ID, item.URL, err)
	}
	a.SetNativeDepend(false)
	return nil
}

// resolve expands one request into request items.
func (m *managerImpl) resolve(req pipeline.Request, opts *pipeline.Options) ([]*pipeline.RequestItem, error) {
	bundle := common.Coalesce(req.Bundle, opts.Bundle)
	native := req.IsNative || opts.IsNative
	ext := common.Coalesce(req.Ext, opts.Ext)

	switch {
	case req.URL != "":
		return []*pipeline.RequestItem{{
			ID:       req.URL,
			URL:      req.URL,
			Ext:      common.Coalesce(ext, urlExt(req.URL)),
			IsNative: true,
			Options:  opts,
		}}, nil

	case req.UUID != "":
		name, info := m.findAsset(req.UUID, bundle)
		return []*pipeline.RequestItem{m.newItem(req.UUID, name, info, native, ext, opts)}, nil

	case req.Path != "":
		name, info := m.findPath(req.Path, req.Type, bundle)
		if info == nil {
			return nil, pipeline.NewLoadError(pipeline.ErrUnknownRequest, req.Path, "", fmt.Errorf("no asset at path %q in bundle %q", req.Path, bundle))
		}
		return []*pipeline.RequestItem{m.newItem(info.UUID, name, info, native, ext, opts)}, nil

	case req.Dir != "":
		b := m.GetBundle(common.Coalesce(bundle, BundleResources))
		if b == nil {
			return nil, pipeline.NewLoadError(pipeline.ErrUnknownRequest, req.Dir, "", fmt.Errorf("bundle %q is not loaded", bundle))
		}
		var items []*pipeline.RequestItem
		for _, info := range b.GetDirWithPath(req.Dir, req.Type) {
			items = append(items, m.newItem(info.UUID, b.Name(), info, native, ext, opts))
		}
		return items, nil

	case req.Scene != "":
		for _, name := range m.searchOrder(bundle) {
			if b := m.GetBundle(name); b != nil {
				if info := b.GetSceneInfo(req.Scene); info != nil {
					return []*pipeline.RequestItem{m.newItem(info.UUID, name, info, false, "", opts)}, nil
				}
			}
		}
		return nil, pipeline.NewLoadError(pipeline.ErrUnknownRequest, req.Scene, "", fmt.Errorf("no scene named %q", req.Scene))
	}
	return nil, pipeline.NewLoadError(pipeline.ErrUnknownRequest, "", "", errors.New("empty request"))
}

// newItem builds the request item for an asset of a bundle.
func (m *managerImpl) newItem(uuid, bundle string, info *pipeline.AssetInfo, native bool, ext string, opts *pipeline.Options) *pipeline.RequestItem {
	item := &pipeline.RequestItem{
		ID:       uuid,
		UUID:     uuid,
		Ext:      ext,
		IsNative: native,
		Info:     info,
		Config:   bundle,
		Options:  opts,
	}
	if native {
		item.ID = uuid + nativeSuffix
		if item.Ext == "" {
			if nd := m.depends.GetNativeDep(uuid); nd != nil {
				item.Ext = nd.Ext
			}
		}
	}
	return item
}

// depItem builds the request item of a dependency, preferring the parent's bundle.
func (m *managerImpl) depItem(uuid string, parent *pipeline.RequestItem) *pipeline.RequestItem {
	name, info := m.findAsset(uuid, parent.Config)
	return m.newItem(uuid, name, info, false, "", parent.Options)
}

// nativeItem builds the request item of a native payload.
func (m *managerImpl) nativeItem(uuid string, nd *depend.NativeDep, opts *pipeline.Options) *pipeline.RequestItem {
	var info *pipeline.AssetInfo
	if b := m.GetBundle(nd.Bundle); b != nil {
		info = b.GetAssetInfo(uuid)
	}
	item := &pipeline.RequestItem{
		ID:       uuid + nativeSuffix,
		UUID:     uuid,
		Ext:      nd.Ext,
		IsNative: true,
		Info:     info,
		Config:   nd.Bundle,
		Options:  opts,
	}
	item.URL = m.combineURL(item)
	return item
}

// findAsset locates uuid in the preferred bundle, then in every loaded bundle by name,
// following one redirect.
func (m *managerImpl) findAsset(uuid, preferred string) (string, *pipeline.AssetInfo) {
	for _, name := range m.searchOrder(preferred) {
		b := m.GetBundle(name)
		if b == nil {
			continue
		}
		info := b.GetAssetInfo(uuid)
		if info == nil {
			continue
		}
		if info.Redirect != "" {
			if rb := m.GetBundle(info.Redirect); rb != nil {
				if ri := rb.GetAssetInfo(uuid); ri != nil && ri.Redirect == "" {
					return info.Redirect, ri
				}
			}
			return info.Redirect, info
		}
		return name, info
	}
	return "", nil
}

// findPath locates a bundle relative path in the preferred bundle, then in every
// loaded bundle by name.
func (m *managerImpl) findPath(p, typeName, preferred string) (string, *pipeline.AssetInfo) {
	for _, name := range m.searchOrder(preferred) {
		if b := m.GetBundle(name); b != nil {
			if info := b.GetInfoWithPath(p, typeName); info != nil {
				return name, info
			}
		}
	}
	return "", nil
}

// searchOrder lists the bundle names to search: only preferred when given, else all
// loaded bundles sorted by name.
func (m *managerImpl) searchOrder(preferred string) []string {
	if preferred != "" {
		return []string{preferred}
	}
	names := m.bundles.Keys()
	slices.Sort(names)
	return names
}

// combineURL builds <base>/<uuid[:2]>/<uuid>[.<ver>]<ext> for an item. The base is the
// item's bundle import or native directory, else the configured general base.
func (m *managerImpl) combineURL(item *pipeline.RequestItem) string {
	cfg := m.Config()
	base := cfg.ImportBase
	if item.IsNative {
		base = cfg.NativeBase
	}
	if b := m.GetBundle(item.Config); b != nil {
		bc := b.Config()
		if item.IsNative {
			base = bc.Base + "/" + common.Coalesce(bc.NativeBase, DefaultNativeBase)
		} else {
			base = bc.Base + "/" + common.Coalesce(bc.ImportBase, DefaultImportBase)
		}
	}

	ver := ""
	if item.Info != nil {
		if item.IsNative {
			ver = item.Info.NativeVer
		} else {
			ver = item.Info.Ver
		}
	}
	if ver != "" {
		ver = "." + ver
	}

	ext := item.Ext
	if !item.IsNative {
		ext = ".json"
	}

	id := item.UUID
	prefix := id
	if len(id) >= 2 {
		prefix = id[:2]
	}
	return fmt.Sprintf("%s/%s/%s%s%s", base, prefix, id, ver, ext)
}

// requestItems converts stage input back to request items.
func requestItems(input []any) []*pipeline.RequestItem {
	items := make([]*pipeline.RequestItem, 0, len(input))
	for _, in := range input {
		if item, ok := in.(*pipeline.RequestItem); ok {
			items = append(items, item)
		}
	}
	return items
}

// bundleName returns the last path element of a bundle url.
func bundleName(url string) string {
	return path.Base(url)
}
