package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/lume/engine/assets/loaders"
	"github.com/spaghettifunk/lume/engine/core"
	"github.com/spaghettifunk/lume/engine/renderer/metadata"
)

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

// ReloadEvent is the payload carried by EVENT_CODE_ASSET_RELOADED when
// a watched asset file changes on disk.
type ReloadEvent struct {
	Name string
	Path string
	Type metadata.ResourceType
}

// AssetManager resolves named assets to files under a base directory,
// loads them through type-specific loaders, and watches the directory
// so edits fire a reload event on the engine bus.
type AssetManager struct {
	basePath string
	events   *core.EventSystem

	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
}

func NewAssetManager(basePath string, events *core.EventSystem) (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &AssetManager{
		basePath: basePath,
		events:   events,
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[metadata.ResourceType]Loader),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
	}, nil
}

func (am *AssetManager) Initialize() error {
	am.registerLoader(metadata.ResourceTypeImage, &loaders.ImageLoader{})
	am.registerLoader(metadata.ResourceTypeMaterial, &loaders.MaterialLoader{})
	am.registerLoader(metadata.ResourceTypeTechnique, &loaders.TechniqueLoader{})

	if _, err := os.Stat(am.basePath); err != nil {
		core.LogWarn("asset path '%s' is not accessible, hot reload disabled", am.basePath)
		return nil
	}
	if err := am.watchRecursive(am.basePath, false); err != nil {
		return err
	}
	go am.start()

	return nil
}

func (am *AssetManager) BasePath() string {
	return am.basePath
}

func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// LoadAsset loads the named asset through the loader registered for
// its type. Names without an extension are resolved against the
// standard layout under the base path.
func (am *AssetManager) LoadAsset(name string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	loader, ok := am.loaders[resourceType]
	if !ok {
		return nil, fmt.Errorf("no loader registered for resource type: %d", resourceType)
	}

	path, err := am.assetPath(name, resourceType)
	if err != nil {
		return nil, err
	}

	resource, err := loader.Load(path, resourceType, params)
	if err != nil {
		return nil, err
	}
	resource.Name = name
	resource.LoaderID = uint32(resourceType)

	am.mutex.Lock()
	am.assets[path] = AssetInfo{
		Path:       path,
		Type:       resourceType,
		LastLoaded: time.Now(),
	}
	am.mutex.Unlock()

	return resource, nil
}

func (am *AssetManager) UnloadAsset(resource *metadata.Resource) error {
	if resource == nil {
		return nil
	}
	if loader, ok := am.loaders[metadata.ResourceType(resource.LoaderID)]; ok {
		return loader.Unload(resource)
	}
	resource.Data = nil
	resource.DataSize = 0
	return nil
}

func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	if am.isClosed {
		return nil
	}
	am.isClosed = true
	close(am.done)
	return am.fsnotify.Close()
}

// assetPath maps a bare asset name onto the standard directory layout.
// Names carrying an extension are treated as paths relative to the
// base directory.
func (am *AssetManager) assetPath(name string, resourceType metadata.ResourceType) (string, error) {
	if filepath.Ext(name) != "" {
		return filepath.Join(am.basePath, name), nil
	}
	switch resourceType {
	case metadata.ResourceTypeImage:
		return filepath.Join(am.basePath, "textures", name+".png"), nil
	case metadata.ResourceTypeMaterial:
		return filepath.Join(am.basePath, "materials", name+".amt"), nil
	case metadata.ResourceTypeTechnique:
		return filepath.Join(am.basePath, "techniques", name+".toml"), nil
	default:
		return "", fmt.Errorf("no path layout for resource type: %d", resourceType)
	}
}

func (am *AssetManager) start() {
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					am.watchRecursive(e.Name, false)
				}
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				am.handleFileEvent(e.Name)
			}
			if e.Op&fsnotify.Remove != 0 {
				am.removeAsset(e.Name)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-am.done:
			return
		}
	}
}

// watchRecursive adds all directories under the given one to the watch
// list and indexes the files they contain.
func (am *AssetManager) watchRecursive(path string, unWatch bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if unWatch {
				return am.fsnotify.Remove(walkPath)
			}
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// handleFileEvent indexes a created or modified file. Files already in
// the index fire a reload event so systems can refresh what they hold.
func (am *AssetManager) handleFileEvent(path string) {
	assetType := determineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return
	}

	am.mutex.Lock()
	_, known := am.assets[path]
	am.assets[path] = AssetInfo{
		Path:       path,
		Type:       assetType,
		LastLoaded: time.Now(),
	}
	am.mutex.Unlock()

	if known && am.events != nil {
		am.events.Fire(core.EventContext{
			Type: core.EVENT_CODE_ASSET_RELOADED,
			Data: &ReloadEvent{
				Name: assetName(path),
				Path: path,
				Type: assetType,
			},
		})
	}
}

func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
}

func determineAssetType(path string) metadata.ResourceType {
	switch filepath.Ext(path) {
	case ".png", ".jpg", ".jpeg":
		return metadata.ResourceTypeImage
	case ".amt":
		return metadata.ResourceTypeMaterial
	case ".toml":
		return metadata.ResourceTypeTechnique
	default:
		return metadata.ResourceTypeNone
	}
}

func assetName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
