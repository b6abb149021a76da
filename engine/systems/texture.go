package systems

import (
	"fmt"

	"github.com/spaghettifunk/lume/engine/assets"
	"github.com/spaghettifunk/lume/engine/core"
	"github.com/spaghettifunk/lume/engine/renderer/metadata"
)

type TextureSystemConfig struct {
	/** @brief The maximum number of textures that can be loaded at once. */
	MaxTextureCount uint32
}

type TextureSystem struct {
	Config         *TextureSystemConfig
	DefaultTexture *metadata.DefaultTexture
	// Array of registered textures.
	RegisteredTextures []*metadata.Texture
	// Hashtable for texture lookups.
	RegisteredTextureTable map[string]*metadata.TextureReference
	// sub systems
	jobSystem    *JobSystem
	assetManager *assets.AssetManager
	renderer     *RendererSystem
}

func NewTextureSystem(config *TextureSystemConfig, js *JobSystem, am *assets.AssetManager, r *RendererSystem) (*TextureSystem, error) {
	if config.MaxTextureCount == 0 {
		err := fmt.Errorf("func NewTextureSystem - config.MaxTextureCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}

	ts := &TextureSystem{
		Config:                 config,
		RegisteredTextures:     make([]*metadata.Texture, config.MaxTextureCount),
		RegisteredTextureTable: make(map[string]*metadata.TextureReference),
		DefaultTexture:         metadata.NewDefaultTexture(),
		jobSystem:              js,
		assetManager:           am,
		renderer:               r,
	}

	// Invalidate all textures in the array.
	for i := uint32(0); i < config.MaxTextureCount; i++ {
		ts.RegisteredTextures[i] = &metadata.Texture{
			ID:         metadata.InvalidID,
			Generation: metadata.InvalidID,
		}
	}

	// Create default textures for use in the system.
	ts.DefaultTexture.CreateSkeletonTextures()

	return ts, nil
}

func (ts *TextureSystem) Initialize() error {
	ts.renderer.TextureCreate(ts.DefaultTexture.TexturePixels, ts.DefaultTexture.DefaultTexture)
	ts.renderer.TextureCreate(ts.DefaultTexture.DiffuseTexturePixels, ts.DefaultTexture.DefaultDiffuseTexture)
	ts.renderer.TextureCreate(ts.DefaultTexture.SpecularTexturePixels, ts.DefaultTexture.DefaultSpecularTexture)
	ts.renderer.TextureCreate(ts.DefaultTexture.NormalTexturePixels, ts.DefaultTexture.DefaultNormalTexture)

	return nil
}

func (ts *TextureSystem) Shutdown() error {
	// Destroy all loaded textures.
	for i := uint32(0); i < ts.Config.MaxTextureCount; i++ {
		t := ts.RegisteredTextures[i]
		if t.Generation != metadata.InvalidID || t.InternalData != nil {
			ts.renderer.TextureDestroy(t)
		}
	}
	ts.renderer.TextureDestroy(ts.DefaultTexture.DefaultTexture)
	ts.renderer.TextureDestroy(ts.DefaultTexture.DefaultDiffuseTexture)
	ts.renderer.TextureDestroy(ts.DefaultTexture.DefaultSpecularTexture)
	ts.renderer.TextureDestroy(ts.DefaultTexture.DefaultNormalTexture)
	ts.DefaultTexture.DestroyDefaultTextures()

	return nil
}

/**
 * @brief Attempts to acquire a texture with the given name. If it has
 * not yet been loaded, this triggers a load. The texture pointer is
 * valid immediately; its generation flips once pixel data arrives.
 */
func (ts *TextureSystem) Acquire(name string, autoRelease bool) (*metadata.Texture, error) {
	// Return default texture, but warn about it since this should be returned via GetDefaultTexture.
	if name == metadata.DEFAULT_TEXTURE_NAME {
		core.LogWarn("texture system Acquire called for default texture. Use GetDefaultTexture for texture 'default'")
		return ts.DefaultTexture.DefaultTexture, nil
	}
	// NOTE: Increments reference count, or creates new entry.
	id, ok := ts.processTextureReference(name, 1, autoRelease, false)
	if !ok {
		err := fmt.Errorf("texture system Acquire failed to obtain a new texture id")
		core.LogError(err.Error())
		return nil, err
	}
	return ts.RegisteredTextures[id], nil
}

/**
 * @brief Acquires a writeable texture with the given name. The texture
 * has a single mip level, no data is loaded for it, and it is flagged
 * as a render target with bilinear sampling.
 */
func (ts *TextureSystem) AcquireWriteable(name string, width, height uint32, channelCount uint8, hasTransparency bool) (*metadata.Texture, error) {
	// NOTE: Writeable textures are never auto-released because their
	// content comes from the renderer, not from a reloadable asset.
	id, ok := ts.processTextureReference(name, 1, false, true)
	if !ok {
		err := fmt.Errorf("texture system AcquireWriteable failed to obtain a new texture id")
		core.LogError(err.Error())
		return nil, err
	}

	texture := ts.RegisteredTextures[id]
	texture.ID = id
	texture.Name = name
	texture.Width = width
	texture.Height = height
	texture.ChannelCount = channelCount
	texture.MipLevels = 1
	texture.FilterMode = metadata.TextureFilterModeLinear
	texture.Generation = metadata.InvalidID

	texture.Flags = metadata.TextureFlagBits(metadata.TextureFlagIsWriteable)
	if hasTransparency {
		texture.Flags |= metadata.TextureFlagBits(metadata.TextureFlagHasTransparency)
	}
	texture.InternalData = nil

	ts.renderer.TextureCreateWriteable(texture)

	return texture, nil
}

func (ts *TextureSystem) Release(name string) {
	// Ignore release requests for the default textures.
	if isDefaultTextureName(name) {
		return
	}
	// NOTE: Decrement the reference count.
	if _, ok := ts.processTextureReference(name, -1, false, false); !ok {
		core.LogError("texture system Release failed to release texture '%s' properly", name)
	}
}

/**
 * @brief Destroys a writeable texture and frees its registry slot,
 * regardless of remaining references. Writeable textures are never
 * auto-released, so whoever acquired one owns this call.
 */
func (ts *TextureSystem) DestroyWriteable(name string) {
	if isDefaultTextureName(name) {
		return
	}
	ref, ok := ts.RegisteredTextureTable[name]
	if !ok {
		core.LogWarn("tried to destroy non-existent writeable texture: '%s'", name)
		return
	}
	ts.DestroyTexture(ts.RegisteredTextures[ref.Handle])
	delete(ts.RegisteredTextureTable, name)
}

func (ts *TextureSystem) SetInternal(texture *metadata.Texture, internalData interface{}) bool {
	if texture != nil {
		texture.InternalData = internalData
		texture.Generation++
		return true
	}
	return false
}

func (ts *TextureSystem) WriteData(texture *metadata.Texture, offset, size uint32, data []uint8) bool {
	if texture != nil {
		ts.renderer.TextureWriteData(texture, offset, size, data)
		return true
	}
	return false
}

func (ts *TextureSystem) GetDefaultTexture() *metadata.Texture {
	return ts.DefaultTexture.DefaultTexture
}

func (ts *TextureSystem) GetDefaultDiffuseTexture() *metadata.Texture {
	return ts.DefaultTexture.DefaultDiffuseTexture
}

func (ts *TextureSystem) GetDefaultSpecularTexture() *metadata.Texture {
	return ts.DefaultTexture.DefaultSpecularTexture
}

func (ts *TextureSystem) GetDefaultNormalTexture() *metadata.Texture {
	return ts.DefaultTexture.DefaultNormalTexture
}

func (ts *TextureSystem) LoadTexture(textureName string, texture *metadata.Texture) bool {
	// Kick off a texture loading job. Only handles loading from disk
	// to CPU. Upload to the backend happens on completion.
	ts.jobSystem.Submit(metadata.JobTask{
		Name: fmt.Sprintf("texture load '%s'", textureName),
		InputParams: &metadata.TextureLoadParams{
			ResourceName:      textureName,
			OutTexture:        texture,
			ImageResource:     &metadata.Resource{},
			CurrentGeneration: texture.Generation,
			TempTexture:       &metadata.Texture{},
		},
		OnStart:    ts.textureLoadJobStart,
		OnComplete: ts.textureLoadJobSuccess,
		OnFailure:  ts.textureLoadJobFail,
	})

	return true
}

func (ts *TextureSystem) DestroyTexture(texture *metadata.Texture) {
	// Clean up backend resources.
	ts.renderer.TextureDestroy(texture)

	texture.Name = ""
	texture.ID = metadata.InvalidID
	texture.Generation = metadata.InvalidID
}

// processTextureReference adjusts the reference count for the named
// texture, loading it on first acquire and destroying it when the last
// auto-release reference goes away. Returns the texture handle.
func (ts *TextureSystem) processTextureReference(name string, referenceDiff int8, autoRelease, skipLoad bool) (uint32, bool) {
	ref, ok := ts.RegisteredTextureTable[name]
	if !ok {
		if referenceDiff < 0 {
			core.LogWarn("tried to release non-existent texture: '%s'", name)
			return 0, false
		}
		ref = &metadata.TextureReference{
			Handle: metadata.InvalidID,
		}
		ts.RegisteredTextureTable[name] = ref
	}

	if ref.ReferenceCount == 0 && referenceDiff > 0 {
		// This can only be changed the first time a texture is acquired.
		ref.AutoRelease = autoRelease
	}

	if referenceDiff < 0 {
		if ref.ReferenceCount == 0 {
			core.LogWarn("tried to release texture '%s' which has no references", name)
			return 0, false
		}
		ref.ReferenceCount--

		// If the count hits 0 and the reference is set to auto-release,
		// destroy the texture and free the slot.
		if ref.ReferenceCount == 0 && ref.AutoRelease {
			ts.DestroyTexture(ts.RegisteredTextures[ref.Handle])
			delete(ts.RegisteredTextureTable, name)
			return 0, true
		}
		return ref.Handle, true
	}

	ref.ReferenceCount += uint64(referenceDiff)

	// Incrementing. Check if the handle is new or not.
	if ref.Handle == metadata.InvalidID {
		// This means no texture exists here. Find a free slot first.
		for i := uint32(0); i < ts.Config.MaxTextureCount; i++ {
			if ts.RegisteredTextures[i].ID == metadata.InvalidID {
				ref.Handle = i
				break
			}
		}

		// An empty slot was not found, bleat about it and boot out.
		if ref.Handle == metadata.InvalidID {
			core.LogError("texture system cannot hold any more textures. Adjust configuration to allow more")
			delete(ts.RegisteredTextureTable, name)
			return 0, false
		}

		t := ts.RegisteredTextures[ref.Handle]
		t.ID = ref.Handle
		t.Name = name
		if !skipLoad {
			if !ts.LoadTexture(name, t) {
				core.LogError("failed to load texture '%s'", name)
				delete(ts.RegisteredTextureTable, name)
				return 0, false
			}
		}
	}

	return ref.Handle, true
}

func (ts *TextureSystem) textureLoadJobStart(params interface{}, resultChan chan<- interface{}) error {
	loadParams, ok := params.(*metadata.TextureLoadParams)
	if !ok {
		return fmt.Errorf("texture load job started without *TextureLoadParams")
	}

	resourceParams := &metadata.ImageResourceParams{
		FlipY: true,
	}

	result, err := ts.assetManager.LoadAsset(loadParams.ResourceName, metadata.ResourceTypeImage, resourceParams)
	if err != nil {
		resultChan <- loadParams
		return err
	}

	loadParams.ImageResource = result

	resourceData, ok := loadParams.ImageResource.Data.(*metadata.ImageResourceData)
	if !ok {
		resultChan <- loadParams
		return fmt.Errorf("image resource for '%s' holds no pixel data", loadParams.ResourceName)
	}

	// Use a temporary texture to load into.
	loadParams.TempTexture.Width = resourceData.Width
	loadParams.TempTexture.Height = resourceData.Height
	loadParams.TempTexture.ChannelCount = resourceData.ChannelCount
	loadParams.TempTexture.MipLevels = 1
	loadParams.TempTexture.FilterMode = metadata.TextureFilterModeLinear

	loadParams.CurrentGeneration = loadParams.OutTexture.Generation
	loadParams.OutTexture.Generation = metadata.InvalidID

	// Check for transparency.
	totalSize := loadParams.TempTexture.Width * loadParams.TempTexture.Height * uint32(loadParams.TempTexture.ChannelCount)
	hasTransparency := false
	for i := uint32(3); i < totalSize; i += uint32(loadParams.TempTexture.ChannelCount) {
		if resourceData.Pixels[i] < 255 {
			hasTransparency = true
			break
		}
	}

	loadParams.TempTexture.Name = loadParams.ResourceName
	loadParams.TempTexture.Generation = metadata.InvalidID
	if hasTransparency {
		loadParams.TempTexture.Flags |= metadata.TextureFlagBits(metadata.TextureFlagHasTransparency)
	}

	resultChan <- loadParams

	return nil
}

func (ts *TextureSystem) textureLoadJobSuccess(paramsChan <-chan interface{}) {
	params, ok := <-paramsChan
	if !ok {
		return
	}
	textureParams, ok := params.(*metadata.TextureLoadParams)
	if !ok {
		core.LogError("texture load results are not of type *TextureLoadParams")
		return
	}

	resourceData, ok := textureParams.ImageResource.Data.(*metadata.ImageResourceData)
	if !ok {
		core.LogError("texture load for '%s' completed without pixel data", textureParams.ResourceName)
		return
	}

	// Acquire internal texture resources and upload to the backend.
	ts.renderer.TextureCreate(resourceData.Pixels, textureParams.TempTexture)

	// Swap the loaded texture into the registered slot, keeping its id.
	old := *textureParams.OutTexture
	*textureParams.OutTexture = *textureParams.TempTexture
	textureParams.OutTexture.ID = old.ID

	if old.InternalData != nil {
		ts.renderer.TextureDestroy(&old)
	}

	if textureParams.CurrentGeneration == metadata.InvalidID {
		textureParams.OutTexture.Generation = 0
	} else {
		textureParams.OutTexture.Generation = textureParams.CurrentGeneration + 1
	}

	core.LogDebug("successfully loaded texture '%s'", textureParams.ResourceName)

	// Clean up data.
	ts.assetManager.UnloadAsset(textureParams.ImageResource)
}

func (ts *TextureSystem) textureLoadJobFail(paramsChan <-chan interface{}) {
	params, ok := <-paramsChan
	if !ok {
		return
	}
	textureParams, ok := params.(*metadata.TextureLoadParams)
	if !ok {
		return
	}
	core.LogError("failed to load texture '%s'", textureParams.ResourceName)
	ts.assetManager.UnloadAsset(textureParams.ImageResource)
}

func isDefaultTextureName(name string) bool {
	switch name {
	case metadata.DEFAULT_TEXTURE_NAME,
		metadata.DEFAULT_DIFFUSE_TEXTURE_NAME,
		metadata.DEFAULT_SPECULAR_TEXTURE_NAME,
		metadata.DEFAULT_NORMAL_TEXTURE_NAME:
		return true
	}
	return false
}
