package metadata

/** @brief Controls when a render surface is redrawn. */
type RenderSurfaceUpdateMode int

const (
	/** @brief The surface is only redrawn when explicitly queued. */
	SurfaceUpdateManual RenderSurfaceUpdateMode = iota
	/** @brief The surface is redrawn when something samples its texture. */
	SurfaceUpdateVisible
	/** @brief The surface is redrawn every frame. */
	SurfaceUpdateAlways
)

/**
 * @brief A render surface binds a writeable texture to a viewport so
 * the renderer draws into the texture instead of the main target.
 * Surfaces are created and destroyed through the renderer system.
 */
type RenderSurface struct {
	/** @brief The unique surface identifier. */
	ID uint32
	/** @brief The texture rendered into. Must be writeable. */
	Texture *Texture
	/** @brief The viewport describing what to render. */
	Viewport *Viewport
	/** @brief When the surface is redrawn. */
	UpdateMode RenderSurfaceUpdateMode
	/** @brief Set when a manual-update surface has been queued for the next frame. */
	UpdateQueued bool
}
