package metadata

type ResourceType int

/** @brief Resource types the asset manager can load from disk. */
const (
	/** @brief No resource type. Files with this type are ignored. */
	ResourceTypeNone ResourceType = iota
	/** @brief Raw binary resource type. */
	ResourceTypeBinary
	/** @brief Image resource type (.png, .jpg). */
	ResourceTypeImage
	/** @brief Material resource type (.amt). */
	ResourceTypeMaterial
	/** @brief Technique resource type (.toml). */
	ResourceTypeTechnique
)

/**
 * @brief A loaded resource. Every loader fills one of these with the
 * parsed payload in Data; the asset manager caches them by path.
 */
type Resource struct {
	/** @brief Identifies the loader that owns this resource, used on unload. */
	LoaderID uint32
	/** @brief The resource name, derived from the file name without extension. */
	Name string
	/** @brief The absolute path the resource was read from. */
	FullPath string
	/** @brief The payload size in bytes. */
	DataSize uint64
	/** @brief The parsed payload. Loaders document the concrete type. */
	Data interface{}
}
