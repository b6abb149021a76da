package assets

import "github.com/spaghettifunk/lume/engine/renderer/metadata"

// Loader turns a file on disk into a typed resource. One loader is
// registered per resource type.
type Loader interface {
	Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error)
	Unload(*metadata.Resource) error
}
