package loaders

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/lume/engine/renderer/metadata"
)

type TechniqueLoader struct{}

func (tl *TechniqueLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := &metadata.TechniqueConfig{}
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("technique loader: parse '%s': %w", path, err)
	}
	if config.Name == "" {
		return nil, fmt.Errorf("technique loader: '%s' is missing a name", path)
	}
	if len(config.Passes) == 0 {
		return nil, fmt.Errorf("technique loader: '%s' declares no passes", path)
	}

	return &metadata.Resource{
		Name:     config.Name,
		FullPath: path,
		DataSize: uint64(len(data)),
		Data:     config,
	}, nil
}

func (tl *TechniqueLoader) Unload(resource *metadata.Resource) error {
	if resource != nil {
		resource.Data = nil
		resource.DataSize = 0
	}
	return nil
}
