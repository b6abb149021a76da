package loaders

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spaghettifunk/lume/engine/core"
	"github.com/spaghettifunk/lume/engine/math"
	"github.com/spaghettifunk/lume/engine/renderer/metadata"
)

type MaterialLoader struct{}

func (ml *MaterialLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	mCfg, err := parseAMTFile(path)
	if err != nil {
		return nil, err
	}
	return &metadata.Resource{
		Name:     mCfg.Name,
		FullPath: path,
		DataSize: 0,
		Data:     mCfg,
	}, nil
}

func (ml *MaterialLoader) Unload(resource *metadata.Resource) error {
	if resource != nil {
		resource.Data = nil
		resource.DataSize = 0
	}
	return nil
}

// parseAMTFile reads a material description in key=value form. Lines
// starting with '#' are comments.
func parseAMTFile(filename string) (*metadata.MaterialConfig, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	materialConfig := &metadata.MaterialConfig{
		DiffuseColour: math.NewVec4(1.0, 1.0, 1.0, 1.0),
		Shininess:     8.0,
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}

		// Split key-value pairs by the first "=" sign
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			core.LogWarn("skipping invalid material line: %s", line)
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "name":
			materialConfig.Name = value
		case "technique":
			materialConfig.TechniqueName = value
		case "diffuse_colour":
			colourValues := strings.Fields(value)
			if len(colourValues) != 4 {
				return nil, fmt.Errorf("invalid diffuse_colour, expected 4 values: %s", line)
			}
			channels := make([]float32, 4)
			for i, v := range colourValues {
				f, err := strconv.ParseFloat(v, 32)
				if err != nil {
					return nil, fmt.Errorf("invalid diffuse_colour value: %s", v)
				}
				channels[i] = float32(f)
			}
			materialConfig.DiffuseColour = math.NewVec4(channels[0], channels[1], channels[2], channels[3])
		case "shininess":
			shininess, err := strconv.ParseFloat(value, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid shininess value: %s", value)
			}
			materialConfig.Shininess = float32(shininess)
		case "diffuse_map_name":
			materialConfig.DiffuseMapName = value
		case "specular_map_name":
			materialConfig.SpecularMapName = value
		case "normal_map_name":
			materialConfig.NormalMapName = value
		case "autorelease":
			autoRelease, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("invalid autorelease value: %s", value)
			}
			materialConfig.AutoRelease = autoRelease
		default:
			core.LogWarn("unknown key '%s' found in '%s'. Skipping...", key, filename)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if err := validateMaterialConfig(materialConfig); err != nil {
		return nil, err
	}
	return materialConfig, nil
}

func validateMaterialConfig(config *metadata.MaterialConfig) error {
	if config.Name == "" {
		return fmt.Errorf("material config is missing a name")
	}
	if config.TechniqueName == "" {
		config.TechniqueName = metadata.DefaultTechniqueName
	}
	return nil
}
