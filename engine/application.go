package engine

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/lume/engine/core"
)

/**
 * @brief Settings for one engine run, usually loaded from a lume.toml
 * file next to the binary. Zero values fall back to the defaults from
 * DefaultApplicationConfig.
 */
type ApplicationConfig struct {
	// The application name used in logs and the renderer.
	Name string `toml:"name"`
	// Dimensions of the main render target.
	StartWidth  uint32 `toml:"width"`
	StartHeight uint32 `toml:"height"`
	// Root directory asset names resolve against.
	AssetPath string `toml:"asset_path"`
	// Directory baked images are written to.
	OutputPath string `toml:"output_path"`
	// Path of the bake catalog database. Empty disables the catalog.
	CatalogPath string `toml:"catalog_path"`
	// Minimum log level: debug, info, warn or error.
	LogLevel string `toml:"log_level"`
	// Stop after this many frames. Zero runs until a quit event.
	MaxFrames uint64 `toml:"max_frames"`
	// Upper bound on frames per second. Zero leaves the loop uncapped.
	FrameCap uint32 `toml:"frame_cap"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Name:        "lume",
		StartWidth:  1280,
		StartHeight: 720,
		AssetPath:   "assets",
		OutputPath:  "output",
		LogLevel:    "info",
	}
}

// LoadApplicationConfig reads a TOML config file and merges it over the
// defaults. A missing file is not an error; the defaults are returned.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	config := DefaultApplicationConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			core.LogWarn("config file '%s' not found, using defaults", path)
			return config, nil
		}
		return nil, fmt.Errorf("func LoadApplicationConfig - failed to read '%s': %w", path, err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("func LoadApplicationConfig - failed to parse '%s': %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *ApplicationConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application config needs a name")
	}
	if c.StartWidth == 0 || c.StartHeight == 0 {
		return fmt.Errorf("application config needs positive dimensions, got %dx%d", c.StartWidth, c.StartHeight)
	}
	if c.AssetPath == "" {
		return fmt.Errorf("application config needs an asset path")
	}
	return nil
}
