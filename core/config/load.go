package config

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Load loads the configuration from the directory.
//
// If the directory has no configuration the defaults are returned along with
// an error wrapping fs.ErrNotExist.
func Load(path string) (*Configuration, error) {
	// If given the path to a config.yaml file, move back up a level.
	if filepath.Base(path) == ConfigurationName {
		path = filepath.Dir(path)
	}

	return LoadFs(afero.NewBasePathFs(afero.NewOsFs(), path))
}

// LoadFs loads the configuration from the root of the filesystem.
func LoadFs(configFs afero.Fs) (*Configuration, error) {
	out := defaultConfig()
	out.configFs = configFs

	configContents, err := afero.ReadFile(configFs, ConfigurationName)
	if err != nil {
		return out, err
	}
	if err := yaml.UnmarshalStrict(configContents, out); err != nil {
		return nil, fmt.Errorf("couldn't parse %s: %w", ConfigurationName, err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigurationName, err)
	}
	return out, nil
}

// Initialize writes the default configuration to the directory if it doesn't
// have one yet and loads it.
func Initialize(path string, logger *log.Logger) (*Configuration, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(path, 0700); err != nil {
		return nil, err
	}
	return InitializeFs(afero.NewBasePathFs(osFs, path), logger)
}

// InitializeFs is Initialize for the root of the filesystem.
func InitializeFs(configFs afero.Fs, logger *log.Logger) (*Configuration, error) {
	exists, err := afero.Exists(configFs, ConfigurationName)
	switch {
	case err != nil:
		return nil, err
	case exists:
		logger.Printf("%s already exists, skipping\n", ConfigurationName)
	default:
		logger.Printf("Writing %s\n", ConfigurationName)
		if err := afero.WriteFile(configFs, ConfigurationName, defaultConfigData, 0600); err != nil {
			return nil, err
		}
	}

	return LoadFs(configFs)
}
