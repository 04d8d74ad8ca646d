package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Load reads the configuration at path from fsys. Fields missing from the
// file keep their default values; a missing file yields the defaults.
func Load(fsys afero.Fs, path string) (*Config, error) {
	out := Default()
	if path == "" {
		return out, nil
	}
	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, out); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return out, nil
}
