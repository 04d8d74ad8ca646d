// Package config loads the settings of the shell's command line interface.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"sigs.k8s.io/yaml"
)

//go:embed default/config.yaml
var defaultConfigData []byte

// Name of the configuration file in the home directory.
const FileName = ".minish.yaml"

type Config struct {
	Prompt      string `json:"prompt" validate:"required"`
	HistoryFile string `json:"history_file"`
	Color       string `json:"color" validate:"oneof=auto always never"`
	Trace       bool   `json:"trace"`
	// Assigned in sorted key order at startup.
	Env map[string]string `json:"env" validate:"dive,keys,required,endkeys"`
}

// Validate the configuration for basic semantic errors.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	})
	if err := validate.Struct(c); err != nil {
		return err
	}
	for name := range c.Env {
		if strings.Contains(name, "=") {
			return fmt.Errorf("env: variable name %q contains \"=\"", name)
		}
	}
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	var out Config
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}

// DefaultPath returns the path of the configuration file in the home
// directory, or "" if the home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, FileName)
}
