// Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package usercfg manages the per-user settings of the toolkit. The settings
// live in a YAML file under the toolkit root and hold what cannot be derived
// from the host itself: a forced system identity for hosts the detection
// logic does not know, and extra environment variables pointing at external
// codebases the user has installed.
package usercfg

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gvallee/go_util/pkg/util"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// SystemEnvVar is the environment variable overriding the system identity
// without editing the settings file.
const SystemEnvVar = "HPC_ENV_SYSTEM"

// Config gathers the per-user settings of the toolkit.
type Config struct {
	// System forces the identity of the host system instead of detecting it
	System string `yaml:"system,omitempty"`

	// Exports is a set of extra environment variables to define on top of
	// the ones the system requires
	Exports map[string]string `yaml:"exports,omitempty"`
}

// Load reads the settings file at path. A missing file is not an error, the
// returned settings are simply empty. The HPC_ENV_SYSTEM environment
// variable takes precedence over the system recorded in the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("system", "")
	err := v.BindEnv("system", SystemEnvVar)
	if err != nil {
		return nil, fmt.Errorf("unable to bind %s: %s", SystemEnvVar, err)
	}

	cfg := new(Config)
	if util.FileExists(path) {
		err = v.ReadInConfig()
		if err != nil {
			return nil, fmt.Errorf("unable to read the settings file %s: %s", path, err)
		}

		// viper lowercases every key it manages; the exports are decoded
		// straight from the file so the variable names keep their case.
		var content []byte
		content, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("unable to read the settings file %s: %s", path, err)
		}
		err = yaml.Unmarshal(content, cfg)
		if err != nil {
			return nil, fmt.Errorf("unable to parse the settings file %s: %s", path, err)
		}
	}

	cfg.System = v.GetString("system")
	if cfg.Exports == nil {
		cfg.Exports = make(map[string]string)
	}
	return cfg, nil
}

// Save writes the settings to path, creating the parent directory when
// needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return fmt.Errorf("unable to create %s: %s", dir, err)
	}

	content, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("unable to encode the settings: %s", err)
	}
	err = os.WriteFile(path, content, 0644)
	if err != nil {
		return fmt.Errorf("unable to write the settings file %s: %s", path, err)
	}
	return nil
}

// AddExport records an extra environment variable in the settings.
func (c *Config) AddExport(name string, value string) {
	if c.Exports == nil {
		c.Exports = make(map[string]string)
	}
	c.Exports[name] = value
}
