// Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package sys

import (
	"fmt"
	"os"
	"path/filepath"
)

// RootEnvVar is the environment variable overriding the root directory where
// the toolkit keeps its configuration and state.
const RootEnvVar = "HPC_ENV_ROOT"

// DefaultRootDirName is the name of the toolkit directory created in the
// user's home directory when HPC_ENV_ROOT is not set.
const DefaultRootDirName = ".go_hpc_env"

// Config represents the system configuration
type Config struct {
	// Root is the directory where the toolkit keeps its configuration and state
	Root string

	// ScratchDir is the path to a scratch directory on the system (most HPC systems have one)
	ScratchDir string

	// ExternalsDir is the directory where external codebases are cloned
	ExternalsDir string

	// ConfigFile is the path to the per-user settings file
	ConfigFile string

	// RegistryFile is the path to the site platform registry file (optional)
	RegistryFile string

	// CurPath is the path to the current directory
	CurPath string
}

// DefaultConfig returns the system configuration of the host, deriving all
// the toolkit paths from the root directory.
func DefaultConfig() (Config, error) {
	var cfg Config

	cfg.Root = os.Getenv(RootEnvVar)
	if cfg.Root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("unable to detect the home directory: %s", err)
		}
		cfg.Root = filepath.Join(home, DefaultRootDirName)
	}

	cfg.ConfigFile = filepath.Join(cfg.Root, "settings.yaml")
	cfg.RegistryFile = filepath.Join(cfg.Root, "platforms.yaml")
	cfg.ExternalsDir = filepath.Join(cfg.Root, "externals")

	cfg.ScratchDir = os.Getenv("SCRATCH")
	if cfg.ScratchDir == "" {
		cfg.ScratchDir = os.TempDir()
	}

	var err error
	cfg.CurPath, err = os.Getwd()
	if err != nil {
		return cfg, fmt.Errorf("unable to detect the current directory: %s", err)
	}

	return cfg, nil
}
