// Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package env resolves the runtime environment of the toolkit on the host
// system: it identifies the system, loads the environment modules the system
// requires and computes the set of environment variables scientific
// codebases need there (MPI and NetCDF installation paths, library search
// paths, user defined exports). Loading never modifies the environment of
// the calling process; the resolved environment is applied explicitly.
package env

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/gvallee/go_hpc_env/internal/pkg/lmod"
	"github.com/gvallee/go_hpc_env/pkg/implem"
	"github.com/gvallee/go_hpc_env/pkg/mpi"
	"github.com/gvallee/go_hpc_env/pkg/platform"
	"github.com/gvallee/go_hpc_env/pkg/sys"
	"github.com/gvallee/go_hpc_env/pkg/usercfg"
	"github.com/gvallee/go_util/pkg/util"
)

// Environment gathers the resolved runtime environment of the host system.
type Environment struct {
	// Platform is the configuration of the system the environment was resolved for
	Platform *platform.Info

	// Vars is the set of environment variables the toolkit requires on the system
	Vars map[string]string
}

// Load resolves the runtime environment of the host system. The system is
// identified through the user settings or host detection, its environment
// modules are loaded, and the environment variables of its platform record
// are resolved against the module and host environments. User defined
// exports are applied last so they win over the platform definitions.
func Load(sysCfg *sys.Config) (*Environment, error) {
	registry := platform.NewRegistry()
	if sysCfg.RegistryFile != "" && util.FileExists(sysCfg.RegistryFile) {
		err := registry.AddFromFile(sysCfg.RegistryFile)
		if err != nil {
			return nil, err
		}
	}

	settings, err := usercfg.Load(sysCfg.ConfigFile)
	if err != nil {
		return nil, err
	}

	id := settings.System
	if id == "" {
		id, err = platform.Detect()
		if err != nil {
			return nil, err
		}
	}

	info, err := registry.Lookup(id)
	if err != nil {
		return nil, err
	}

	moduleVars := make(map[string]string)
	if len(info.Modules) > 0 {
		if lmod.Available() {
			moduleVars, err = lmod.LoadModules(info.Modules)
			if err != nil {
				return nil, fmt.Errorf("unable to load the modules of system %s: %s", id, err)
			}
		} else {
			log.Println("* environment modules not available, skipping module loading")
		}
	}

	e := new(Environment)
	platformInfo := *info
	e.Platform = &platformInfo
	e.Vars, err = resolve(e.Platform, moduleVars, os.Getenv)
	if err != nil {
		return nil, err
	}

	for name, value := range settings.Exports {
		e.Vars[name] = value
	}

	if e.Platform.CoresPerNode == 0 && e.Platform.Scheduler == platform.NoScheduler {
		e.Platform.CoresPerNode = runtime.NumCPU()
	}

	return e, nil
}

// resolve computes the environment variables of a platform record. Values
// are expanded against the module environment first and the host environment
// second; path-style variables are then extended fragment by fragment, each
// fragment also seeing the variables resolved so far.
func resolve(info *platform.Info, moduleVars map[string]string, hostEnv func(string) string) (map[string]string, error) {
	vars := make(map[string]string)
	for name, value := range moduleVars {
		vars[name] = value
	}

	lookup := func(name string) (string, bool) {
		if value, ok := moduleVars[name]; ok {
			return value, true
		}
		if value := hostEnv(name); value != "" {
			return value, true
		}
		return "", false
	}

	for _, name := range sortedNames(info.Env) {
		value, err := expand(info.Env[name], lookup)
		if err != nil {
			return nil, fmt.Errorf("unable to resolve %s for system %s: %s", name, info.ID, err)
		}
		vars[name] = value
	}

	pathLookup := func(name string) (string, bool) {
		if value, ok := vars[name]; ok {
			return value, true
		}
		return lookup(name)
	}
	pathNames := make([]string, 0, len(info.PathEnv))
	for name := range info.PathEnv {
		pathNames = append(pathNames, name)
	}
	sort.Strings(pathNames)
	for _, name := range pathNames {
		base, _ := pathLookup(name)
		for _, fragment := range info.PathEnv[name] {
			value, err := expand(fragment, pathLookup)
			if err != nil {
				return nil, fmt.Errorf("unable to resolve %s for system %s: %s", name, info.ID, err)
			}
			if base == "" {
				base = value
			} else {
				base = base + ":" + value
			}
		}
		vars[name] = base
	}

	return vars, nil
}

// expand substitutes ${NAME} references in value and reports the references
// that cannot be satisfied instead of silently producing a broken path.
func expand(value string, lookup func(string) (string, bool)) (string, error) {
	var missing []string
	expanded := os.Expand(value, func(name string) string {
		v, ok := lookup(name)
		if !ok {
			missing = append(missing, name)
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("environment variable %s is not defined", strings.Join(missing, ", "))
	}
	return expanded, nil
}

func sortedNames(m map[string]string) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// VarNames returns the names of the resolved variables in a stable order
func (e *Environment) VarNames() []string {
	return sortedNames(e.Vars)
}

// Apply exports the resolved variables into the environment of the calling
// process.
func (e *Environment) Apply() error {
	for _, name := range sortedNames(e.Vars) {
		err := os.Setenv(name, e.Vars[name])
		if err != nil {
			return fmt.Errorf("unable to set %s: %s", name, err)
		}
	}
	return nil
}

// Validate checks that the resolved environment points at usable software
// installations and identifies the MPI implementation the system provides.
func (e *Environment) Validate() (*implem.Info, error) {
	mpiHome := e.Vars["MPIHOME"]
	if mpiHome == "" {
		return nil, fmt.Errorf("MPIHOME is not defined for system %s", e.Platform.ID)
	}
	if !util.PathExists(mpiHome) {
		return nil, fmt.Errorf("the MPI installation directory %s does not exist", mpiHome)
	}

	netcdfHome := e.Vars["NETCDFHOME"]
	if netcdfHome != "" && !util.PathExists(netcdfHome) {
		return nil, fmt.Errorf("the NetCDF installation directory %s does not exist", netcdfHome)
	}

	mpiInfo, err := mpi.FromEnvironment(e.Vars)
	if err != nil {
		return nil, fmt.Errorf("unable to identify the MPI implementation under %s: %s", mpiHome, err)
	}
	return &mpiInfo, nil
}
