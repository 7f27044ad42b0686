// Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package platform describes the HPC systems the toolkit knows how to run
// on: which compiler and batch scheduler a system uses, the shape of its
// compute nodes and the environment that must be set up on it. The built-in
// table covers the systems the toolkit is routinely used on; site specific
// systems can be added through a YAML registry file.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gvallee/go_hpc_env/internal/pkg/lmod"
	"gopkg.in/yaml.v3"
)

const (
	// SlurmScheduler identifies systems whose jobs are submitted through Slurm
	SlurmScheduler = "slurm"

	// PbsScheduler identifies systems whose jobs are submitted through PBS
	PbsScheduler = "pbs"

	// NoScheduler identifies systems where jobs run directly on the host
	NoScheduler = ""

	// IntelCompiler identifies systems where codebases are built with the Intel compilers
	IntelCompiler = "intel"

	// GnuCompiler identifies systems where codebases are built with the GNU compilers
	GnuCompiler = "gnu"

	// OsxArm64ID is the identifier of Apple arm64 hosts without a scheduler
	OsxArm64ID = "osx_arm64"

	// LinuxX8664ID is the identifier of generic Linux x86_64 hosts without Lmod
	LinuxX8664ID = "linux_x86_64"
)

// Info gathers the configuration of a system the toolkit can run on.
type Info struct {
	// ID is the identifier of the system (e.g., expanse)
	ID string `yaml:"id"`

	// Compiler is the compiler family used on the system
	Compiler string `yaml:"compiler"`

	// Scheduler is the batch scheduler of the system, empty when jobs run directly on the host
	Scheduler string `yaml:"scheduler,omitempty"`

	// DefaultPartition is the partition jobs are submitted to when they do not request one
	DefaultPartition string `yaml:"default_partition,omitempty"`

	// CoresPerNode is the number of cores on each compute node, 0 when it must be detected on the host
	CoresPerNode int `yaml:"cores_per_node,omitempty"`

	// MemGBPerNode is the amount of memory in gigabytes on each compute node
	MemGBPerNode int `yaml:"mem_gb_per_node,omitempty"`

	// MaxWalltime is the longest walltime a job can request in HH:MM:SS format, empty when unlimited
	MaxWalltime string `yaml:"max_walltime,omitempty"`

	// Modules is the list of environment modules to load on the system
	Modules []string `yaml:"modules,omitempty"`

	// ModulesFile is the path to a file listing additional modules to load,
	// one per line; a relative path is resolved against the directory of the
	// registry file naming it
	ModulesFile string `yaml:"modules_file,omitempty"`

	// Env is the set of environment variables the toolkit defines on the
	// system; values can reference variables from the module environment or
	// the host environment as ${VAR}
	Env map[string]string `yaml:"env,omitempty"`

	// PathEnv is the set of path-style variables to extend on the system;
	// each fragment is appended with a colon separator and can reference
	// resolved variables from Env as well as the host environment
	PathEnv map[string][]string `yaml:"path_env,omitempty"`
}

// Registry is the table of systems known to the toolkit.
type Registry struct {
	platforms map[string]*Info
}

// registryFile is the schema of a site registry file.
type registryFile struct {
	Platforms []Info `yaml:"platforms"`
}

// builtinPlatforms returns the systems supported out of the box.
func builtinPlatforms() []Info {
	return []Info{
		{
			ID:               "expanse",
			Compiler:         IntelCompiler,
			Scheduler:        SlurmScheduler,
			DefaultPartition: "compute",
			CoresPerNode:     128,
			MemGBPerNode:     256,
			MaxWalltime:      "48:00:00",
			Modules: []string{
				"slurm",
				"cpu/0.17.3b",
				"intel/19.1.3.304",
				"mvapich2/2.3.7",
				"netcdf-c/4.8.1",
				"netcdf-fortran/4.5.3",
			},
			Env: map[string]string{
				"MPIHOME":    "${MVAPICH2HOME}",
				"MPI_ROOT":   "${MVAPICH2HOME}",
				"NETCDFHOME": "${NETCDF_FORTRANHOME}",
				"NETCDF":     "${NETCDF_FORTRANHOME}",
			},
		},
		{
			ID:               "derecho",
			Compiler:         IntelCompiler,
			Scheduler:        PbsScheduler,
			DefaultPartition: "main",
			CoresPerNode:     128,
			MemGBPerNode:     256,
			MaxWalltime:      "12:00:00",
			Modules: []string{
				"intel",
				"netcdf",
			},
			Env: map[string]string{
				"MPIHOME":    "/opt/cray/pe/mpich/8.1.25/ofi/intel/19.0/",
				"NETCDFHOME": "${NETCDF}",
			},
			PathEnv: map[string][]string{
				"LD_LIBRARY_PATH": {"${NETCDFHOME}/lib"},
			},
		},
		{
			ID:               "perlmutter",
			Compiler:         GnuCompiler,
			Scheduler:        SlurmScheduler,
			DefaultPartition: "regular",
			CoresPerNode:     128,
			MemGBPerNode:     512,
			MaxWalltime:      "24:00:00",
			Env: map[string]string{
				"MPIHOME":    "/opt/cray/pe/mpich/8.1.28/ofi/gnu/12.3/",
				"NETCDFHOME": "/opt/cray/pe/netcdf/4.9.0.9/gnu/12.3/",
			},
			PathEnv: map[string][]string{
				"PATH":            {"${NETCDFHOME}/bin"},
				"LD_LIBRARY_PATH": {"${NETCDFHOME}/lib"},
				"LIBRARY_PATH":    {"${NETCDFHOME}/lib"},
			},
		},
		{
			ID:       OsxArm64ID,
			Compiler: GnuCompiler,
			Env: map[string]string{
				"MPIHOME":    "${CONDA_PREFIX}",
				"NETCDFHOME": "${CONDA_PREFIX}",
			},
			PathEnv: map[string][]string{
				"LD_LIBRARY_PATH": {"${NETCDFHOME}/lib"},
			},
		},
		{
			ID:       LinuxX8664ID,
			Compiler: GnuCompiler,
			Env: map[string]string{
				"MPIHOME":    "${CONDA_PREFIX}",
				"NETCDFHOME": "${CONDA_PREFIX}",
			},
			PathEnv: map[string][]string{
				"LD_LIBRARY_PATH": {"${NETCDFHOME}/lib"},
			},
		},
	}
}

// NewRegistry returns a registry populated with the built-in table of
// supported systems.
func NewRegistry() *Registry {
	r := new(Registry)
	r.platforms = make(map[string]*Info)
	for _, info := range builtinPlatforms() {
		i := info
		r.platforms[i.ID] = &i
	}
	return r
}

// AddFromFile merges the systems described in a YAML registry file into the
// registry. An entry whose identifier is already known replaces the existing
// definition, so a site file can override the built-in table.
func (r *Registry) AddFromFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read the registry file %s: %s", path, err)
	}

	var table registryFile
	err = yaml.Unmarshal(content, &table)
	if err != nil {
		return fmt.Errorf("unable to parse the registry file %s: %s", path, err)
	}

	for _, info := range table.Platforms {
		if info.ID == "" {
			return fmt.Errorf("the registry file %s has a system without an identifier", path)
		}
		i := info
		if i.ModulesFile != "" {
			listPath := i.ModulesFile
			if !filepath.IsAbs(listPath) {
				listPath = filepath.Join(filepath.Dir(path), listPath)
			}
			modules, err := lmod.ReadModuleList(listPath)
			if err != nil {
				return fmt.Errorf("unable to load the module list of %s: %s", i.ID, err)
			}
			i.Modules = append(i.Modules, modules...)
		}
		r.platforms[i.ID] = &i
	}
	return nil
}

// IDs returns the sorted identifiers of all the systems in the registry.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.platforms))
	for id := range r.platforms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Lookup returns the configuration of a system.
func (r *Registry) Lookup(id string) (*Info, error) {
	info, ok := r.platforms[id]
	if !ok {
		return nil, fmt.Errorf("unknown system %s (known systems: %s)", id, strings.Join(r.IDs(), ", "))
	}
	return info, nil
}

// Detect figures out the identity of the host system. Hosts running the Lmod
// module system advertise their identity through LMOD_SYSHOST or
// LMOD_SYSTEM_NAME; other hosts fall back to a generic identity based on the
// operating system and architecture.
func Detect() (string, error) {
	if lmod.Available() {
		name, err := lmod.SystemName()
		if err != nil {
			return "", fmt.Errorf("unable to identify the system: %s", err)
		}
		return name, nil
	}

	if runtime.GOOS == "darwin" && runtime.GOARCH == "arm64" {
		return OsxArm64ID, nil
	}
	if runtime.GOOS == "linux" && runtime.GOARCH == "amd64" {
		return LinuxX8664ID, nil
	}

	return "", fmt.Errorf("unsupported system (%s/%s)", runtime.GOOS, runtime.GOARCH)
}

// ParseWalltime converts a walltime in HH:MM:SS format into a duration.
func ParseWalltime(walltime string) (time.Duration, error) {
	tokens := strings.Split(walltime, ":")
	if len(tokens) != 3 {
		return 0, fmt.Errorf("invalid walltime %s (expected HH:MM:SS)", walltime)
	}

	var parts [3]int
	for i, token := range tokens {
		value, err := strconv.Atoi(token)
		if err != nil || value < 0 {
			return 0, fmt.Errorf("invalid walltime %s (expected HH:MM:SS)", walltime)
		}
		parts[i] = value
	}
	if parts[1] > 59 || parts[2] > 59 {
		return 0, fmt.Errorf("invalid walltime %s (expected HH:MM:SS)", walltime)
	}

	return time.Duration(parts[0])*time.Hour + time.Duration(parts[1])*time.Minute + time.Duration(parts[2])*time.Second, nil
}

// ValidateWalltime checks that a requested walltime does not exceed the
// longest walltime allowed on the system. Empty walltimes always pass, the
// scheduler then applies its own default.
func (i *Info) ValidateWalltime(requested string) error {
	if requested == "" || i.MaxWalltime == "" {
		return nil
	}

	req, err := ParseWalltime(requested)
	if err != nil {
		return err
	}
	limit, err := ParseWalltime(i.MaxWalltime)
	if err != nil {
		return fmt.Errorf("invalid walltime limit for system %s: %s", i.ID, err)
	}

	if req > limit {
		return fmt.Errorf("the requested walltime %s exceeds the %s limit on %s", requested, i.MaxWalltime, i.ID)
	}
	return nil
}
