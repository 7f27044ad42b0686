// Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package mpi

import (
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/gvallee/go_hpc_env/internal/pkg/mpich"
	"github.com/gvallee/go_hpc_env/internal/pkg/mvapich2"
	"github.com/gvallee/go_hpc_env/internal/pkg/openmpi"
	"github.com/gvallee/go_hpc_env/pkg/app"
	"github.com/gvallee/go_hpc_env/pkg/implem"
	"github.com/gvallee/go_util/pkg/util"
)

// Config represents a configuration of MPI for a target platform
type Config struct {
	// Implem gathers information about the MPI implementation to use
	Implem implem.Info

	// UserMpirunArgs is a list of extra arguments defined by the user to pass to the mpirun commands
	UserMpirunArgs []string
}

// GetPathToMpirun returns the path to mpirun for a given MPI implementation
func GetPathToMpirun(mpiCfg *implem.Info) (string, error) {
	// Sanity checks
	if mpiCfg == nil || mpiCfg.InstallDir == "" {
		return "", fmt.Errorf("invalid parameter(s)")
	}

	path := filepath.Join(mpiCfg.InstallDir, "bin", "mpirun")
	if !util.FileExists(path) {
		return "", fmt.Errorf("unable to find mpirun under %s", mpiCfg.InstallDir)
	}

	return path, nil
}

// GetMpirunArgs returns the arguments mpirun requires to start an
// application, including the application binary and its own arguments
func GetMpirunArgs(mpiCfg *implem.Info, appInfo *app.Info) ([]string, error) {
	if appInfo == nil || appInfo.BinPath == "" {
		return nil, fmt.Errorf("undefined application")
	}

	var args []string
	if mpiCfg != nil {
		switch mpiCfg.ID {
		case implem.OMPI:
			args = append(args, openmpi.GetExtraMpirunArgs()...)
		case implem.MVAPICH2:
			args = append(args, mvapich2.GetExtraMpirunArgs()...)
		case implem.MPICH:
			args = append(args, mpich.GetExtraMpirunArgs()...)
		}
	}

	args = append(args, appInfo.BinPath)
	args = append(args, appInfo.BinArgs...)
	return args, nil
}

// Detect figures out the details about the default MPI implementation
// available on the host, i.e., the one providing the mpirun command that is
// on the PATH
func Detect() (*implem.Info, error) {
	mpirunPath, err := exec.LookPath("mpirun")
	if err != nil {
		return nil, fmt.Errorf("unable to find mpirun: %s", err)
	}

	mpiBinDir := filepath.Dir(mpirunPath)
	// We assume that MPI was not installed in a system directory where
	// binaries and libraries are in totally different directories
	if filepath.Base(mpiBinDir) != "bin" {
		return nil, fmt.Errorf("%s is not a valid MPI installation", mpiBinDir)
	}

	mpiInfo := new(implem.Info)
	mpiInfo.InstallDir = filepath.Dir(mpiBinDir)
	err = mpiInfo.Load()
	if err != nil {
		return nil, err
	}

	return mpiInfo, nil
}

// DetectFromDir figures out which MPI implementation is installed in a given
// directory and which version it is
func DetectFromDir(dir string) (implem.Info, error) {
	m := implem.Info{
		InstallDir: dir,
	}
	err := m.Load()
	if err != nil {
		return m, err
	}
	return m, nil
}

// FromEnvironment identifies the MPI implementation a resolved environment
// points at through its MPIHOME variable
func FromEnvironment(vars map[string]string) (implem.Info, error) {
	mpiHome := vars["MPIHOME"]
	if mpiHome == "" {
		return implem.Info{}, fmt.Errorf("MPIHOME is not defined")
	}
	return DetectFromDir(mpiHome)
}
