// Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package implem

import (
	"fmt"

	"github.com/gvallee/go_hpc_env/internal/pkg/mpich"
	"github.com/gvallee/go_hpc_env/internal/pkg/mvapich2"
	"github.com/gvallee/go_hpc_env/internal/pkg/openmpi"
)

const (
	// OMPI is the identifier for Open MPI
	OMPI = openmpi.ID

	// MVAPICH2 is the identifier for MVAPICH2
	MVAPICH2 = mvapich2.ID

	// MPICH is the identifier for MPICH
	MPICH = mpich.ID
)

// Info gathers all data about a specific MPI implementation
type Info struct {
	// ID is the string identifying the MPI implementation
	ID string

	// Version is the version of the MPI implementation
	Version string

	// InstallDir is where the MPI implementation is installed
	InstallDir string
}

// IsMPI checks if the information passed in describes a supported MPI
// implementation
func IsMPI(i *Info) bool {
	if i != nil && (i.ID == OMPI || i.ID == MVAPICH2 || i.ID == MPICH) {
		return true
	}

	return false
}

// Load figures out the details about the MPI implementation installed in
// InstallDir, i.e., which implementation it is and its version. When the
// identity is already known the function does nothing, so it is safe to call
// it on a fully described implementation.
func (i *Info) Load() error {
	if i.InstallDir == "" {
		return fmt.Errorf("the install directory of the MPI implementation is undefined")
	}
	if i.ID != "" && i.Version != "" {
		return nil
	}

	var err error
	i.ID, i.Version, err = openmpi.DetectFromDir(i.InstallDir, nil)
	if err == nil {
		return nil
	}
	// Always check for MVAPICH before MPICH since they share some code,
	// otherwise MVAPICH is not correctly detected
	i.ID, i.Version, err = mvapich2.DetectFromDir(i.InstallDir, nil)
	if err == nil {
		return nil
	}
	i.ID, i.Version, err = mpich.DetectFromDir(i.InstallDir, nil)
	if err == nil {
		return nil
	}

	return fmt.Errorf("unable to detect the MPI implementation from %s", i.InstallDir)
}
