// Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package openmpi

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gvallee/go_exec/pkg/advexec"
	"github.com/gvallee/go_util/pkg/util"
)

// ID is the internal ID for Open MPI
const ID = "openmpi"

// GetExtraMpirunArgs returns the extra mpirun arguments required by Open MPI
func GetExtraMpirunArgs() []string {
	var extraArgs []string
	// We always prefer UCX rather than openib
	extraArgs = append(extraArgs, "--mca")
	extraArgs = append(extraArgs, "btl")
	extraArgs = append(extraArgs, "^openib")
	extraArgs = append(extraArgs, "--mca")
	extraArgs = append(extraArgs, "pml")
	extraArgs = append(extraArgs, "ucx")
	return extraArgs
}

// parseVersionOutput extracts the version from the output of ompi_info
// --version.
func parseVersionOutput(output string) (string, error) {
	lines := strings.Split(output, "\n")
	if !strings.HasPrefix(lines[0], "Open MPI v") {
		return "", fmt.Errorf("unable to find the version in the ompi_info output")
	}
	return strings.TrimSpace(strings.TrimPrefix(lines[0], "Open MPI v")), nil
}

// DetectFromDir tries to figure out which version of Open MPI is installed
// in a given directory
func DetectFromDir(dir string, env []string) (string, string, error) {
	targetBin := filepath.Join(dir, "bin", "ompi_info")
	if !util.FileExists(targetBin) {
		return "", "", fmt.Errorf("%s does not exist, not an Open MPI implementation", targetBin)
	}

	var versionCmd advexec.Advcmd
	versionCmd.BinPath = targetBin
	versionCmd.CmdArgs = append(versionCmd.CmdArgs, "--version")
	versionCmd.Env = env
	if env == nil {
		versionCmd.Env = append(versionCmd.Env, "PATH="+filepath.Join(dir, "bin")+":"+os.Getenv("PATH"))
		versionCmd.Env = append(versionCmd.Env, "LD_LIBRARY_PATH="+filepath.Join(dir, "lib")+":"+os.Getenv("LD_LIBRARY_PATH"))
	}
	res := versionCmd.Run()
	if res.Err != nil {
		return "", "", fmt.Errorf("unable to execute %s --version: %w", targetBin, res.Err)
	}

	version, err := parseVersionOutput(res.Stdout)
	if err != nil {
		return "", "", fmt.Errorf("parseVersionOutput() failed: %w", err)
	}
	return ID, version, nil
}
