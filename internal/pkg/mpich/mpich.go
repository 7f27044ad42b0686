// Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package mpich

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gvallee/go_exec/pkg/advexec"
	"github.com/gvallee/go_util/pkg/util"
)

// ID is the internal ID for MPICH
const ID = "mpich"

// GetExtraMpirunArgs returns the extra mpirun arguments required by MPICH
func GetExtraMpirunArgs() []string {
	return nil
}

// parseVersionOutput extracts the version from the output of mpirun
// --version, which reports the HYDRA build details of MPICH.
func parseVersionOutput(output string) (string, error) {
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "Version:") {
			continue
		}
		tokens := strings.SplitN(line, "Version:", 2)
		return strings.TrimSpace(tokens[1]), nil
	}
	return "", fmt.Errorf("unable to find the version in the mpirun output")
}

// DetectFromDir tries to figure out which version of MPICH is installed in a
// given directory
func DetectFromDir(dir string, env []string) (string, string, error) {
	targetBin := filepath.Join(dir, "bin", "mpirun")
	if !util.FileExists(targetBin) {
		return "", "", fmt.Errorf("%s does not exist, not an MPICH implementation", targetBin)
	}

	var versionCmd advexec.Advcmd
	versionCmd.BinPath = targetBin
	versionCmd.CmdArgs = append(versionCmd.CmdArgs, "--version")
	versionCmd.ExecDir = filepath.Join(dir, "bin")
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
