// Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package mvapich2

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gvallee/go_exec/pkg/advexec"
	"github.com/gvallee/go_util/pkg/util"
)

// ID is the internal ID for MVAPICH2
const ID = "mvapich2"

// GetExtraMpirunArgs returns the extra mpirun arguments required by MVAPICH2
func GetExtraMpirunArgs() []string {
	return nil
}

// parseVersionOutput extracts the version from the output of the
// mpichversion command shipped with MVAPICH2.
func parseVersionOutput(output string) (string, error) {
	lines := strings.Split(output, "\n")
	if !strings.HasPrefix(lines[0], "MVAPICH2 Version:") {
		return "", fmt.Errorf("unable to find the version in the mpichversion output")
	}
	return strings.TrimSpace(strings.TrimPrefix(lines[0], "MVAPICH2 Version:")), nil
}

// DetectFromDir tries to figure out which version of MVAPICH2 is installed
// in a given directory
func DetectFromDir(dir string, env []string) (string, string, error) {
	targetBin := filepath.Join(dir, "bin", "mpichversion")
	if !util.FileExists(targetBin) {
		return "", "", fmt.Errorf("%s does not exist, not an MVAPICH2 implementation", targetBin)
	}

	var versionCmd advexec.Advcmd
	versionCmd.BinPath = targetBin
	versionCmd.Env = env
	if env == nil {
		versionCmd.Env = append(versionCmd.Env, "PATH="+filepath.Join(dir, "bin")+":"+os.Getenv("PATH"))
		versionCmd.Env = append(versionCmd.Env, "LD_LIBRARY_PATH="+filepath.Join(dir, "lib")+":"+os.Getenv("LD_LIBRARY_PATH"))
	}
	res := versionCmd.Run()
	if res.Err != nil {
		return "", "", fmt.Errorf("unable to execute %s: %w", targetBin, res.Err)
	}

	version, err := parseVersionOutput(res.Stdout)
	if err != nil {
		return "", "", fmt.Errorf("parseVersionOutput() failed: %w", err)
	}
	return ID, version, nil
}
