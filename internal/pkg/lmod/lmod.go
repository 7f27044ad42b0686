// Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package lmod interacts with the Lmod environment module system that HPC
// systems use to expose compilers, MPI implementations and scientific
// libraries. Lmod cannot change the environment of a running process
// directly; instead its command emits shell code that this package parses to
// recover the environment variables a module defines.
package lmod

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/gvallee/go_exec/pkg/advexec"
	"github.com/gvallee/go_util/pkg/util"
)

// Available reports whether the Lmod module system can be used on the host.
func Available() bool {
	return runtime.GOOS == "linux" && os.Getenv("LMOD_DIR") != ""
}

// SystemName returns the name under which the host system advertises itself
// through Lmod.
func SystemName() (string, error) {
	name := os.Getenv("LMOD_SYSHOST")
	if name == "" {
		name = os.Getenv("LMOD_SYSTEM_NAME")
	}
	if name == "" {
		return "", fmt.Errorf("unable to find LMOD_SYSHOST or LMOD_SYSTEM_NAME in the environment")
	}
	return name, nil
}

// binPath returns the path to the lmod command. LMOD_CMD points straight at
// it on most systems; older installations only define LMOD_DIR.
func binPath() (string, error) {
	path := os.Getenv("LMOD_CMD")
	if path != "" {
		return path, nil
	}

	dir := os.Getenv("LMOD_DIR")
	if dir == "" {
		return "", fmt.Errorf("LMOD_DIR is not defined")
	}
	path = filepath.Join(dir, "..", "libexec", "lmod")
	if !util.FileExists(path) {
		return "", fmt.Errorf("unable to find the lmod command under %s", dir)
	}
	return path, nil
}

// run invokes the lmod command for the bash shell and returns the shell code
// it emits. Lmod reports module failures on stderr while still exiting with
// a success code, so stderr is checked for failure keywords.
func run(args ...string) (string, error) {
	lmodBin, err := binPath()
	if err != nil {
		return "", err
	}

	var cmd advexec.Advcmd
	cmd.BinPath = lmodBin
	cmd.CmdArgs = append(cmd.CmdArgs, "bash")
	cmd.CmdArgs = append(cmd.CmdArgs, args...)
	res := cmd.Run()
	if res.Err != nil {
		return "", fmt.Errorf("unable to execute lmod %s: %s (stderr: %s)", strings.Join(args, " "), res.Err, strings.TrimSpace(res.Stderr))
	}

	stderr := strings.ToLower(res.Stderr)
	if strings.Contains(stderr, "fail") || strings.Contains(stderr, "error") {
		return "", fmt.Errorf("error while running lmod %s: %s", strings.Join(args, " "), strings.TrimSpace(res.Stderr))
	}

	return res.Stdout, nil
}

// parseShellCode extracts the environment changes from the bash code emitted
// by lmod. Assignments and export statements update the variable set while
// unset statements remove variables from it.
func parseShellCode(code string, vars map[string]string) {
	for _, line := range strings.Split(code, "\n") {
		line = strings.TrimSuffix(strings.TrimSpace(line), ";")

		if strings.HasPrefix(line, "unset ") {
			delete(vars, strings.TrimSpace(strings.TrimPrefix(line, "unset ")))
			continue
		}

		line = strings.TrimPrefix(line, "export ")
		tokens := strings.SplitN(line, "=", 2)
		if len(tokens) != 2 || !validVariableName(tokens[0]) {
			continue
		}
		value := tokens[1]
		if strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") && len(value) > 1 {
			value = value[1 : len(value)-1]
		}
		vars[tokens[0]] = value
	}
}

func validVariableName(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			continue
		}
		if c >= '0' && c <= '9' && i > 0 {
			continue
		}
		return false
	}
	return true
}

// LoadModules resets the module environment and loads the requested modules,
// returning the set of environment variables they define.
func LoadModules(modules []string) (map[string]string, error) {
	vars := make(map[string]string)

	code, err := run("reset")
	if err != nil {
		return nil, err
	}
	parseShellCode(code, vars)

	for _, module := range modules {
		code, err = run("load", module)
		if err != nil {
			return nil, fmt.Errorf("unable to load module %s: %s", module, err)
		}
		parseShellCode(code, vars)
	}

	return vars, nil
}

// ReadModuleList reads a file listing one module per line. Blank lines and
// lines starting with '#' are skipped.
func ReadModuleList(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read the module list %s: %s", path, err)
	}

	var modules []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		modules = append(modules, line)
	}
	return modules, nil
}
