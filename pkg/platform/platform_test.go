// Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestLookupBuiltinPlatforms(t *testing.T) {
	tests := []struct {
		id                string
		expectedCompiler  string
		expectedScheduler string
		expectedPartition string
		expectedCores     int
	}{
		{
			id:                "expanse",
			expectedCompiler:  IntelCompiler,
			expectedScheduler: SlurmScheduler,
			expectedPartition: "compute",
			expectedCores:     128,
		},
		{
			id:                "derecho",
			expectedCompiler:  IntelCompiler,
			expectedScheduler: PbsScheduler,
			expectedPartition: "main",
			expectedCores:     128,
		},
		{
			id:                "perlmutter",
			expectedCompiler:  GnuCompiler,
			expectedScheduler: SlurmScheduler,
			expectedPartition: "regular",
			expectedCores:     128,
		},
		{
			id:                OsxArm64ID,
			expectedCompiler:  GnuCompiler,
			expectedScheduler: NoScheduler,
			expectedPartition: "",
			expectedCores:     0,
		},
		{
			id:                LinuxX8664ID,
			expectedCompiler:  GnuCompiler,
			expectedScheduler: NoScheduler,
			expectedPartition: "",
			expectedCores:     0,
		},
	}

	registry := NewRegistry()
	for _, tt := range tests {
		info, err := registry.Lookup(tt.id)
		if err != nil {
			t.Fatalf("Lookup(%s) failed: %s", tt.id, err)
		}
		if info.Compiler != tt.expectedCompiler {
			t.Fatalf("%s: compiler is %s instead of %s", tt.id, info.Compiler, tt.expectedCompiler)
		}
		if info.Scheduler != tt.expectedScheduler {
			t.Fatalf("%s: scheduler is %s instead of %s", tt.id, info.Scheduler, tt.expectedScheduler)
		}
		if info.DefaultPartition != tt.expectedPartition {
			t.Fatalf("%s: default partition is %s instead of %s", tt.id, info.DefaultPartition, tt.expectedPartition)
		}
		if info.CoresPerNode != tt.expectedCores {
			t.Fatalf("%s: cores per node is %d instead of %d", tt.id, info.CoresPerNode, tt.expectedCores)
		}
		if info.Env["MPIHOME"] == "" {
			t.Fatalf("%s: MPIHOME is not defined", tt.id)
		}
	}
}

func TestLookupUnknownPlatform(t *testing.T) {
	registry := NewRegistry()
	_, err := registry.Lookup("summit")
	if err == nil {
		t.Fatalf("Lookup() did not fail on an unknown system")
	}
}

func TestAddFromFile(t *testing.T) {
	content := `platforms:
  - id: anvil
    compiler: gnu
    scheduler: slurm
    default_partition: wholenode
    cores_per_node: 128
    mem_gb_per_node: 256
    max_walltime: "96:00:00"
    env:
      MPIHOME: ${MPI_HOME}
      NETCDFHOME: ${NETCDF_HOME}
  - id: expanse
    compiler: gnu
    scheduler: slurm
    default_partition: shared
    cores_per_node: 128
`
	path := filepath.Join(t.TempDir(), "platforms.yaml")
	err := os.WriteFile(path, []byte(content), 0644)
	if err != nil {
		t.Fatalf("unable to create the registry file: %s", err)
	}

	registry := NewRegistry()
	err = registry.AddFromFile(path)
	if err != nil {
		t.Fatalf("AddFromFile() failed: %s", err)
	}

	info, err := registry.Lookup("anvil")
	if err != nil {
		t.Fatalf("Lookup(anvil) failed: %s", err)
	}
	if info.Scheduler != SlurmScheduler || info.DefaultPartition != "wholenode" || info.MaxWalltime != "96:00:00" {
		t.Fatalf("the anvil system was not loaded correctly: %+v", info)
	}
	if info.Env["MPIHOME"] != "${MPI_HOME}" {
		t.Fatalf("the anvil environment was not loaded correctly: %+v", info.Env)
	}

	// The site file redefines expanse and must win over the built-in table
	info, err = registry.Lookup("expanse")
	if err != nil {
		t.Fatalf("Lookup(expanse) failed: %s", err)
	}
	if info.Compiler != GnuCompiler || info.DefaultPartition != "shared" {
		t.Fatalf("the site definition of expanse did not replace the built-in one: %+v", info)
	}
}

func TestAddFromFileModuleList(t *testing.T) {
	dir := t.TempDir()
	list := "# modules for the anvil system\ngcc/11.2.0\nopenmpi/4.1.6\n\nnetcdf-fortran/4.5.4\n"
	err := os.WriteFile(filepath.Join(dir, "anvil.lmod"), []byte(list), 0644)
	if err != nil {
		t.Fatalf("unable to create the module list: %s", err)
	}

	content := `platforms:
  - id: anvil
    compiler: gnu
    scheduler: slurm
    modules_file: anvil.lmod
`
	path := filepath.Join(dir, "platforms.yaml")
	err = os.WriteFile(path, []byte(content), 0644)
	if err != nil {
		t.Fatalf("unable to create the registry file: %s", err)
	}

	registry := NewRegistry()
	err = registry.AddFromFile(path)
	if err != nil {
		t.Fatalf("AddFromFile() failed: %s", err)
	}

	info, err := registry.Lookup("anvil")
	if err != nil {
		t.Fatalf("Lookup(anvil) failed: %s", err)
	}
	expected := []string{"gcc/11.2.0", "openmpi/4.1.6", "netcdf-fortran/4.5.4"}
	if len(info.Modules) != len(expected) {
		t.Fatalf("the anvil system has %d module(s) instead of %d", len(info.Modules), len(expected))
	}
	for idx, module := range expected {
		if info.Modules[idx] != module {
			t.Fatalf("module %d is %s instead of %s", idx, info.Modules[idx], module)
		}
	}
}

func TestAddFromFileInvalid(t *testing.T) {
	registry := NewRegistry()

	err := registry.AddFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("AddFromFile() did not fail on a missing file")
	}

	path := filepath.Join(t.TempDir(), "platforms.yaml")
	err = os.WriteFile(path, []byte("platforms:\n  - compiler: gnu\n"), 0644)
	if err != nil {
		t.Fatalf("unable to create the registry file: %s", err)
	}
	err = registry.AddFromFile(path)
	if err == nil {
		t.Fatalf("AddFromFile() did not fail on a system without an identifier")
	}
}

func TestDetectLmodIdentity(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("Lmod system naming only applies to Linux hosts")
	}
	t.Setenv("LMOD_DIR", "/usr/share/lmod/lmod/libexec")
	t.Setenv("LMOD_SYSHOST", "expanse")
	t.Setenv("LMOD_SYSTEM_NAME", "")

	id, err := Detect()
	if err != nil {
		t.Fatalf("Detect() failed: %s", err)
	}
	if id != "expanse" {
		t.Fatalf("Detect() identified the system as %s instead of expanse", id)
	}

	t.Setenv("LMOD_SYSHOST", "")
	_, err = Detect()
	if err == nil {
		t.Fatalf("Detect() did not fail on a Lmod host without a system name")
	}
}

func TestDetectFallbackIdentity(t *testing.T) {
	t.Setenv("LMOD_DIR", "")

	id, err := Detect()
	switch {
	case runtime.GOOS == "linux" && runtime.GOARCH == "amd64":
		if err != nil {
			t.Fatalf("Detect() failed: %s", err)
		}
		if id != LinuxX8664ID {
			t.Fatalf("Detect() identified the system as %s instead of %s", id, LinuxX8664ID)
		}
	case runtime.GOOS == "darwin" && runtime.GOARCH == "arm64":
		if err != nil {
			t.Fatalf("Detect() failed: %s", err)
		}
		if id != OsxArm64ID {
			t.Fatalf("Detect() identified the system as %s instead of %s", id, OsxArm64ID)
		}
	default:
		if err == nil {
			t.Fatalf("Detect() did not fail on an unsupported host (%s/%s)", runtime.GOOS, runtime.GOARCH)
		}
	}
}

func TestParseWalltime(t *testing.T) {
	tests := []struct {
		walltime string
		expected time.Duration
		valid    bool
	}{
		{walltime: "48:00:00", expected: 48 * time.Hour, valid: true},
		{walltime: "00:30:00", expected: 30 * time.Minute, valid: true},
		{walltime: "01:02:03", expected: time.Hour + 2*time.Minute + 3*time.Second, valid: true},
		{walltime: "100:00:00", expected: 100 * time.Hour, valid: true},
		{walltime: "1:00", valid: false},
		{walltime: "one:00:00", valid: false},
		{walltime: "00:61:00", valid: false},
		{walltime: "00:00:-1", valid: false},
		{walltime: "", valid: false},
	}

	for _, tt := range tests {
		d, err := ParseWalltime(tt.walltime)
		if !tt.valid {
			if err == nil {
				t.Fatalf("ParseWalltime(%s) did not fail", tt.walltime)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseWalltime(%s) failed: %s", tt.walltime, err)
		}
		if d != tt.expected {
			t.Fatalf("ParseWalltime(%s) returned %s instead of %s", tt.walltime, d, tt.expected)
		}
	}
}

func TestValidateWalltime(t *testing.T) {
	registry := NewRegistry()
	info, err := registry.Lookup("derecho")
	if err != nil {
		t.Fatalf("Lookup(derecho) failed: %s", err)
	}

	err = info.ValidateWalltime("12:00:00")
	if err != nil {
		t.Fatalf("ValidateWalltime() rejected a walltime equal to the limit: %s", err)
	}
	err = info.ValidateWalltime("")
	if err != nil {
		t.Fatalf("ValidateWalltime() rejected an empty walltime: %s", err)
	}
	err = info.ValidateWalltime("12:00:01")
	if err == nil {
		t.Fatalf("ValidateWalltime() accepted a walltime beyond the limit")
	}
	err = info.ValidateWalltime("not-a-walltime")
	if err == nil {
		t.Fatalf("ValidateWalltime() accepted a malformed walltime")
	}

	unlimited := Info{ID: "workstation"}
	err = unlimited.ValidateWalltime("999:00:00")
	if err != nil {
		t.Fatalf("ValidateWalltime() rejected a walltime on a system without limit: %s", err)
	}
}
