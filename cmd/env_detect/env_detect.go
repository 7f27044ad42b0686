// Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gvallee/go_hpc_env/pkg/env"
	"github.com/gvallee/go_hpc_env/pkg/format"
	"github.com/gvallee/go_hpc_env/pkg/mpi"
	"github.com/gvallee/go_hpc_env/pkg/platform"
	"github.com/gvallee/go_hpc_env/pkg/sys"
	"github.com/gvallee/go_hpc_env/pkg/usercfg"
)

func main() {
	systemFlag := flag.String("system", "", "Force the target system instead of detecting it")
	registryFlag := flag.String("registry", "", "Path to a site platform registry file")
	exportsFlag := flag.Bool("exports", false, "Print the resolved environment as shell export lines")
	dirFlag := flag.String("dir", "", "Report the MPI implementation installed in the target directory and exit")
	help := flag.Bool("h", false, "Help message")

	flag.Parse()

	cmdName := filepath.Base(os.Args[0])
	if *help {
		fmt.Printf("%s is a command line tool to resolve and display the runtime environment of the system", cmdName)
		fmt.Println("\nUsage:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *dirFlag != "" {
		mpiInfo, err := mpi.DetectFromDir(*dirFlag)
		if err != nil {
			fmt.Printf("ERROR: no MPI implementation detected in %s: %s\n", *dirFlag, err)
			os.Exit(1)
		}
		fmt.Printf("MPI implementation: %s\nVersion: %s\n", mpiInfo.ID, mpiInfo.Version)
		os.Exit(0)
	}

	if *systemFlag != "" {
		os.Setenv(usercfg.SystemEnvVar, *systemFlag)
	}

	sysCfg, err := sys.DefaultConfig()
	if err != nil {
		fmt.Printf("ERROR: unable to load the system configuration: %s\n", err)
		os.Exit(1)
	}
	if *registryFlag != "" {
		sysCfg.RegistryFile = *registryFlag
	}

	e, err := env.Load(&sysCfg)
	if err != nil {
		fmt.Printf("ERROR: unable to resolve the runtime environment: %s\n", err)
		os.Exit(1)
	}

	if *exportsFlag {
		for _, name := range e.VarNames() {
			fmt.Printf("export %s=%q\n", name, e.Vars[name])
		}
		return
	}

	scheduler := e.Platform.Scheduler
	if scheduler == platform.NoScheduler {
		scheduler = "none"
	}
	details := map[string]interface{}{
		"compiler":  e.Platform.Compiler,
		"scheduler": scheduler,
	}
	if e.Platform.DefaultPartition != "" {
		details["partition"] = e.Platform.DefaultPartition
	}
	if e.Platform.CoresPerNode > 0 {
		details["cores per node"] = strconv.Itoa(e.Platform.CoresPerNode)
	}
	if e.Platform.MemGBPerNode > 0 {
		details["memory per node (GB)"] = strconv.Itoa(e.Platform.MemGBPerNode)
	}
	if e.Platform.MaxWalltime != "" {
		details["max walltime"] = e.Platform.MaxWalltime
	}
	if len(e.Platform.Modules) > 0 {
		details["modules"] = format.ConciseList(e.Platform.Modules, nil)
	}
	var envEntries []string
	for _, name := range e.VarNames() {
		envEntries = append(envEntries, name+"="+e.Vars[name])
	}
	if len(envEntries) > 0 {
		details["environment"] = envEntries
	}
	fmt.Print(format.Tree(map[string]interface{}{e.Platform.ID: details}))

	mpiInfo, err := e.Validate()
	if err != nil {
		fmt.Printf("No usable MPI installation: %s\n", err)
		return
	}
	fmt.Printf("MPI implementation: %s %s\n", mpiInfo.ID, mpiInfo.Version)
}
