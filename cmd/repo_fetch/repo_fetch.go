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
	"strings"

	"github.com/gvallee/go_hpc_env/internal/pkg/fsutil"
	"github.com/gvallee/go_hpc_env/pkg/repo"
	"github.com/gvallee/go_hpc_env/pkg/sys"
)

func main() {
	urlFlag := flag.String("url", "", "URL of the repository to clone")
	destFlag := flag.String("dest", "", "Directory to clone the repository into (defaults to the toolkit's externals directory)")
	refFlag := flag.String("ref", "", "Branch, tag or commit hash to check out after cloning")
	patchFileFlag := flag.String("patch-file", "", "File of the clone to patch after checkout, relative to the clone's root")
	patchOldFlag := flag.String("patch-old", "", "Text the patched file is expected to contain")
	patchNewFlag := flag.String("patch-new", "", "Text replacing every occurrence of the expected text")
	help := flag.Bool("h", false, "Help message")

	flag.Parse()

	cmdName := filepath.Base(os.Args[0])
	if *help {
		fmt.Printf("%s is a command line tool to clone the external codebases the toolkit relies on", cmdName)
		fmt.Println("\nUsage:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *urlFlag == "" {
		fmt.Println("ERROR: please provide the URL of the repository to clone")
		flag.PrintDefaults()
		os.Exit(1)
	}

	dest := *destFlag
	if dest == "" {
		sysCfg, err := sys.DefaultConfig()
		if err != nil {
			fmt.Printf("ERROR: unable to load the system configuration: %s\n", err)
			os.Exit(1)
		}
		repoName := strings.TrimSuffix(filepath.Base(*urlFlag), ".git")
		dest = filepath.Join(sysCfg.ExternalsDir, repoName)
	}

	if *refFlag != "" {
		hash, err := repo.ResolveRef(*urlFlag, *refFlag)
		if err != nil {
			fmt.Printf("ERROR: unable to resolve %s: %s\n", *refFlag, err)
			os.Exit(1)
		}
		fmt.Printf("%s resolves to %s\n", *refFlag, hash)
	}

	err := repo.CloneAndCheckout(*urlFlag, dest, *refFlag)
	if err != nil {
		fmt.Printf("ERROR: unable to clone %s: %s\n", *urlFlag, err)
		os.Exit(1)
	}

	// Codebases often need their build configuration pointed at the system's
	// libraries once checked out, e.g., a makefile's NetCDF installation path
	if *patchFileFlag != "" {
		path := filepath.Join(dest, *patchFileFlag)
		replaced, err := fsutil.ReplaceTextInFile(path, *patchOldFlag, *patchNewFlag)
		if err != nil {
			fmt.Printf("ERROR: unable to patch %s: %s\n", path, err)
			os.Exit(1)
		}
		if !replaced {
			fmt.Printf("%s does not contain %q, nothing to patch\n", path, *patchOldFlag)
		}
	}

	hash, err := repo.HeadHash(dest)
	if err != nil {
		fmt.Printf("ERROR: unable to query the state of the clone: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s is now at %s\n", dest, hash)
}
