// Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package repo manages the local clones of the external codebases the
// toolkit builds and runs, e.g., simulation codes hosted on git forges. All
// operations shell out to the git command so the clones stay usable with the
// user's own git setup.
package repo

import (
	"errors"
	"fmt"
	"log"
	"os/exec"
	"regexp"
	"strings"

	"github.com/gvallee/go_exec/pkg/advexec"
	"github.com/gvallee/go_util/pkg/util"
)

// ErrInvalidCheckoutTarget is returned when a checkout target can neither be
// found in the remote listing of a repository nor be interpreted as a commit
// hash.
var ErrInvalidCheckoutTarget = errors.New("invalid checkout target")

// Abbreviated (7 characters) or full (40 characters) commit hash
var hashRegex = regexp.MustCompile(`^([0-9a-f]{7}|[0-9a-f]{40})$`)

// runGit executes git with the requested arguments. When dir is not empty
// the command runs against the repository at that path.
func runGit(dir string, args ...string) (string, error) {
	gitBin, err := exec.LookPath("git")
	if err != nil {
		return "", fmt.Errorf("unable to find the git command: %s", err)
	}

	var cmd advexec.Advcmd
	cmd.BinPath = gitBin
	if dir != "" {
		cmd.CmdArgs = append(cmd.CmdArgs, "-C", dir)
	}
	cmd.CmdArgs = append(cmd.CmdArgs, args...)
	res := cmd.Run()
	if res.Err != nil {
		return "", fmt.Errorf("git %s failed: %s (stderr: %s)", strings.Join(args, " "), res.Err, strings.TrimSpace(res.Stderr))
	}
	return res.Stdout, nil
}

// Clone clones a repository into dest.
func Clone(url string, dest string) error {
	if util.PathExists(dest) {
		return fmt.Errorf("unable to clone %s: destination %s already exists", url, dest)
	}

	_, err := runGit("", "clone", url, dest)
	if err != nil {
		return fmt.Errorf("unable to clone repository %s to %s: %s", url, dest, err)
	}
	log.Printf("Cloned repository %s to %s\n", url, dest)
	return nil
}

// Checkout checks out a target (branch, tag or commit hash) in a local
// repository.
func Checkout(localRoot string, target string) error {
	_, err := runGit(localRoot, "checkout", target)
	if err != nil {
		return fmt.Errorf("unable to checkout %s in git repository %s: %s", target, localRoot, err)
	}
	log.Printf("Checked out %s in git repository %s\n", target, localRoot)
	return nil
}

// CloneAndCheckout clones a repository into dest and checks out the
// requested target there. An empty target leaves the clone on the default
// branch.
func CloneAndCheckout(url string, dest string, target string) error {
	err := Clone(url, dest)
	if err != nil {
		return err
	}
	if target == "" {
		return nil
	}
	return Checkout(dest, target)
}

// Remote returns the URL of the origin remote of a local repository.
func Remote(localRoot string) (string, error) {
	out, err := runGit(localRoot, "remote", "get-url", "origin")
	if err != nil {
		return "", fmt.Errorf("unable to get the remote of git repository %s: %s", localRoot, err)
	}
	return strings.TrimSpace(out), nil
}

// HeadHash returns the commit hash of the checked out HEAD of a local
// repository.
func HeadHash(localRoot string) (string, error) {
	out, err := runGit(localRoot, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("unable to get the HEAD hash of git repository %s: %s", localRoot, err)
	}
	return strings.TrimSpace(out), nil
}

// IsCommitHash reports whether target looks like an abbreviated or full
// commit hash.
func IsCommitHash(target string) bool {
	return hashRegex.MatchString(target)
}

// ResolveRef resolves a checkout target to a commit hash without cloning the
// repository. Branches and tags are resolved through the remote listing of
// the repository; a target absent from the listing is accepted as is when it
// looks like a commit hash, since hashes do not appear in remote listings.
func ResolveRef(url string, target string) (string, error) {
	out, err := runGit("", "ls-remote", url, target)
	if err != nil {
		return "", fmt.Errorf("unable to query the remote listing of %s: %s", url, err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		if IsCommitHash(target) {
			return target, nil
		}
		return "", fmt.Errorf("%w: %s is not a branch, a tag or a commit hash of repository %s", ErrInvalidCheckoutTarget, target, url)
	}
	return strings.Fields(out)[0], nil
}
